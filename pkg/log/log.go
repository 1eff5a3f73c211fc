package log

import (
	"fmt"
	stdlog "log"
)

// F is the verbose log function, it's a noop until Set(true, ...) is called.
var F = func(string, ...any) {}

// Set configures the logger: verbose enables F, flags are stdlog flags.
func Set(verbose bool, flags int) {
	stdlog.SetFlags(flags)
	if verbose {
		F = func(f string, v ...any) {
			stdlog.Output(2, fmt.Sprintf(f, v...))
		}
		return
	}
	F = func(string, ...any) {}
}

// Printf prints log.
func Printf(f string, v ...any) {
	stdlog.Output(2, fmt.Sprintf(f, v...))
}

// Fatal log and exit.
func Fatal(v ...any) {
	stdlog.Fatal(v...)
}

// Fatalf log and exit.
func Fatalf(f string, v ...any) {
	stdlog.Fatalf(f, v...)
}
