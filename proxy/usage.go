package proxy

import (
	"sort"
	"strings"
)

var usages = make(map[string]string)

// AddUsage adds help message for the named dialer scheme.
func AddUsage(name, usage string) {
	usages[name] = usage
}

// Usage returns help message of the named scheme, "all" for every scheme.
func Usage(name string) string {
	if name != "all" {
		if usage, ok := usages[name]; ok {
			return usage
		}
		return "can not find usage for: " + name
	}

	names := make([]string, 0, len(usages))
	for n := range usages {
		names = append(names, n)
	}
	sort.Strings(names)

	var msg strings.Builder
	for _, n := range names {
		msg.WriteString(usages[n])
		msg.WriteString("\n--")
	}
	return msg.String()
}
