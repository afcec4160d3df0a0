package logbuf

import "strings"

// Severity classifies a diagnostic entry emitted by the host.
type Severity int

const (
	// SeverityLog marks ordinary informational output.
	SeverityLog Severity = iota
	// SeverityWarning marks recoverable problems.
	SeverityWarning
	// SeverityError marks failures reported by the host.
	SeverityError
	// SeverityException marks uncaught exceptions surfaced by the host runtime.
	SeverityException
	// SeverityAssert marks failed host assertions.
	SeverityAssert
)

var severityNames = map[Severity]string{
	SeverityLog:       "Log",
	SeverityWarning:   "Warning",
	SeverityError:     "Error",
	SeverityException: "Exception",
	SeverityAssert:    "Assert",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "Log"
}

// ParseSeverity resolves a case-insensitive severity name. The second return
// is false for unknown names; callers treat the filter as best-effort and
// skip filtering in that case.
func ParseSeverity(name string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "log":
		return SeverityLog, true
	case "warning":
		return SeverityWarning, true
	case "error":
		return SeverityError, true
	case "exception":
		return SeverityException, true
	case "assert":
		return SeverityAssert, true
	default:
		return SeverityLog, false
	}
}
