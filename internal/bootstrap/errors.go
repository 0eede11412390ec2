package bootstrap

import (
	"fmt"
	"sort"
	"strings"
)

// PreparationError is fatal: one or more hosts failed environment setup, so
// initialization was never started. Hosts maps each failing host to its
// final failure message.
type PreparationError struct {
	Hosts map[string]string
}

func (e *PreparationError) Error() string {
	names := make([]string, 0, len(e.Hosts))
	for name := range e.Hosts {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("preparation failed on %d host(s): ", len(names)))
	for i, name := range names {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(fmt.Sprintf("%s: %s", name, e.Hosts[name]))
	}
	return b.String()
}

// FailedHosts returns the failing host names, sorted.
func (e *PreparationError) FailedHosts() []string {
	names := make([]string, 0, len(e.Hosts))
	for name := range e.Hosts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InitializationError is fatal: the cluster init command failed on the
// primary, aborting the whole bootstrap.
type InitializationError struct {
	Host    string
	Message string
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("initialization failed on %s: %s", e.Host, e.Message)
}
