package sshx

import "fmt"

// Result captures the outcome of one remote command attempt. Command
// failures (non-zero exit, timeouts) are reported inside the Result rather
// than as errors, so callers can aggregate outcomes across hosts uniformly.
type Result struct {
	Success  bool
	ExitCode int
	Stdout   string
	Stderr   string
	Message  string
}

// Failure builds a failed Result with a formatted message and no exit code.
func Failure(format string, args ...any) Result {
	return Result{
		Success:  false,
		ExitCode: -1,
		Message:  fmt.Sprintf(format, args...),
	}
}
