// Package main provides the steward CLI, the operator tool for the
// resources an agent host loads: hooks, capabilities, servers, and
// instructions.
package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes. User errors are bad input or requests the current state
// cannot satisfy; everything else is an infrastructure failure.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// userError marks an expected refusal so main can pick the exit code.
type userError struct {
	err error
}

func (e userError) Error() string { return e.err.Error() }

func (e userError) Unwrap() error { return e.err }

func failUser(msg string) error { return userError{err: errors.New(msg)} }

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var uerr userError
		if errors.As(err, &uerr) {
			os.Exit(exitUserError)
		}
		os.Exit(exitSysError)
	}
	os.Exit(exitSuccess)
}
