package main

import (
	"errors"
	"fmt"
	"os"
)

var version = "dev"

// exitError carries a non-zero outcome out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func main() {
	os.Exit(execute())
}

func execute() int {
	cmd := newRootCmd()
	err := cmd.Execute()
	if err == nil {
		return 0
	}
	var exit *exitError
	if errors.As(err, &exit) {
		if exit.err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", exit.err)
		}
		return exit.code
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	return 1
}
