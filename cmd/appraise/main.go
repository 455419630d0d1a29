package main

import (
	"fmt"
	"os"
)

// Exit codes. Batch failures and configuration errors share ExitFailure.
const (
	ExitSuccess = 0
	ExitFailure = 1
)

func main() {
	if err := newRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitFailure)
	}
	os.Exit(ExitSuccess)
}
