// Package main is the entry point for the somc CLI application.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/somc-project/somc/cmd"
)

// Version information, injected at build time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	rootCmd := cmd.NewRootCmd()
	rootCmd.Version = Version
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	var exitErr *cmd.ExitCodeError
	if errors.As(err, &exitErr) {
		if !exitErr.Silent && exitErr.Err != nil {
			fmt.Fprintln(os.Stderr, exitErr.Err)
		}
		os.Exit(exitErr.Code)
	}

	fmt.Fprintln(os.Stderr, err)
	os.Exit(2)
}
