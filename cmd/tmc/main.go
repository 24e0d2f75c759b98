package main

import (
	"fmt"
	"io"
	"os"

	apperrors "tmc/internal/errors"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func run(args []string, out, errOut io.Writer) error {
	root := newRootCmd(newApp(out, errOut))
	root.SetArgs(args)
	return root.Execute()
}

// exitCode maps coded failures to exit statuses: 2 for bad input or
// configuration, 3 for rejected credentials, 1 otherwise.
func exitCode(err error) int {
	code, ok := apperrors.CodeOf(err)
	if !ok {
		return 1
	}
	switch code {
	case apperrors.CodeConfigurationError, apperrors.CodeParseFailed:
		return 2
	case apperrors.CodeUnauthorized:
		return 3
	default:
		return 1
	}
}
