package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cmd := newRootCommand(newCLI(os.Stdin, os.Stdout, os.Stderr))
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, errorText(err.Error()))
		}
		os.Exit(1)
	}
}
