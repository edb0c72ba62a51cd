package main

import (
	"errors"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// errReported marks a failure whose message was already printed.
var errReported = errors.New("reported")

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	gray  = color.New(color.FgHiBlack).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

func errorText(msg string) string {
	return red(msg)
}

func resultText(ok bool, msg string) string {
	if ok {
		return green(msg)
	}
	return red(msg)
}

// isTTY checks if both stdin and stdout are terminals.
func isTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
