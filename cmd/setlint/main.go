package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		// An interrupted run already reported whatever it finished.
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "setlint:", err)
		}
		os.Exit(1)
	}
}
