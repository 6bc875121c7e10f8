package cmd

import (
	"context"
	"io"

	"github.com/charmbracelet/huh/spinner"
)

// task runs fn behind a spinner when out is a terminal and prints done once
// it succeeds.
func task(ctx context.Context, out io.Writer, title, done string, fn func(context.Context) error) error {
	if !isTerminal(out) {
		if err := fn(ctx); err != nil {
			return err
		}
		printDone(out, done)
		return nil
	}

	var err error
	spinErr := spinner.New().
		Context(ctx).
		Title(title).
		Action(func() { err = fn(ctx) }).
		Run()
	if spinErr != nil {
		return spinErr
	}
	if err != nil {
		return err
	}

	printDone(out, done)
	return nil
}
