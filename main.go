package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nullslate/nullslate/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx, os.Args); err != nil {
		stop()
		os.Exit(1)
	}
}
