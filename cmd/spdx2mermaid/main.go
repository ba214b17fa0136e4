package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/matzehuels/spdx2mermaid/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		cli.PrintError(err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	return cli.New(os.Stderr, cli.LogInfo).RootCommand().ExecuteContext(ctx)
}
