package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"p2h.app/cmd/p2h/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.NewRootCommand(ctx).Execute(); err != nil {
		stop()
		os.Exit(1)
	}
}
