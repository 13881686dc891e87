package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/SaeedTaghavi/transit-fitting/internal/cli"
	"github.com/SaeedTaghavi/transit-fitting/pkg/logger"
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM so long sampling runs can
	// be interrupted cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cli.Execute(ctx)
}
