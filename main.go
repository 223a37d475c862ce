package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrclmr/exhalebatch/cmd/exhalebatch"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmd.ExecuteContext(ctx, version)
	if errors.Is(err, context.Canceled) {
		os.Exit(130)
	}
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "exhalebatch: %v\n", err)
		os.Exit(1)
	}
}
