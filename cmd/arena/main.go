package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	arenacmd "github.com/louisbranch/arena/internal/cmd/arena"
	"github.com/louisbranch/arena/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := arenacmd.Main(ctx, os.Args[1:], os.Stdout); err != nil {
		config.Exitf("Error: %v", err)
	}
}
