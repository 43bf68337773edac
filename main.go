package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	exitCode := HandleExitError(os.Stderr, NewRootCommand().ExecuteContext(ctx))
	stop()

	os.Exit(exitCode)
}
