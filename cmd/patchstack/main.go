package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"patchstack.dev/patchstack/internal/cli"
	"patchstack.dev/patchstack/internal/output"
)

func main() {
	output.ConfigureColors(os.Stdout)

	splog, err := output.NewSplog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "patchstack: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = cli.NewRootCmd(splog).ExecuteContext(ctx)
	stop()

	if err != nil {
		splog.Error("%v", err)
		_ = splog.Close()
		os.Exit(1)
	}
	_ = splog.Close()
}
