// @MX:ANCHOR: [AUTO] main is the entry point of the rulesync binary; it exits with status 1 on error.
// @MX:REASON: the only entry point of the executable; delegates to the CLI command tree
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/modu-ai/rulesync/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
