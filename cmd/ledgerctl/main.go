// Package main is the ledgerctl command line front end.
// It drives the same ledger, portfolio and price services as the HTTP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aristath/stockledger/internal/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := newCLI(os.Stdout)
	err := newRootCmd(c).ExecuteContext(ctx)
	_ = c.close()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", domain.ErrorMessage(err))
		os.Exit(1)
	}
}
