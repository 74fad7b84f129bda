package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aristath/stockledger/internal/config"
	"github.com/aristath/stockledger/internal/di"
	"github.com/aristath/stockledger/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// wireFunc builds the dependency container for one command invocation
type wireFunc func(log zerolog.Logger) (*di.Container, error)

// cli carries global flag values and the container shared by every subcommand
type cli struct {
	out       io.Writer
	output    string
	logLevel  string
	wire      wireFunc
	container *di.Container
}

func newCLI(out io.Writer) *cli {
	return &cli{out: out, wire: wireFromEnv}
}

// wireFromEnv loads the server's configuration and wires without a scheduler
func wireFromEnv(log zerolog.Logger) (*di.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	container, _, err := di.Wire(cfg, log, nil)
	if err != nil {
		return nil, err
	}
	return container, nil
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Stock ledger administration",
		Long: `ledgerctl records investor trades and reports portfolio value and risk.

It reads the same environment configuration as the server (DB_DRIVER, DATA_DIR,
ALPHAVANTAGE_API_KEY, ...) and talks to the ledger store directly.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.PersistentFlags().StringVarP(&c.output, "output", "o", "json", "Output format (json|yaml)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "Log level (debug|info|warn|error)")

	root.AddCommand(
		registerCmd(c),
		tradeCmd(c, "buy"),
		tradeCmd(c, "sell"),
		portfolioCmd(c),
		riskCmd(c),
		reportCmd(c),
		refreshPricesCmd(c),
		profileCmd(c),
		stocksCmd(c),
		migrateCmd(c),
	)
	return root
}

// setup validates global flags and wires the container before any subcommand runs
func (c *cli) setup(cmd *cobra.Command, args []string) error {
	if !needsContainer(cmd) {
		return nil
	}
	if c.output != formatJSON && c.output != formatYAML {
		return fmt.Errorf("unsupported output format %q (want json or yaml)", c.output)
	}

	log := logger.New(logger.Config{
		Level:   c.logLevel,
		Output:  os.Stderr,
		Service: "ledgerctl",
	})

	container, err := c.wire(log)
	if err != nil {
		return err
	}
	c.container = container
	return nil
}

// needsContainer is false for cobra's built-in help and completion commands
func needsContainer(cmd *cobra.Command) bool {
	for p := cmd; p != nil; p = p.Parent() {
		switch p.Name() {
		case "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd, "completion":
			return false
		}
	}
	return true
}

// close releases the container once the command has finished, successful or not
func (c *cli) close() error {
	err := c.container.Close()
	c.container = nil
	return err
}

func (c *cli) print(v interface{}) error {
	return writeOutput(c.out, c.output, v)
}
