package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aristath/stockledger/internal/domain"
	"github.com/aristath/stockledger/internal/modules/ledger"
	ledgerhandlers "github.com/aristath/stockledger/internal/modules/ledger/handlers"
	portfoliohandlers "github.com/aristath/stockledger/internal/modules/portfolio/handlers"
	priceshandlers "github.com/aristath/stockledger/internal/modules/prices/handlers"
	"github.com/spf13/cobra"
)

func registerCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "register NAME",
		Short: "Register an investor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.container.LedgerService.RegisterInvestor(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.print(result)
		},
	}
}

// tradeCmd builds the buy and sell commands, which differ only in the engine call
func tradeCmd(c *cli, side string) *cobra.Command {
	return &cobra.Command{
		Use:   side + " NAME SYMBOL SHARES",
		Short: strings.ToUpper(side[:1]) + side[1:] + " shares at the current quoted price",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			shares, err := parseShares(args[2])
			if err != nil {
				return err
			}

			var conf ledger.TradeConfirmation
			if side == "sell" {
				conf, err = c.container.LedgerService.Sell(cmd.Context(), args[0], args[1], shares)
			} else {
				conf, err = c.container.LedgerService.Buy(cmd.Context(), args[0], args[1], shares)
			}
			if err != nil {
				return err
			}
			return c.print(ledgerhandlers.NewTradeResponse(conf))
		},
	}
}

func portfolioCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "portfolio NAME",
		Short: "Show an investor's holdings valued at stored prices",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.container.PortfolioService.GetPortfolio(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.print(portfoliohandlers.NewPortfolioResponse(p))
		},
	}
}

func riskCmd(c *cli) *cobra.Command {
	risk := &cobra.Command{
		Use:   "risk",
		Short: "Evaluate stock or portfolio risk",
	}

	risk.AddCommand(&cobra.Command{
		Use:   "stock SYMBOL",
		Short: "Classify a stock by beta and P/E ratio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := c.container.PortfolioService.EvaluateStockRisk(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.print(portfoliohandlers.NewStockRiskResponse(report))
		},
	}, &cobra.Command{
		Use:   "portfolio NAME",
		Short: "Compute the value-weighted beta of a portfolio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := c.container.PortfolioService.EvaluatePortfolioRisk(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.print(portfoliohandlers.NewPortfolioRiskResponse(report))
		},
	})
	return risk
}

func reportCmd(c *cli) *cobra.Command {
	var textOnly bool
	cmd := &cobra.Command{
		Use:   "report NAME",
		Short: "Print the comprehensive risk report for an investor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := c.container.PortfolioService.ComprehensiveReport(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if textOnly {
				_, err = fmt.Fprintln(c.out, report.Report)
				return err
			}
			return c.print(portfoliohandlers.NewReportResponse(report))
		},
	}
	cmd.Flags().BoolVar(&textOnly, "text", false, "Print only the rendered report text")
	return cmd
}

func refreshPricesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-prices",
		Short: "Fetch a fresh quote for every stored stock",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := c.container.PricesService.RefreshAllPrices(cmd.Context())
			if err != nil {
				return err
			}
			return c.print(priceshandlers.NewRefreshResponse(summary))
		},
	}
}

func profileCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "profile SYMBOL",
		Short: "Refresh a stock's company profile (name, market cap, P/E, beta)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stock, err := c.container.PricesService.RefreshStockProfile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return c.print(priceshandlers.NewStockResponse(stock))
		},
	}
}

func stocksCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stocks",
		Short: "List stored stocks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stocks, err := c.container.PricesService.ListStocks(cmd.Context())
			if err != nil {
				return err
			}
			resp := make([]priceshandlers.StockResponse, 0, len(stocks))
			for _, s := range stocks {
				resp = append(resp, priceshandlers.NewStockResponse(s))
			}
			return c.print(resp)
		},
	}
}

// migrateCmd exists for operators; wiring already applied the schema by the time it runs
func migrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the ledger schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.container.LedgerDB.Migrate(); err != nil {
				return err
			}
			return c.print(map[string]string{
				"driver":   string(c.container.LedgerDB.Driver()),
				"database": c.container.LedgerDB.Name(),
				"status":   "up to date",
			})
		},
	}
}

// parseShares accepts only positive whole numbers
func parseShares(arg string) (int64, error) {
	shares, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || shares <= 0 {
		return 0, domain.NewLedgerError(domain.ErrInvalidShares, nil, "Shares must be a positive integer, got %q.", arg)
	}
	return shares, nil
}
