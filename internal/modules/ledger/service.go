// Package ledger implements investor registration and the buy/sell ledger transactions.
package ledger

import (
	"context"
	"fmt"
	"math"

	"github.com/aristath/stockledger/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RegistrationResult reports the outcome of RegisterInvestor
type RegistrationResult struct {
	Name    string `json:"name"`
	Created bool   `json:"created"`
	Message string `json:"message"`
}

// TradeConfirmation describes a completed buy or sell
type TradeConfirmation struct {
	Investor string           `json:"investor"`
	Symbol   string           `json:"symbol"`
	Side     domain.TradeSide `json:"side"`
	Shares   int64            `json:"shares"`
	Price    decimal.Decimal  `json:"price"`
	Total    decimal.Decimal  `json:"total"`
	AsOf     string           `json:"as_of"`

	// PriceAvailable is false when a sell completed without a quote; Price and Total are then zero.
	PriceAvailable bool   `json:"price_available"`
	Message        string `json:"message"`
}

// Service runs ledger operations against an injected store and quote provider.
// It holds no mutable state between calls.
type Service struct {
	store   domain.LedgerStore
	quotes  domain.QuoteProvider
	metrics domain.MetricsRecorder
	log     zerolog.Logger
}

// NewService creates a new ledger service
func NewService(store domain.LedgerStore, quotes domain.QuoteProvider, log zerolog.Logger) *Service {
	return &Service{
		store:  store,
		quotes: quotes,
		log:    log.With().Str("service", "ledger").Logger(),
	}
}

// SetMetrics attaches a recorder for trade outcomes
func (s *Service) SetMetrics(m domain.MetricsRecorder) {
	s.metrics = m
}

// RegisterInvestor creates the investor unless the name already exists. Idempotent.
func (s *Service) RegisterInvestor(ctx context.Context, name string) (RegistrationResult, error) {
	name = domain.NormalizeName(name)
	if name == "" {
		return RegistrationResult{}, domain.NewLedgerError(domain.ErrInvalidRequest, nil, "Investor name is required.")
	}

	created, err := s.store.InsertInvestorIfAbsent(ctx, name)
	if err != nil {
		return RegistrationResult{}, fmt.Errorf("failed to register investor: %w", err)
	}

	result := RegistrationResult{Name: name, Created: created, Message: "Investor already exists."}
	if created {
		result.Message = fmt.Sprintf("Investor %s has been added.", name)
	}
	return result, nil
}

// Buy purchases shares at the current quote in one transaction.
// The stock's stored price is overwritten with the quote on every purchase.
func (s *Service) Buy(ctx context.Context, investorName, symbol string, shares int64) (TradeConfirmation, error) {
	investorName, symbol, err := validateTrade(investorName, symbol, shares)
	if err != nil {
		return TradeConfirmation{}, err
	}

	var conf TradeConfirmation
	err = s.store.InTx(ctx, func(tx domain.LedgerStore) error {
		quote, err := s.quotes.GetQuote(ctx, symbol)
		if err != nil {
			return domain.NewLedgerError(domain.ErrQuoteUnavailable, err, "Unable to fetch a price for %s.", symbol)
		}

		stock, err := tx.FindStockBySymbol(ctx, symbol)
		if err != nil {
			return err
		}
		if stock == nil {
			if err := tx.InsertStock(ctx, domain.NewPlaceholderStock(symbol, quote.Price)); err != nil {
				return err
			}
		} else if err := tx.UpdateStockPrice(ctx, symbol, quote.Price); err != nil {
			return err
		}

		investor, err := tx.FindInvestorByName(ctx, investorName)
		if err != nil {
			return err
		}
		if investor == nil {
			return domain.InvestorNotFound(investorName)
		}

		holding, err := tx.FindHolding(ctx, investor.ID, symbol)
		if err != nil {
			return err
		}
		if holding != nil {
			if holding.Shares > math.MaxInt64-shares {
				return domain.NewLedgerError(domain.ErrInvalidShares, nil,
					"%s already owns %d shares of %s; buying %d more exceeds the maximum share count.",
					investorName, holding.Shares, symbol, shares)
			}
			err = tx.IncrementHoldingShares(ctx, investor.ID, symbol, shares)
		} else {
			err = tx.InsertHolding(ctx, investor.ID, symbol, shares)
		}
		if err != nil {
			return err
		}

		total := quote.Price.Mul(decimal.NewFromInt(shares))
		conf = TradeConfirmation{
			Investor:       investorName,
			Symbol:         symbol,
			Side:           domain.TradeSideBuy,
			Shares:         shares,
			Price:          quote.Price,
			Total:          total,
			AsOf:           quote.AsOf,
			PriceAvailable: true,
			Message: fmt.Sprintf("%s bought %d shares of %s at %s per share. Total cost: %s",
				investorName, shares, symbol, domain.FormatUSD(quote.Price), domain.FormatUSD(total)),
		}
		return nil
	})
	if err != nil {
		s.recordTrade(domain.TradeSideBuy, "failed")
		s.log.Warn().Err(err).Str("investor", investorName).Str("symbol", symbol).Int64("shares", shares).Msg("Buy failed")
		return TradeConfirmation{}, err
	}

	s.recordTrade(domain.TradeSideBuy, "ok")
	s.log.Info().
		Str("investor", investorName).
		Str("symbol", symbol).
		Int64("shares", shares).
		Str("price", conf.Price.String()).
		Msg("Buy executed")
	return conf, nil
}

// Sell removes shares from a holding in one transaction. The row is deleted when it reaches zero.
// A quote failure does not block the sale; the price is then reported as zero.
func (s *Service) Sell(ctx context.Context, investorName, symbol string, shares int64) (TradeConfirmation, error) {
	investorName, symbol, err := validateTrade(investorName, symbol, shares)
	if err != nil {
		return TradeConfirmation{}, err
	}

	var conf TradeConfirmation
	err = s.store.InTx(ctx, func(tx domain.LedgerStore) error {
		investor, err := tx.FindInvestorByName(ctx, investorName)
		if err != nil {
			return err
		}
		if investor == nil {
			return domain.InvestorNotFound(investorName)
		}

		holding, err := tx.FindHolding(ctx, investor.ID, symbol)
		if err != nil {
			return err
		}
		if holding == nil {
			return domain.NoSuchHolding(investorName, symbol)
		}
		if holding.Shares < shares {
			return &domain.InsufficientSharesError{
				Investor:  investorName,
				Symbol:    symbol,
				Owned:     holding.Shares,
				Requested: shares,
			}
		}

		// Quote before the first write so the transaction holds no write lock across the network call
		price := decimal.Zero
		asOf := domain.UnknownAsOf
		priceAvailable := true
		quote, err := s.quotes.GetQuote(ctx, symbol)
		if err != nil {
			priceAvailable = false
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Quote unavailable for sale, reporting price as zero")
		} else {
			price = quote.Price
			asOf = quote.AsOf
		}

		remaining := holding.Shares - shares
		if remaining == 0 {
			err = tx.DeleteHolding(ctx, investor.ID, symbol)
		} else {
			err = tx.SetHoldingShares(ctx, investor.ID, symbol, remaining)
		}
		if err != nil {
			return err
		}

		total := price.Mul(decimal.NewFromInt(shares))
		conf = TradeConfirmation{
			Investor:       investorName,
			Symbol:         symbol,
			Side:           domain.TradeSideSell,
			Shares:         shares,
			Price:          price,
			Total:          total,
			AsOf:           asOf,
			PriceAvailable: priceAvailable,
			Message: fmt.Sprintf("%s sold %d shares of %s at %s per share. Total value: %s",
				investorName, shares, symbol, domain.FormatUSD(price), domain.FormatUSD(total)),
		}
		return nil
	})
	if err != nil {
		s.recordTrade(domain.TradeSideSell, "failed")
		s.log.Warn().Err(err).Str("investor", investorName).Str("symbol", symbol).Int64("shares", shares).Msg("Sell failed")
		return TradeConfirmation{}, err
	}

	s.recordTrade(domain.TradeSideSell, "ok")
	s.log.Info().
		Str("investor", investorName).
		Str("symbol", symbol).
		Int64("shares", shares).
		Bool("price_available", conf.PriceAvailable).
		Msg("Sell executed")
	return conf, nil
}

func validateTrade(investorName, symbol string, shares int64) (string, string, error) {
	investorName = domain.NormalizeName(investorName)
	symbol = domain.NormalizeSymbol(symbol)

	if shares <= 0 {
		return "", "", domain.NewLedgerError(domain.ErrInvalidShares, nil, "Shares must be a positive integer, got %d.", shares)
	}
	if investorName == "" {
		return "", "", domain.NewLedgerError(domain.ErrInvalidRequest, nil, "Investor name is required.")
	}
	if symbol == "" {
		return "", "", domain.NewLedgerError(domain.ErrInvalidRequest, nil, "Stock symbol is required.")
	}
	return investorName, symbol, nil
}

func (s *Service) recordTrade(side domain.TradeSide, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordTrade(side, outcome)
	}
}
