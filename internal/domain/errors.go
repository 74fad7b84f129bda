package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is against these to classify a failure.
var (
	ErrQuoteUnavailable   = errors.New("quote unavailable")
	ErrProfileUnavailable = errors.New("company profile unavailable")
	ErrInvestorNotFound   = errors.New("investor not found")
	ErrNoSuchHolding      = errors.New("no such holding")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrStockNotFound      = errors.New("stock not found")
	ErrInvalidShares      = errors.New("shares must be a positive integer")
	ErrInvalidRequest     = errors.New("invalid request")
)

// LedgerError is a classified failure carrying a human readable message.
type LedgerError struct {
	Kind    error
	Message string
	Err     error
}

func (e *LedgerError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
	return e.Kind.Error()
}

// Unwrap exposes both the kind and the underlying cause.
func (e *LedgerError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewLedgerError builds a LedgerError with a formatted message.
func NewLedgerError(kind error, cause error, format string, args ...interface{}) *LedgerError {
	return &LedgerError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// StoreError wraps a driver failure as ErrStoreUnavailable.
func StoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &LedgerError{Kind: ErrStoreUnavailable, Message: fmt.Sprintf("failed to %s: %v", op, err), Err: err}
}

// InvestorNotFound reports an unknown investor name.
func InvestorNotFound(name string) error {
	return NewLedgerError(ErrInvestorNotFound, nil, "Investor %s not found.", name)
}

// NoSuchHolding reports a sell against a stock the investor does not own.
func NoSuchHolding(name, symbol string) error {
	return NewLedgerError(ErrNoSuchHolding, nil, "%s does not own any shares of %s.", name, symbol)
}

// StockNotFound reports an unknown ticker symbol.
func StockNotFound(symbol string) error {
	return NewLedgerError(ErrStockNotFound, nil, "Stock %s not found.", symbol)
}

// InsufficientSharesError is returned when a sell asks for more shares than are held.
type InsufficientSharesError struct {
	Investor  string
	Symbol    string
	Owned     int64
	Requested int64
}

func (e *InsufficientSharesError) Error() string {
	return fmt.Sprintf("%s only owns %d shares of %s.", e.Investor, e.Owned, e.Symbol)
}

func (e *InsufficientSharesError) Unwrap() error {
	return ErrInsufficientShares
}

// ErrorMessage returns the user-facing message for err.
func ErrorMessage(err error) string {
	var le *LedgerError
	if errors.As(err, &le) {
		return le.Error()
	}
	var ise *InsufficientSharesError
	if errors.As(err, &ise) {
		return ise.Error()
	}
	return err.Error()
}
