package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/aristath/stockledger/internal/domain"
	"github.com/shopspring/decimal"
)

// MockQuoteProvider is an in-memory domain.QuoteProvider for testing
type MockQuoteProvider struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
	failed map[string]bool
	asOf   string
	calls  []string
}

// NewMockQuoteProvider creates a new mock quote provider
func NewMockQuoteProvider() *MockQuoteProvider {
	return &MockQuoteProvider{
		prices: make(map[string]decimal.Decimal),
		failed: make(map[string]bool),
		asOf:   "2024-01-15",
	}
}

// SetPrice sets the quoted price for a symbol
func (m *MockQuoteProvider) SetPrice(symbol string, price string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[symbol] = decimal.RequireFromString(price)
	delete(m.failed, symbol)
}

// SetUnavailable makes quotes for the symbol fail
func (m *MockQuoteProvider) SetUnavailable(symbol string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed[symbol] = true
}

// Calls returns the symbols requested so far, in order
func (m *MockQuoteProvider) Calls() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.calls...)
}

// GetQuote returns the configured price or an ErrQuoteUnavailable error
func (m *MockQuoteProvider) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, symbol)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrQuoteUnavailable, err)
	}
	price, ok := m.prices[symbol]
	if !ok || m.failed[symbol] {
		return nil, fmt.Errorf("%w: %s", domain.ErrQuoteUnavailable, symbol)
	}
	return &domain.Quote{Symbol: symbol, Price: price, AsOf: m.asOf}, nil
}

// MockProfileProvider is an in-memory domain.ProfileProvider for testing
type MockProfileProvider struct {
	mu       sync.RWMutex
	profiles map[string]domain.StockProfile
}

// NewMockProfileProvider creates a new mock profile provider
func NewMockProfileProvider() *MockProfileProvider {
	return &MockProfileProvider{profiles: make(map[string]domain.StockProfile)}
}

// SetProfile registers the overview returned for profile.Symbol
func (m *MockProfileProvider) SetProfile(profile domain.StockProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.Symbol] = profile
}

// GetCompanyOverview returns the configured profile or an ErrProfileUnavailable error
func (m *MockProfileProvider) GetCompanyOverview(ctx context.Context, symbol string) (*domain.StockProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	profile, ok := m.profiles[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrProfileUnavailable, symbol)
	}
	return &profile, nil
}
