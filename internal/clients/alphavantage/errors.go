package alphavantage

import "fmt"

// ErrRateLimitExceeded is returned when the local daily budget is spent or the API throttles.
type ErrRateLimitExceeded struct {
	Message string
}

func (e ErrRateLimitExceeded) Error() string {
	if e.Message != "" {
		return "alpha vantage rate limit exceeded: " + e.Message
	}
	return "alpha vantage rate limit exceeded"
}

// ErrInvalidAPIKey is returned when no key is configured or the API rejects it.
type ErrInvalidAPIKey struct{}

func (e ErrInvalidAPIKey) Error() string {
	return "alpha vantage API key is missing or invalid"
}

// ErrSymbolNotFound is returned when the API has no data for a symbol.
type ErrSymbolNotFound struct {
	Symbol string
}

func (e ErrSymbolNotFound) Error() string {
	return fmt.Sprintf("alpha vantage has no data for symbol %s", e.Symbol)
}

// ErrAPIError carries an "Error Message" returned by the API.
type ErrAPIError struct {
	Message string
}

func (e ErrAPIError) Error() string {
	return "alpha vantage error: " + e.Message
}

// ErrUnexpectedStatus is returned for non-200 responses.
type ErrUnexpectedStatus struct {
	StatusCode int
}

func (e ErrUnexpectedStatus) Error() string {
	return fmt.Sprintf("alpha vantage returned status %d", e.StatusCode)
}
