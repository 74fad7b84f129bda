// Package alphavantage provides a client for the Alpha Vantage quote and fundamentals API.
package alphavantage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aristath/stockledger/internal/domain"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Alpha Vantage query endpoint
	DefaultBaseURL = "https://www.alphavantage.co/query"
	// DefaultDailyLimit matches the free tier
	DefaultDailyLimit = 25
	// DefaultRequestsPerMinute matches the free tier burst allowance
	DefaultRequestsPerMinute = 5
)

// ClientInterface is the subset of the client used by the ledger.
type ClientInterface interface {
	GetQuote(ctx context.Context, symbol string) (*domain.Quote, error)
	GetCompanyOverview(ctx context.Context, symbol string) (*domain.StockProfile, error)
	GetRemainingRequests() int
}

var (
	_ ClientInterface        = (*Client)(nil)
	_ domain.QuoteProvider   = (*Client)(nil)
	_ domain.ProfileProvider = (*Client)(nil)
)

// Options tunes the client. Zero values fall back to defaults.
type Options struct {
	BaseURL           string
	DailyLimit        int
	RequestsPerMinute int
	Timeout           time.Duration
}

// DefaultOptions returns free-tier settings.
func DefaultOptions() Options {
	return Options{
		BaseURL:           DefaultBaseURL,
		DailyLimit:        DefaultDailyLimit,
		RequestsPerMinute: DefaultRequestsPerMinute,
		Timeout:           10 * time.Second,
	}
}

// Client for the Alpha Vantage API
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	log     zerolog.Logger
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	metrics domain.MetricsRecorder

	mu           sync.Mutex
	dailyLimit   int
	requestCount int
	resetAt      time.Time
}

// NewClient creates a client with default options
func NewClient(apiKey string, log zerolog.Logger) *Client {
	return NewClientWithOptions(apiKey, DefaultOptions(), log)
}

// NewClientWithOptions creates a client with explicit options
func NewClientWithOptions(apiKey string, opts Options, log zerolog.Logger) *Client {
	defaults := DefaultOptions()
	if opts.BaseURL == "" {
		opts.BaseURL = defaults.BaseURL
	}
	if opts.DailyLimit <= 0 {
		opts.DailyLimit = defaults.DailyLimit
	}
	if opts.RequestsPerMinute <= 0 {
		opts.RequestsPerMinute = defaults.RequestsPerMinute
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}

	c := &Client{
		apiKey:     apiKey,
		baseURL:    opts.BaseURL,
		client:     &http.Client{Timeout: opts.Timeout},
		log:        log.With().Str("client", "alphavantage").Logger(),
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), opts.RequestsPerMinute),
		dailyLimit: opts.DailyLimit,
		resetAt:    nextMidnightUTC(),
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "alphavantage",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})

	return c
}

// SetMetrics attaches a recorder for quote outcomes
func (c *Client) SetMetrics(m domain.MetricsRecorder) {
	c.metrics = m
}

// GetRemainingRequests returns the number of requests left in today's budget
func (c *Client) GetRemainingRequests() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maybeResetLocked()
	return c.dailyLimit - c.requestCount
}

// ResetDailyCounter restores the full daily budget
func (c *Client) ResetDailyCounter() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requestCount = 0
	c.resetAt = nextMidnightUTC()
}

func (c *Client) maybeResetLocked() {
	if time.Now().UTC().After(c.resetAt) {
		c.requestCount = 0
		c.resetAt = nextMidnightUTC()
	}
}

// checkRateLimit consumes one request from the daily budget
func (c *Client) checkRateLimit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maybeResetLocked()
	if c.requestCount >= c.dailyLimit {
		return ErrRateLimitExceeded{Message: fmt.Sprintf("daily budget of %d requests used", c.dailyLimit)}
	}
	c.requestCount++
	return nil
}

// GetQuote fetches the current price for a symbol via GLOBAL_QUOTE.
// Every failure wraps domain.ErrQuoteUnavailable.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*domain.Quote, error) {
	symbol = domain.NormalizeSymbol(symbol)

	body, err := c.get(ctx, "GLOBAL_QUOTE", symbol)
	if err != nil {
		c.recordQuote("unavailable")
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrQuoteUnavailable, symbol, err)
	}

	gq, err := parseGlobalQuote(body)
	if err != nil {
		var notFound ErrSymbolNotFound
		if errors.As(err, &notFound) {
			err = ErrSymbolNotFound{Symbol: symbol}
		}
		c.recordQuote("unavailable")
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrQuoteUnavailable, symbol, err)
	}

	quote := &domain.Quote{
		Symbol: gq.Symbol,
		Price:  gq.Price,
		AsOf:   gq.LatestTradingDay,
	}
	if quote.Symbol == "" {
		quote.Symbol = symbol
	}
	if quote.AsOf == "" {
		quote.AsOf = domain.UnknownAsOf
	}

	c.recordQuote("ok")
	c.log.Debug().
		Str("symbol", quote.Symbol).
		Str("price", quote.Price.String()).
		Str("as_of", quote.AsOf).
		Msg("Fetched quote")

	return quote, nil
}

// GetCompanyOverview fetches descriptive fields via OVERVIEW.
// Every failure wraps domain.ErrProfileUnavailable.
func (c *Client) GetCompanyOverview(ctx context.Context, symbol string) (*domain.StockProfile, error) {
	symbol = domain.NormalizeSymbol(symbol)

	body, err := c.get(ctx, "OVERVIEW", symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrProfileUnavailable, symbol, err)
	}

	overview, err := parseCompanyOverview(body)
	if err != nil {
		var notFound ErrSymbolNotFound
		if errors.As(err, &notFound) {
			err = ErrSymbolNotFound{Symbol: symbol}
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrProfileUnavailable, symbol, err)
	}

	return overview.toProfile(symbol), nil
}

func (o *CompanyOverview) toProfile(symbol string) *domain.StockProfile {
	profile := &domain.StockProfile{
		Symbol:    symbol,
		Company:   o.Name,
		MarketCap: domain.UnknownMarketCap,
		PERatio:   nullDecimal(o.PERatio),
		Beta:      nullDecimal(o.Beta),
	}
	if profile.Company == "" {
		profile.Company = domain.PlaceholderCompany(symbol)
	}
	if o.MarketCapitalization > 0 {
		profile.MarketCap = strconv.FormatInt(o.MarketCapitalization, 10)
	}
	return profile
}

// get performs one API call. The breaker only counts transport failures and 5xx responses.
func (c *Client) get(ctx context.Context, function, symbol string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrInvalidAPIKey{}
	}
	if err := c.checkRateLimit(); err != nil {
		c.log.Warn().Str("function", function).Str("symbol", symbol).Msg("Daily request budget exhausted")
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	params := url.Values{}
	params.Set("function", function)
	params.Set("symbol", symbol)
	params.Set("apikey", c.apiKey)
	reqURL := c.baseURL + "?" + params.Encode()

	c.log.Debug().Str("function", function).Str("symbol", symbol).Msg("Requesting Alpha Vantage")

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.client.Do(req)
		if err != nil {
			// Strip the URL so the API key never reaches logs or callers
			var urlErr *url.Error
			if errors.As(err, &urlErr) {
				return nil, fmt.Errorf("request failed: %w", urlErr.Err)
			}
			return nil, fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, ErrUnexpectedStatus{StatusCode: resp.StatusCode}
		}
		return &response{status: resp.StatusCode, body: body}, nil
	})
	if err != nil {
		return nil, err
	}

	resp := result.(*response)
	if resp.status != http.StatusOK {
		return nil, ErrUnexpectedStatus{StatusCode: resp.status}
	}
	if err := c.checkAPIError(resp.body); err != nil {
		c.log.Warn().Err(err).Str("function", function).Str("symbol", symbol).Msg("Alpha Vantage rejected request")
		return nil, err
	}

	return resp.body, nil
}

type response struct {
	status int
	body   []byte
}

// checkAPIError detects error payloads, which Alpha Vantage returns with status 200
func (c *Client) checkAPIError(body []byte) error {
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		if strings.Contains(string(body), "Thank you for using Alpha Vantage") {
			return ErrRateLimitExceeded{Message: "throttled by API"}
		}
		return fmt.Errorf("malformed response: %w", err)
	}

	if note, ok := payload["Note"].(string); ok {
		return ErrRateLimitExceeded{Message: note}
	}
	if info, ok := payload["Information"].(string); ok {
		return ErrRateLimitExceeded{Message: info}
	}
	if msg, ok := payload["Error Message"].(string); ok {
		if strings.Contains(strings.ToLower(msg), "apikey") {
			return ErrInvalidAPIKey{}
		}
		return ErrAPIError{Message: msg}
	}

	return nil
}

func (c *Client) recordQuote(outcome string) {
	if c.metrics != nil {
		c.metrics.RecordQuote(outcome)
	}
}
