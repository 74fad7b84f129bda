package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aristath/stockledger/internal/database"
	"github.com/aristath/stockledger/internal/modules/ledger"
	testingpkg "github.com/aristath/stockledger/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handlerFixture struct {
	db     *database.DB
	quotes *testingpkg.MockQuoteProvider
	router chi.Router
}

func setupHandler(t *testing.T) *handlerFixture {
	t.Helper()
	db, cleanup := testingpkg.NewTestDB(t, "ledger_handlers")
	t.Cleanup(cleanup)

	quotes := testingpkg.NewMockQuoteProvider()
	repo := ledger.NewRepository(db.Conn(), zerolog.Nop())
	handler := NewHandler(ledger.NewService(repo, quotes, zerolog.Nop()), zerolog.Nop())

	router := chi.NewRouter()
	router.Route("/api", handler.RegisterRoutes)
	return &handlerFixture{db: db, quotes: quotes, router: router}
}

func (f *handlerFixture) post(t *testing.T, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleRegisterInvestor(t *testing.T) {
	f := setupHandler(t)

	rec := f.post(t, "/api/investors", `{"investorName":"Alice"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["created"])
	assert.Equal(t, "Investor Alice has been added.", body["message"])

	rec = f.post(t, "/api/investors", `{"investorName":"Alice"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["created"])
	assert.Equal(t, 1, testingpkg.CountRows(t, f.db, "investors"))
}

func TestHandleRegisterInvestor_Invalid(t *testing.T) {
	f := setupHandler(t)

	for _, body := range []string{`{"investorName":"   "}`, `{}`, `{"name":"Alice"}`, `not json`} {
		rec := f.post(t, "/api/investors", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.NotEmpty(t, decodeBody(t, rec)["error"], body)
	}
	assert.Equal(t, 0, testingpkg.CountRows(t, f.db, "investors"))
}

func TestHandleBuyAndSell(t *testing.T) {
	f := setupHandler(t)
	f.quotes.SetPrice("XYZ", "50.005")
	f.post(t, "/api/investors", `{"investorName":"Alice"}`)

	rec := f.post(t, "/api/trades/buy", `{"investorName":"Alice","stockSymbol":"xyz","shares":10}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var buy TradeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &buy))
	assert.Equal(t, "XYZ", buy.Symbol)
	assert.Equal(t, "BUY", buy.Side)
	assert.Equal(t, 50.01, buy.Price)
	assert.Equal(t, 500.05, buy.Total)
	assert.True(t, buy.PriceAvailable)

	rec = f.post(t, "/api/trades/sell", `{"investorName":"Alice","stockSymbol":"XYZ","shares":4}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var sell TradeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sell))
	assert.Equal(t, "SELL", sell.Side)
	assert.Equal(t, int64(4), sell.Shares)
}

func TestHandleTrade_StatusMapping(t *testing.T) {
	f := setupHandler(t)
	f.quotes.SetPrice("XYZ", "50")
	f.post(t, "/api/investors", `{"investorName":"Alice"}`)
	f.post(t, "/api/trades/buy", `{"investorName":"Alice","stockSymbol":"XYZ","shares":3}`)

	tests := []struct {
		name    string
		path    string
		body    string
		status  int
		message string
	}{
		{"unknown investor", "/api/trades/buy", `{"investorName":"Bob","stockSymbol":"XYZ","shares":1}`,
			http.StatusNotFound, "Investor Bob not found."},
		{"no holding", "/api/trades/sell", `{"investorName":"Alice","stockSymbol":"ABC","shares":1}`,
			http.StatusNotFound, "Alice does not own any shares of ABC."},
		{"insufficient", "/api/trades/sell", `{"investorName":"Alice","stockSymbol":"XYZ","shares":5}`,
			http.StatusConflict, "Alice only owns 3 shares of XYZ."},
		{"quote unavailable", "/api/trades/buy", `{"investorName":"Alice","stockSymbol":"NOPE","shares":1}`,
			http.StatusFailedDependency, ""},
		{"zero shares", "/api/trades/buy", `{"investorName":"Alice","stockSymbol":"XYZ","shares":0}`,
			http.StatusBadRequest, "Shares must be a positive integer."},
		{"negative shares", "/api/trades/sell", `{"investorName":"Alice","stockSymbol":"XYZ","shares":-2}`,
			http.StatusBadRequest, "Shares must be a positive integer."},
		{"fractional shares", "/api/trades/buy", `{"investorName":"Alice","stockSymbol":"XYZ","shares":1.5}`,
			http.StatusBadRequest, ""},
		{"blank symbol", "/api/trades/buy", `{"investorName":"Alice","stockSymbol":" ","shares":1}`,
			http.StatusBadRequest, "Stock symbol is required."},
		{"unknown field", "/api/trades/buy", `{"investorName":"Alice","stockSymbol":"XYZ","shares":1,"price":1}`,
			http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.post(t, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			body := decodeBody(t, rec)
			if tt.message != "" {
				assert.Equal(t, tt.message, body["error"])
			} else {
				assert.NotEmpty(t, body["error"])
			}
		})
	}

	// Failed requests left the holding untouched
	rec := f.post(t, "/api/trades/sell", `{"investorName":"Alice","stockSymbol":"XYZ","shares":3}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, testingpkg.CountRows(t, f.db, "portfolios"))
}

func TestRegisterRoutes(t *testing.T) {
	f := setupHandler(t)

	for _, path := range []string{"/api/investors", "/api/trades/buy", "/api/trades/sell"} {
		rec := httptest.NewRecorder()
		f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, path)
	}
}
