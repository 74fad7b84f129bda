package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aristath/stockledger/internal/database"
	"github.com/aristath/stockledger/internal/domain"
	"github.com/aristath/stockledger/internal/modules/ledger"
	"github.com/aristath/stockledger/internal/modules/portfolio"
	testingpkg "github.com/aristath/stockledger/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type handlerFixture struct {
	db     *database.DB
	ledger *ledger.Service
	router chi.Router
}

func setupHandler(t *testing.T) *handlerFixture {
	t.Helper()
	db, cleanup := testingpkg.NewTestDB(t, "portfolio_handlers")
	t.Cleanup(cleanup)

	repo := ledger.NewRepository(db.Conn(), zerolog.Nop())
	quotes := testingpkg.NewMockQuoteProvider()
	quotes.SetPrice("AAA", "10.50")
	quotes.SetPrice("BBB", "20")

	handler := NewHandler(portfolio.NewService(repo, zerolog.Nop()), zerolog.Nop())
	router := chi.NewRouter()
	router.Route("/api", handler.RegisterRoutes)

	return &handlerFixture{
		db:     db,
		ledger: ledger.NewService(repo, quotes, zerolog.Nop()),
		router: router,
	}
}

func (f *handlerFixture) get(t *testing.T, path string, out interface{}) int {
	t.Helper()
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

// seedAlice gives Alice 4 AAA (beta 1.5) and 3 BBB (no beta)
func (f *handlerFixture) seedAlice(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	beta := "1.5"
	testingpkg.SeedStock(t, f.db, "AAA", "10.50", &beta)

	_, err := f.ledger.RegisterInvestor(ctx, "Alice")
	require.NoError(t, err)
	_, err = f.ledger.Buy(ctx, "Alice", "AAA", 4)
	require.NoError(t, err)
	_, err = f.ledger.Buy(ctx, "Alice", "BBB", 3)
	require.NoError(t, err)
}

func TestHandleGetPortfolio(t *testing.T) {
	f := setupHandler(t)
	f.seedAlice(t)

	var resp PortfolioResponse
	code := f.get(t, "/api/portfolios/Alice", &resp)

	require.Equal(t, http.StatusOK, code)
	assert.False(t, resp.Empty)
	require.Len(t, resp.Holdings, 2)
	assert.Equal(t, "AAA", resp.Holdings[0].Symbol)
	assert.Equal(t, 42.0, resp.Holdings[0].Value)
	require.NotNil(t, resp.Holdings[0].Beta)
	assert.Equal(t, 1.5, *resp.Holdings[0].Beta)
	assert.Nil(t, resp.Holdings[1].Beta)
	assert.Equal(t, 102.0, resp.TotalValue)
	assert.InDelta(t, 1.5, resp.RiskScore, 1e-9)
}

func TestHandleGetPortfolio_UnknownInvestorIsEmpty(t *testing.T) {
	f := setupHandler(t)

	var resp PortfolioResponse
	code := f.get(t, "/api/portfolios/Bob", &resp)

	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Empty)
	assert.Equal(t, "Bob has no stocks in their portfolio.", resp.Message)
	assert.NotNil(t, resp.Holdings)
	assert.Empty(t, resp.Holdings)
}

func TestHandleGetPortfolioRisk(t *testing.T) {
	f := setupHandler(t)
	f.seedAlice(t)

	var resp PortfolioRiskResponse
	code := f.get(t, "/api/portfolios/Alice/risk", &resp)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "high", resp.RiskLevel)
	assert.Equal(t, "Your portfolio is considered more risky than the market.", resp.Interpretation)
	assert.Contains(t, resp.Summary, "Total Portfolio Value: $102.00")
}

func TestHandleGetReport(t *testing.T) {
	f := setupHandler(t)
	f.seedAlice(t)

	var resp ReportResponse
	code := f.get(t, "/api/portfolios/Alice/report", &resp)

	require.Equal(t, http.StatusOK, code)
	require.Len(t, resp.Stocks, 2)
	assert.Equal(t, "AAA", resp.Stocks[0].Symbol)
	assert.Contains(t, resp.Report, "Individual Stock Assessments:")
}

func TestHandleGetStockRisk(t *testing.T) {
	f := setupHandler(t)
	f.seedAlice(t)

	var resp StockRiskResponse
	code := f.get(t, "/api/stocks/bbb/risk", &resp)

	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "BBB", resp.Symbol)
	assert.Nil(t, resp.Beta)
	assert.Nil(t, resp.PERatio)
	assert.Equal(t, "Not available", resp.BetaInterpretation)
	assert.Equal(t, 20.0, resp.Price)
}

func TestHandleGetStockRisk_NotFound(t *testing.T) {
	f := setupHandler(t)

	var resp map[string]string
	code := f.get(t, "/api/stocks/XYZ/risk", &resp)

	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Stock XYZ not found.", resp["error"])
}

// MockPortfolioService is a mock implementation of PortfolioService
type MockPortfolioService struct {
	mock.Mock
}

func (m *MockPortfolioService) GetPortfolio(ctx context.Context, investorName string) (portfolio.Portfolio, error) {
	args := m.Called(ctx, investorName)
	return args.Get(0).(portfolio.Portfolio), args.Error(1)
}

func (m *MockPortfolioService) EvaluateStockRisk(ctx context.Context, symbol string) (portfolio.StockRiskReport, error) {
	args := m.Called(ctx, symbol)
	return args.Get(0).(portfolio.StockRiskReport), args.Error(1)
}

func (m *MockPortfolioService) EvaluatePortfolioRisk(ctx context.Context, investorName string) (portfolio.PortfolioRiskReport, error) {
	args := m.Called(ctx, investorName)
	return args.Get(0).(portfolio.PortfolioRiskReport), args.Error(1)
}

func (m *MockPortfolioService) ComprehensiveReport(ctx context.Context, investorName string) (portfolio.ComprehensiveReport, error) {
	args := m.Called(ctx, investorName)
	return args.Get(0).(portfolio.ComprehensiveReport), args.Error(1)
}

func TestHandleGetPortfolio_StoreFailure(t *testing.T) {
	svc := new(MockPortfolioService)
	svc.On("GetPortfolio", mock.Anything, "Alice").
		Return(portfolio.Portfolio{}, domain.StoreError("list holdings", errors.New("database is locked")))

	router := chi.NewRouter()
	router.Route("/api", NewHandler(svc, zerolog.Nop()).RegisterRoutes)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/portfolios/Alice", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal storage error."}`, rec.Body.String())
	svc.AssertExpectations(t)
}
