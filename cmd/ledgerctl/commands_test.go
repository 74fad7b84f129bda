package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aristath/stockledger/internal/config"
	"github.com/aristath/stockledger/internal/database"
	"github.com/aristath/stockledger/internal/di"
	"github.com/aristath/stockledger/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// newQuoteServer serves GLOBAL_QUOTE and OVERVIEW for the given prices; other symbols are unknown
func newQuoteServer(t *testing.T, prices map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("symbol")
		price, ok := prices[symbol]

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("function") {
		case "GLOBAL_QUOTE":
			if !ok {
				fmt.Fprint(w, `{"Global Quote": {}}`)
				return
			}
			fmt.Fprintf(w, `{"Global Quote": {"01. symbol": %q, "05. price": %q}}`, symbol, price)
		case "OVERVIEW":
			if !ok {
				fmt.Fprint(w, `{}`)
				return
			}
			fmt.Fprintf(w, `{"Symbol": %q, "Name": "%s Corp", "MarketCapitalization": "1000000", "PERatio": "18.5", "Beta": "1.3"}`, symbol, symbol)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

type cliFixture struct {
	dataDir string
	baseURL string
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	server := newQuoteServer(t, map[string]string{"XYZ": "50.005", "ABC": "10"})
	return &cliFixture{dataDir: t.TempDir(), baseURL: server.URL}
}

// run executes ledgerctl with args against the fixture's database and returns stdout
func (f *cliFixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c := newCLI(&out)
	c.wire = func(log zerolog.Logger) (*di.Container, error) {
		cfg := &config.Config{
			DataDir:  f.dataDir,
			Database: config.DatabaseConfig{Driver: database.DriverSQLite},
			AlphaVantage: config.AlphaVantageConfig{
				APIKey:            "test",
				BaseURL:           f.baseURL,
				RequestsPerMinute: 600,
			},
		}
		container, _, err := di.Wire(cfg, zerolog.Nop(), nil)
		return container, err
	}

	cmd := newRootCmd(c)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	require.NoError(t, c.close())
	return out.String(), err
}

func (f *cliFixture) runJSON(t *testing.T, out interface{}, args ...string) {
	t.Helper()
	stdout, err := f.run(t, args...)
	require.NoError(t, err, stdout)
	require.NoError(t, json.Unmarshal([]byte(stdout), out), stdout)
}

func TestRegisterAndTrade(t *testing.T) {
	f := newCLIFixture(t)

	var reg map[string]interface{}
	f.runJSON(t, &reg, "register", "Alice")
	assert.Equal(t, true, reg["created"])
	assert.Equal(t, "Investor Alice has been added.", reg["message"])

	f.runJSON(t, &reg, "register", "Alice")
	assert.Equal(t, false, reg["created"])

	var buy map[string]interface{}
	f.runJSON(t, &buy, "buy", "Alice", "xyz", "10")
	assert.Equal(t, "XYZ", buy["symbol"])
	assert.Equal(t, "BUY", buy["side"])
	assert.Equal(t, 50.01, buy["price"])
	assert.Equal(t, 500.05, buy["total"])

	var sell map[string]interface{}
	f.runJSON(t, &sell, "sell", "Alice", "XYZ", "4")
	assert.Equal(t, "SELL", sell["side"])
	assert.Equal(t, float64(4), sell["shares"])

	var portfolio map[string]interface{}
	f.runJSON(t, &portfolio, "portfolio", "Alice")
	holdings := portfolio["holdings"].([]interface{})
	require.Len(t, holdings, 1)
	assert.Equal(t, float64(6), holdings[0].(map[string]interface{})["shares"])
}

func TestTrade_Errors(t *testing.T) {
	f := newCLIFixture(t)
	_, err := f.run(t, "register", "Alice")
	require.NoError(t, err)

	tests := []struct {
		name    string
		args    []string
		kind    error
		message string
	}{
		{"fractional shares", []string{"buy", "Alice", "XYZ", "1.5"}, domain.ErrInvalidShares,
			`Shares must be a positive integer, got "1.5".`},
		{"zero shares", []string{"sell", "Alice", "XYZ", "0"}, domain.ErrInvalidShares,
			`Shares must be a positive integer, got "0".`},
		{"unknown investor", []string{"buy", "Bob", "XYZ", "1"}, domain.ErrInvestorNotFound,
			"Investor Bob not found."},
		{"no holding", []string{"sell", "Alice", "XYZ", "1"}, domain.ErrNoSuchHolding,
			"Alice does not own any shares of XYZ."},
		{"unknown symbol", []string{"buy", "Alice", "NOPE", "1"}, domain.ErrQuoteUnavailable, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.run(t, tt.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			if tt.message != "" {
				assert.Equal(t, tt.message, domain.ErrorMessage(err))
			}
		})
	}
}

func TestArgsValidation(t *testing.T) {
	f := newCLIFixture(t)

	for _, args := range [][]string{
		{"buy", "Alice", "XYZ"},
		{"register"},
		{"risk", "stock"},
		{"stocks", "extra"},
	} {
		_, err := f.run(t, args...)
		assert.Error(t, err, args)
	}
}

func TestUnsupportedOutputFormat(t *testing.T) {
	f := newCLIFixture(t)

	_, err := f.run(t, "stocks", "-o", "xml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported output format "xml"`)
}

func TestRiskAndReport(t *testing.T) {
	f := newCLIFixture(t)
	_, err := f.run(t, "register", "Alice")
	require.NoError(t, err)
	_, err = f.run(t, "buy", "Alice", "XYZ", "2")
	require.NoError(t, err)

	var stockRisk map[string]interface{}
	f.runJSON(t, &stockRisk, "risk", "stock", "XYZ")
	assert.Equal(t, "Not available", stockRisk["betaInterpretation"])
	assert.Nil(t, stockRisk["beta"])

	var profile map[string]interface{}
	f.runJSON(t, &profile, "profile", "XYZ")
	assert.Equal(t, "XYZ Corp", profile["company"])
	assert.Equal(t, 1.3, profile["beta"])

	var portfolioRisk map[string]interface{}
	f.runJSON(t, &portfolioRisk, "risk", "portfolio", "Alice")
	assert.Equal(t, "high", portfolioRisk["riskLevel"])

	text, err := f.run(t, "report", "Alice", "--text")
	require.NoError(t, err)
	assert.Contains(t, text, "Individual Stock Assessments:")
	assert.Contains(t, text, "3. P/E Ratio: 18.50")
}

func TestRefreshPricesAndStocks(t *testing.T) {
	f := newCLIFixture(t)
	_, err := f.run(t, "register", "Alice")
	require.NoError(t, err)
	_, err = f.run(t, "buy", "Alice", "ABC", "1")
	require.NoError(t, err)
	_, err = f.run(t, "buy", "Alice", "XYZ", "1")
	require.NoError(t, err)

	var summary map[string]interface{}
	f.runJSON(t, &summary, "refresh-prices")
	assert.Equal(t, float64(2), summary["total"])
	assert.Len(t, summary["updated"], 2)
	assert.Empty(t, summary["failed"])

	var stocks []map[string]interface{}
	f.runJSON(t, &stocks, "stocks")
	require.Len(t, stocks, 2)
	assert.Equal(t, "ABC", stocks[0]["symbol"])
	assert.Equal(t, "XYZ", stocks[1]["symbol"])
}

func TestYAMLOutput(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(t, "register", "Alice", "-o", "yaml")
	require.NoError(t, err)

	var reg map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &reg))
	assert.Equal(t, "Alice", reg["name"])
	assert.Equal(t, true, reg["created"])
}

func TestMigrate(t *testing.T) {
	f := newCLIFixture(t)

	var status map[string]string
	f.runJSON(t, &status, "migrate")

	assert.Equal(t, "sqlite", status["driver"])
	assert.Equal(t, "up to date", status["status"])
}

func TestHelpDoesNotWire(t *testing.T) {
	var out bytes.Buffer
	c := newCLI(&out)
	c.wire = func(zerolog.Logger) (*di.Container, error) {
		t.Fatal("help must not open the database")
		return nil, nil
	}

	cmd := newRootCmd(c)
	cmd.SetArgs([]string{"help", "buy"})
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "buy NAME SYMBOL SHARES")
}

func TestParseShares(t *testing.T) {
	shares, err := parseShares(" 12 ")
	require.NoError(t, err)
	assert.Equal(t, int64(12), shares)

	for _, arg := range []string{"", "-3", "0", "abc", "2.0", "99999999999999999999"} {
		_, err := parseShares(arg)
		assert.ErrorIs(t, err, domain.ErrInvalidShares, arg)
	}
}

func TestWriteOutput(t *testing.T) {
	v := map[string]interface{}{"totalValue": 102.5, "holdings": []string{}}

	var jsonOut bytes.Buffer
	require.NoError(t, writeOutput(&jsonOut, formatJSON, v))
	assert.JSONEq(t, `{"totalValue":102.5,"holdings":[]}`, jsonOut.String())

	var yamlOut bytes.Buffer
	require.NoError(t, writeOutput(&yamlOut, formatYAML, v))
	assert.Equal(t, "holdings: []\ntotalValue: 102.5\n", yamlOut.String())

	assert.Error(t, writeOutput(&bytes.Buffer{}, "csv", v))
}
