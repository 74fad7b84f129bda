package alphavantage

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// GlobalQuote is the GLOBAL_QUOTE payload.
type GlobalQuote struct {
	Symbol           string
	Open             float64
	High             float64
	Low              float64
	Price            decimal.Decimal
	Volume           int64
	LatestTradingDay string
	PreviousClose    float64
	Change           float64
	ChangePercent    float64
}

// CompanyOverview is the OVERVIEW payload, reduced to the fields the ledger keeps.
type CompanyOverview struct {
	Symbol               string
	AssetType            string
	Name                 string
	Exchange             string
	Currency             string
	Sector               string
	Industry             string
	MarketCapitalization int64
	PERatio              *float64
	EPS                  *float64
	Beta                 *float64
	DividendYield        *float64
	FiftyTwoWeekHigh     *float64
	FiftyTwoWeekLow      *float64
}

func parseGlobalQuote(body []byte) (*GlobalQuote, error) {
	var raw struct {
		GlobalQuote map[string]string `json:"Global Quote"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse global quote: %w", err)
	}
	if len(raw.GlobalQuote) == 0 {
		return nil, ErrSymbolNotFound{}
	}

	q := raw.GlobalQuote
	priceStr := strings.TrimSpace(q["05. price"])
	if priceStr == "" {
		return nil, ErrSymbolNotFound{Symbol: q["01. symbol"]}
	}
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price %q: %w", priceStr, err)
	}
	// A quote without a positive price is treated as an unknown symbol
	if !price.IsPositive() {
		return nil, ErrSymbolNotFound{Symbol: q["01. symbol"]}
	}

	return &GlobalQuote{
		Symbol:           q["01. symbol"],
		Open:             parseFloat64(q["02. open"]),
		High:             parseFloat64(q["03. high"]),
		Low:              parseFloat64(q["04. low"]),
		Price:            price,
		Volume:           parseInt64(q["06. volume"]),
		LatestTradingDay: q["07. latest trading day"],
		PreviousClose:    parseFloat64(q["08. previous close"]),
		Change:           parseFloat64(q["09. change"]),
		ChangePercent:    parseFloat64(q["10. change percent"]),
	}, nil
}

func parseCompanyOverview(body []byte) (*CompanyOverview, error) {
	var raw map[string]string
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse company overview: %w", err)
	}
	if raw["Symbol"] == "" {
		return nil, ErrSymbolNotFound{}
	}

	return &CompanyOverview{
		Symbol:               raw["Symbol"],
		AssetType:            raw["AssetType"],
		Name:                 raw["Name"],
		Exchange:             raw["Exchange"],
		Currency:             raw["Currency"],
		Sector:               raw["Sector"],
		Industry:             raw["Industry"],
		MarketCapitalization: parseInt64(raw["MarketCapitalization"]),
		PERatio:              parseFloat64Ptr(raw["PERatio"]),
		EPS:                  parseFloat64Ptr(raw["EPS"]),
		Beta:                 parseFloat64Ptr(raw["Beta"]),
		DividendYield:        parseFloat64Ptr(raw["DividendYield"]),
		FiftyTwoWeekHigh:     parseFloat64Ptr(raw["52WeekHigh"]),
		FiftyTwoWeekLow:      parseFloat64Ptr(raw["52WeekLow"]),
	}, nil
}

func isMissing(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "None", "null", "-":
		return true
	}
	return false
}

func parseFloat64(s string) float64 {
	if isMissing(s) {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
	if err != nil {
		return 0
	}
	return v
}

func parseFloat64Ptr(s string) *float64 {
	if isMissing(s) {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(s), "%"), 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseInt64(s string) int64 {
	if isMissing(s) {
		return 0
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	// Some fields arrive as decimals or in scientific notation
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(math.Trunc(f))
}

func nextMidnightUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}

func nullDecimal(v *float64) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(*v))
}
