package ledger

import (
	"context"
	"database/sql"
	"errors"

	"github.com/aristath/stockledger/internal/database"
	"github.com/aristath/stockledger/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var errNoRowsAffected = errors.New("no rows affected")

var _ domain.LedgerStore = (*Repository)(nil)

// stocksColumns is the column list matching domain.Stock's db tags
const stocksColumns = `symbol, company, price, market_cap, pe_ratio, beta`

// Repository is the SQL-backed ledger store.
// A Repository returned to an InTx callback is bound to that transaction.
type Repository struct {
	db   *sqlx.DB
	q    sqlx.ExtContext
	inTx bool
	log  zerolog.Logger
}

// NewRepository creates a new ledger repository
func NewRepository(db *sqlx.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		q:   db,
		log: log.With().Str("repo", "ledger").Logger(),
	}
}

// InTx runs fn inside one transaction. Nested calls reuse the open transaction.
func (r *Repository) InTx(ctx context.Context, fn func(domain.LedgerStore) error) error {
	if r.inTx {
		return fn(r)
	}

	err := database.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		return fn(&Repository{db: r.db, q: tx, inTx: true, log: r.log})
	})
	if err != nil && !isClassified(err) {
		return domain.StoreError("run transaction", err)
	}
	return err
}

func isClassified(err error) bool {
	var le *domain.LedgerError
	var ise *domain.InsufficientSharesError
	return errors.As(err, &le) || errors.As(err, &ise)
}

// FindInvestorByName returns the investor or nil when absent
func (r *Repository) FindInvestorByName(ctx context.Context, name string) (*domain.Investor, error) {
	var inv domain.Investor
	err := sqlx.GetContext(ctx, r.q, &inv, r.q.Rebind(`SELECT id, name FROM investors WHERE name = ?`), name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.StoreError("find investor", err)
	}
	return &inv, nil
}

// InsertInvestorIfAbsent inserts the investor unless the name is taken
func (r *Repository) InsertInvestorIfAbsent(ctx context.Context, name string) (bool, error) {
	query := r.q.Rebind(`INSERT INTO investors (name) VALUES (?) ON CONFLICT (name) DO NOTHING RETURNING id`)

	var id int64
	err := r.q.QueryRowxContext(ctx, query, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, domain.StoreError("insert investor", err)
	}

	r.log.Info().Str("investor", name).Int64("id", id).Msg("Investor created")
	return true, nil
}

// FindStockBySymbol returns the stock or nil when absent
func (r *Repository) FindStockBySymbol(ctx context.Context, symbol string) (*domain.Stock, error) {
	var stock domain.Stock
	query := r.q.Rebind(`SELECT ` + stocksColumns + ` FROM stocks WHERE symbol = ?`)
	err := sqlx.GetContext(ctx, r.q, &stock, query, symbol)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.StoreError("find stock", err)
	}
	return &stock, nil
}

// InsertStock inserts a new stock row
func (r *Repository) InsertStock(ctx context.Context, stock domain.Stock) error {
	query := r.q.Rebind(`INSERT INTO stocks (` + stocksColumns + `) VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := r.q.ExecContext(ctx, query,
		stock.Symbol, stock.Company, stock.Price, stock.MarketCap, stock.PERatio, stock.Beta)
	if err != nil {
		return domain.StoreError("insert stock", err)
	}
	return nil
}

// UpdateStockPrice overwrites the stored price
func (r *Repository) UpdateStockPrice(ctx context.Context, symbol string, price decimal.Decimal) error {
	res, err := r.q.ExecContext(ctx, r.q.Rebind(`UPDATE stocks SET price = ? WHERE symbol = ?`), price, symbol)
	if err != nil {
		return domain.StoreError("update stock price", err)
	}
	return expectOneRow(res, func() error { return domain.StockNotFound(symbol) })
}

// UpdateStockProfile overwrites the descriptive columns in one statement
func (r *Repository) UpdateStockProfile(ctx context.Context, profile domain.StockProfile) error {
	query := r.q.Rebind(`UPDATE stocks SET company = ?, market_cap = ?, pe_ratio = ?, beta = ? WHERE symbol = ?`)
	res, err := r.q.ExecContext(ctx, query,
		profile.Company, profile.MarketCap, profile.PERatio, profile.Beta, profile.Symbol)
	if err != nil {
		return domain.StoreError("update stock profile", err)
	}
	return expectOneRow(res, func() error { return domain.StockNotFound(profile.Symbol) })
}

// ListStocks returns every stock ordered by symbol
func (r *Repository) ListStocks(ctx context.Context) ([]domain.Stock, error) {
	stocks := []domain.Stock{}
	if err := sqlx.SelectContext(ctx, r.q, &stocks, `SELECT `+stocksColumns+` FROM stocks ORDER BY symbol`); err != nil {
		return nil, domain.StoreError("list stocks", err)
	}
	return stocks, nil
}

// ListAllStockSymbols returns every known symbol ordered alphabetically
func (r *Repository) ListAllStockSymbols(ctx context.Context) ([]string, error) {
	symbols := []string{}
	if err := sqlx.SelectContext(ctx, r.q, &symbols, `SELECT symbol FROM stocks ORDER BY symbol`); err != nil {
		return nil, domain.StoreError("list stock symbols", err)
	}
	return symbols, nil
}

// FindHolding returns the holding or nil when absent
func (r *Repository) FindHolding(ctx context.Context, investorID int64, symbol string) (*domain.Holding, error) {
	var h domain.Holding
	query := r.q.Rebind(`SELECT investor_id, stock_symbol, shares FROM portfolios WHERE investor_id = ? AND stock_symbol = ?`)
	err := sqlx.GetContext(ctx, r.q, &h, query, investorID, symbol)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.StoreError("find holding", err)
	}
	return &h, nil
}

// InsertHolding creates a holding row
func (r *Repository) InsertHolding(ctx context.Context, investorID int64, symbol string, shares int64) error {
	query := r.q.Rebind(`INSERT INTO portfolios (investor_id, stock_symbol, shares) VALUES (?, ?, ?)`)
	if _, err := r.q.ExecContext(ctx, query, investorID, symbol, shares); err != nil {
		return domain.StoreError("insert holding", err)
	}
	return nil
}

// IncrementHoldingShares adds delta to an existing holding
func (r *Repository) IncrementHoldingShares(ctx context.Context, investorID int64, symbol string, delta int64) error {
	query := r.q.Rebind(`UPDATE portfolios SET shares = shares + ? WHERE investor_id = ? AND stock_symbol = ?`)
	res, err := r.q.ExecContext(ctx, query, delta, investorID, symbol)
	if err != nil {
		return domain.StoreError("increment holding", err)
	}
	return expectOneRow(res, func() error { return domain.StoreError("increment holding", errNoRowsAffected) })
}

// SetHoldingShares overwrites the share count of an existing holding
func (r *Repository) SetHoldingShares(ctx context.Context, investorID int64, symbol string, shares int64) error {
	query := r.q.Rebind(`UPDATE portfolios SET shares = ? WHERE investor_id = ? AND stock_symbol = ?`)
	res, err := r.q.ExecContext(ctx, query, shares, investorID, symbol)
	if err != nil {
		return domain.StoreError("update holding", err)
	}
	return expectOneRow(res, func() error { return domain.StoreError("update holding", errNoRowsAffected) })
}

// DeleteHolding removes a holding row
func (r *Repository) DeleteHolding(ctx context.Context, investorID int64, symbol string) error {
	query := r.q.Rebind(`DELETE FROM portfolios WHERE investor_id = ? AND stock_symbol = ?`)
	res, err := r.q.ExecContext(ctx, query, investorID, symbol)
	if err != nil {
		return domain.StoreError("delete holding", err)
	}
	return expectOneRow(res, func() error { return domain.StoreError("delete holding", errNoRowsAffected) })
}

// ListHoldingsWithStock joins the investor's holdings with stock data and computes each row's value
func (r *Repository) ListHoldingsWithStock(ctx context.Context, investorID int64) ([]domain.HoldingView, error) {
	query := r.q.Rebind(`
		SELECT s.symbol, s.company, p.shares, s.price, s.beta
		FROM portfolios p
		JOIN stocks s ON p.stock_symbol = s.symbol
		WHERE p.investor_id = ?
		ORDER BY s.symbol
	`)

	rows := []domain.HoldingView{}
	if err := sqlx.SelectContext(ctx, r.q, &rows, query, investorID); err != nil {
		return nil, domain.StoreError("list holdings", err)
	}
	for i := range rows {
		rows[i].Value = rows[i].Price.Mul(decimal.NewFromInt(rows[i].Shares))
	}
	return rows, nil
}

func expectOneRow(res sql.Result, missing func() error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return domain.StoreError("read rows affected", err)
	}
	if n == 0 {
		return missing()
	}
	return nil
}
