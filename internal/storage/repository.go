// Package storage persists the tracker's five entities in SQLite. Singleton
// rows (config, balance, the two rates) are addressed by fixed ids seeded in
// the initial migration.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"nestegg/internal/core"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// GetSavingsConfig returns the singleton goal/interest-rate row.
func (r *Repository) GetSavingsConfig(ctx context.Context) (core.SavingsConfig, error) {
	var goal, rate string
	err := r.db.QueryRowContext(ctx,
		"SELECT goal, interest_rate FROM savings_config WHERE id = 1",
	).Scan(&goal, &rate)
	if err != nil {
		return core.SavingsConfig{}, fmt.Errorf("get savings config: %w", err)
	}

	cfg := core.SavingsConfig{}
	if cfg.Goal, err = decimal.NewFromString(goal); err != nil {
		return core.SavingsConfig{}, fmt.Errorf("parse stored goal %q: %w", goal, err)
	}
	if cfg.InterestRate, err = decimal.NewFromString(rate); err != nil {
		return core.SavingsConfig{}, fmt.Errorf("parse stored interest rate %q: %w", rate, err)
	}
	return cfg, nil
}

func (r *Repository) SetSavingsGoal(ctx context.Context, goal decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE savings_config SET goal = ? WHERE id = 1", goal.String())
	if err != nil {
		return fmt.Errorf("update savings goal: %w", err)
	}
	return nil
}

func (r *Repository) SetSavingsRate(ctx context.Context, rate decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE savings_config SET interest_rate = ? WHERE id = 1", rate.String())
	if err != nil {
		return fmt.Errorf("update interest rate: %w", err)
	}
	return nil
}

// AddSavingsRecord inserts a contribution with its rate snapshot and returns
// the new row id.
func (r *Repository) AddSavingsRecord(ctx context.Context, rec core.SavingsRecord) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO savings_records (amount, created_at, rate_cad, rate_cny) VALUES (?, ?, ?, ?)",
		rec.Amount.String(), rec.CreatedAt, rec.RateCAD.String(), rec.RateCNY.String())
	if err != nil {
		return 0, fmt.Errorf("insert savings record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("savings record id: %w", err)
	}

	slog.InfoContext(ctx, "Savings record saved", "id", id, "amount", rec.Amount)
	return id, nil
}

func (r *Repository) ListSavingsRecords(ctx context.Context) ([]core.SavingsRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, amount, created_at, rate_cad, rate_cny FROM savings_records ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("list savings records: %w", err)
	}
	defer rows.Close()

	var records []core.SavingsRecord
	for rows.Next() {
		rec, err := scanSavingsRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SavingsTotal recomputes the total from the stored rows. The total is a
// derived value; nothing maintains it incrementally.
func (r *Repository) SavingsTotal(ctx context.Context) (decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT amount FROM savings_records")
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum savings records: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, fmt.Errorf("scan savings amount: %w", err)
		}
		d, err := decimal.NewFromString(amount)
		if err != nil {
			return decimal.Zero, fmt.Errorf("parse stored amount %q: %w", amount, err)
		}
		total = total.Add(d)
	}
	return total, rows.Err()
}

func (r *Repository) DeleteSavingsRecord(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM savings_records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete savings record %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete savings record %d: %w", id, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Savings record deleted", "id", id)
	return nil
}

// GetEntertainmentBalance returns the singleton USD balance.
func (r *Repository) GetEntertainmentBalance(ctx context.Context) (decimal.Decimal, error) {
	var balance string
	err := r.db.QueryRowContext(ctx,
		"SELECT balance FROM entertainment_balance WHERE id = 1").Scan(&balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get entertainment balance: %w", err)
	}
	d, err := decimal.NewFromString(balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse stored balance %q: %w", balance, err)
	}
	return d, nil
}

// AdjustEntertainmentBalance adds delta (USD, signed) to the singleton
// balance. Read and write are two statements, mirroring the rest of the
// multi-statement handlers: the store is assumed to serialize writes to the
// singleton row.
func (r *Repository) AdjustEntertainmentBalance(ctx context.Context, delta decimal.Decimal) (decimal.Decimal, error) {
	current, err := r.GetEntertainmentBalance(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	next := current.Add(delta)
	_, err = r.db.ExecContext(ctx,
		"UPDATE entertainment_balance SET balance = ? WHERE id = 1", next.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("update entertainment balance: %w", err)
	}

	slog.InfoContext(ctx, "Entertainment balance adjusted", "delta", delta, "balance", next)
	return next, nil
}

func (r *Repository) AddEntertainmentRecord(ctx context.Context, rec core.EntertainmentRecord) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO entertainment_records (amount, currency, note, created_at, rate_cad, rate_cny) VALUES (?, ?, ?, ?, ?, ?)",
		rec.Amount.String(), string(rec.Currency), rec.Note, rec.CreatedAt, rec.RateCAD.String(), rec.RateCNY.String())
	if err != nil {
		return 0, fmt.Errorf("insert entertainment record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("entertainment record id: %w", err)
	}

	slog.InfoContext(ctx, "Entertainment record saved",
		"id", id, "amount", rec.Amount, "currency", rec.Currency)
	return id, nil
}

func (r *Repository) GetEntertainmentRecord(ctx context.Context, id int64) (core.EntertainmentRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, amount, currency, note, created_at, rate_cad, rate_cny FROM entertainment_records WHERE id = ?", id)
	rec, err := scanEntertainmentRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.EntertainmentRecord{}, core.ErrNotFound
	}
	return rec, err
}

func (r *Repository) ListEntertainmentRecords(ctx context.Context) ([]core.EntertainmentRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, amount, currency, note, created_at, rate_cad, rate_cny FROM entertainment_records ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("list entertainment records: %w", err)
	}
	defer rows.Close()

	var records []core.EntertainmentRecord
	for rows.Next() {
		rec, err := scanEntertainmentRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *Repository) DeleteEntertainmentRecord(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM entertainment_records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete entertainment record %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete entertainment record %d: %w", id, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Entertainment record deleted", "id", id)
	return nil
}

// GetRates returns both singleton rate rows. Rates that were never refreshed
// come back as zero with a zero UpdatedAt.
func (r *Repository) GetRates(ctx context.Context) (core.RatePair, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT currency, rate, updated_at FROM exchange_rates")
	if err != nil {
		return core.RatePair{}, fmt.Errorf("get exchange rates: %w", err)
	}
	defer rows.Close()

	var pair core.RatePair
	for rows.Next() {
		var (
			currency, rate string
			updatedAt      sql.NullTime
		)
		if err := rows.Scan(&currency, &rate, &updatedAt); err != nil {
			return core.RatePair{}, fmt.Errorf("scan exchange rate: %w", err)
		}
		d, err := decimal.NewFromString(rate)
		if err != nil {
			return core.RatePair{}, fmt.Errorf("parse stored rate %q: %w", rate, err)
		}
		er := core.ExchangeRate{Currency: core.Currency(currency), Rate: d}
		if updatedAt.Valid {
			er.UpdatedAt = updatedAt.Time
		}
		switch er.Currency {
		case core.CAD:
			pair.CAD = er
		case core.CNY:
			pair.CNY = er
		}
	}
	return pair, rows.Err()
}

// UpsertRate overwrites the singleton row for the given currency. Both rows
// are seeded by the initial migration, so this is always an update.
func (r *Repository) UpsertRate(ctx context.Context, currency core.Currency, rate decimal.Decimal, updatedAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE exchange_rates SET rate = ?, updated_at = ? WHERE currency = ?",
		rate.String(), updatedAt, string(currency))
	if err != nil {
		return fmt.Errorf("update %s rate: %w", currency, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s rate: %w", currency, err)
	}
	if n == 0 {
		return fmt.Errorf("no %s rate row, database not migrated", currency)
	}

	slog.InfoContext(ctx, "Exchange rate updated", "currency", currency, "rate", rate)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSavingsRecord(row rowScanner) (core.SavingsRecord, error) {
	var rec core.SavingsRecord
	var amount, rateCAD, rateCNY string
	if err := row.Scan(&rec.ID, &amount, &rec.CreatedAt, &rateCAD, &rateCNY); err != nil {
		return core.SavingsRecord{}, fmt.Errorf("scan savings record: %w", err)
	}
	var err error
	if rec.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.SavingsRecord{}, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}
	if rec.RateCAD, err = decimal.NewFromString(rateCAD); err != nil {
		return core.SavingsRecord{}, fmt.Errorf("parse stored CAD rate %q: %w", rateCAD, err)
	}
	if rec.RateCNY, err = decimal.NewFromString(rateCNY); err != nil {
		return core.SavingsRecord{}, fmt.Errorf("parse stored CNY rate %q: %w", rateCNY, err)
	}
	return rec, nil
}

func scanEntertainmentRecord(row rowScanner) (core.EntertainmentRecord, error) {
	var rec core.EntertainmentRecord
	var amount, currency, rateCAD, rateCNY string
	if err := row.Scan(&rec.ID, &amount, &currency, &rec.Note, &rec.CreatedAt, &rateCAD, &rateCNY); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.EntertainmentRecord{}, err
		}
		return core.EntertainmentRecord{}, fmt.Errorf("scan entertainment record: %w", err)
	}
	rec.Currency = core.Currency(currency)
	var err error
	if rec.Amount, err = decimal.NewFromString(amount); err != nil {
		return core.EntertainmentRecord{}, fmt.Errorf("parse stored amount %q: %w", amount, err)
	}
	if rec.RateCAD, err = decimal.NewFromString(rateCAD); err != nil {
		return core.EntertainmentRecord{}, fmt.Errorf("parse stored CAD rate %q: %w", rateCAD, err)
	}
	if rec.RateCNY, err = decimal.NewFromString(rateCNY); err != nil {
		return core.EntertainmentRecord{}, fmt.Errorf("parse stored CNY rate %q: %w", rateCNY, err)
	}
	return rec, nil
}
