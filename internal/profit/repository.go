package profit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository derives the current-month profit figure from the sales tables.
// It implements AggregateSource.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository binds the repository to a connection pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CurrentMonthProfit sums the totals of every sale dated in the current
// month. Deleted sales are gone outright, so a plain sum stays authoritative.
func (r *Repository) CurrentMonthProfit(ctx context.Context) (decimal.Decimal, error) {
	const query = `
		SELECT COALESCE(SUM(total_amount), 0)::text
		FROM sales
		WHERE date_trunc('month', sale_date) = date_trunc('month', CURRENT_DATE)`

	var raw string
	if err := r.pool.QueryRow(ctx, query).Scan(&raw); err != nil {
		return decimal.Zero, fmt.Errorf("profit: current month aggregate: %w", err)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("profit: parse aggregate %q: %w", raw, err)
	}
	return amount, nil
}
