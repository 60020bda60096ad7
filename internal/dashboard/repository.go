package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/balcao-pos/balcao-pos/internal/shared"
)

// Receivables is the open installment position: everything sold on credit
// that has not been settled yet.
type Receivables struct {
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type Repository interface {
	OpenReceivables(ctx context.Context) (Receivables, error)
	SalesCountSince(ctx context.Context, since time.Time) (int, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) OpenReceivables(ctx context.Context) (Receivables, error) {
	const query = `
		SELECT COALESCE(SUM(amount), 0)::text, COUNT(*)
		FROM installments
		WHERE NOT paid`

	var raw string
	var out Receivables
	if err := r.pool.QueryRow(ctx, query).Scan(&raw, &out.Count); err != nil {
		return Receivables{}, shared.NewStorageError("dashboard.open_receivables", err)
	}
	total, err := decimal.NewFromString(raw)
	if err != nil {
		return Receivables{}, shared.NewStorageError("dashboard.open_receivables", err)
	}
	out.Total = total
	return out, nil
}

func (r *repository) SalesCountSince(ctx context.Context, since time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM sales WHERE sale_date >= $1`

	var count int
	if err := r.pool.QueryRow(ctx, query, since).Scan(&count); err != nil {
		return 0, shared.NewStorageError("dashboard.sales_count", err)
	}
	return count, nil
}
