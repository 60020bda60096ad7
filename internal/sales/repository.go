package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/balcao-pos/balcao-pos/internal/platform/db"
	"github.com/balcao-pos/balcao-pos/internal/platform/httpx"
	"github.com/balcao-pos/balcao-pos/internal/sales/composer"
	"github.com/balcao-pos/balcao-pos/internal/shared"
)

// Repository is the sale storage contract. Create persists the whole
// aggregate in one transaction.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Create(ctx context.Context, sale Sale) (int64, error)
	InsertLine(ctx context.Context, line SaleLine) (int64, error)
	InsertPayment(ctx context.Context, payment SalePayment) (int64, error)
	InsertInstallment(ctx context.Context, inst Installment) (int64, error)
	Get(ctx context.Context, id int64) (*Sale, error)
	List(ctx context.Context, req ListSalesRequest) ([]SaleWithClient, int, error)
	Delete(ctx context.Context, id int64) error
	GetInstallment(ctx context.Context, id int64) (*Installment, error)
	ListInstallments(ctx context.Context, saleID int64) ([]Installment, error)
	MarkInstallmentPaid(ctx context.Context, id int64, paidAt time.Time) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository builds the pgx-backed sale repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) Create(ctx context.Context, sale Sale) (int64, error) {
	const query = `
		INSERT INTO sales (client_id, sale_date, subtotal, total_amount, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		sale.ClientID, sale.SaleDate, sale.Subtotal.StringFixed(2), sale.TotalAmount.StringFixed(2), sale.Notes,
	).Scan(&id)
	if err != nil {
		return 0, shared.NewStorageError("sale create", err)
	}
	return id, nil
}

func (r *repository) InsertLine(ctx context.Context, line SaleLine) (int64, error) {
	const query = `
		INSERT INTO sale_lines (sale_id, product_id, quantity, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		line.SaleID, line.ProductID, line.Quantity, line.UnitPrice.StringFixed(2), line.LineTotal.StringFixed(2),
	).Scan(&id)
	if err != nil {
		return 0, shared.NewStorageError("sale line insert", err)
	}
	return id, nil
}

func (r *repository) InsertPayment(ctx context.Context, payment SalePayment) (int64, error) {
	const query = `
		INSERT INTO sale_payments
			(sale_id, slot, method, base_amount, interest_rate_percent, total_amount, installment_count, paid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		payment.SaleID, payment.Slot, string(payment.Method),
		payment.BaseAmount.StringFixed(2), payment.InterestRatePercent.String(),
		payment.TotalAmount.StringFixed(2), payment.InstallmentCount, payment.Paid,
	).Scan(&id)
	if err != nil {
		return 0, shared.NewStorageError("sale payment insert", err)
	}
	return id, nil
}

func (r *repository) InsertInstallment(ctx context.Context, inst Installment) (int64, error) {
	const query = `
		INSERT INTO installments (sale_id, payment_slot, number, amount, due_date, paid)
		VALUES ($1, $2, $3, $4, $5, FALSE)
		RETURNING id`

	var id int64
	err := r.db.QueryRow(ctx, query,
		inst.SaleID, inst.PaymentSlot, inst.Number, inst.Amount.StringFixed(2), inst.DueDate,
	).Scan(&id)
	if err != nil {
		return 0, shared.NewStorageError("installment insert", err)
	}
	return id, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Sale, error) {
	const query = `
		SELECT id, client_id, sale_date, subtotal::text, total_amount::text, notes, created_at
		FROM sales WHERE id = $1`

	var s Sale
	var subtotal, total string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.ClientID, &s.SaleDate, &subtotal, &total, &s.Notes, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, shared.NewStorageError("sale get", err)
	}
	if s.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return nil, fmt.Errorf("sales: parse subtotal %q: %w", subtotal, err)
	}
	if s.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("sales: parse total %q: %w", total, err)
	}

	if s.Lines, err = r.listLines(ctx, id); err != nil {
		return nil, err
	}
	if s.Payments, err = r.listPayments(ctx, id); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) listLines(ctx context.Context, saleID int64) ([]SaleLine, error) {
	const query = `
		SELECT id, sale_id, product_id, quantity, unit_price::text, line_total::text
		FROM sale_lines WHERE sale_id = $1 ORDER BY id`

	rows, err := r.db.Query(ctx, query, saleID)
	if err != nil {
		return nil, shared.NewStorageError("sale lines list", err)
	}
	defer rows.Close()

	var lines []SaleLine
	for rows.Next() {
		var l SaleLine
		var price, total string
		if err := rows.Scan(&l.ID, &l.SaleID, &l.ProductID, &l.Quantity, &price, &total); err != nil {
			return nil, shared.NewStorageError("sale line scan", err)
		}
		if l.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("sales: parse line price %q: %w", price, err)
		}
		if l.LineTotal, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("sales: parse line total %q: %w", total, err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) listPayments(ctx context.Context, saleID int64) ([]SalePayment, error) {
	const query = `
		SELECT id, sale_id, slot, method, base_amount::text, interest_rate_percent::text,
			total_amount::text, installment_count, paid
		FROM sale_payments WHERE sale_id = $1 ORDER BY slot`

	rows, err := r.db.Query(ctx, query, saleID)
	if err != nil {
		return nil, shared.NewStorageError("sale payments list", err)
	}
	defer rows.Close()

	var payments []SalePayment
	for rows.Next() {
		var p SalePayment
		var method, base, rate, total string
		if err := rows.Scan(&p.ID, &p.SaleID, &p.Slot, &method, &base, &rate, &total, &p.InstallmentCount, &p.Paid); err != nil {
			return nil, shared.NewStorageError("sale payment scan", err)
		}
		p.Method = composer.PaymentMethod(method)
		if p.BaseAmount, err = decimal.NewFromString(base); err != nil {
			return nil, fmt.Errorf("sales: parse payment base %q: %w", base, err)
		}
		if p.InterestRatePercent, err = decimal.NewFromString(rate); err != nil {
			return nil, fmt.Errorf("sales: parse payment rate %q: %w", rate, err)
		}
		if p.TotalAmount, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("sales: parse payment total %q: %w", total, err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *repository) List(ctx context.Context, req ListSalesRequest) ([]SaleWithClient, int, error) {
	conditions := []string{"1=1"}
	var args []interface{}
	argPos := 1

	if req.ClientID != nil {
		conditions = append(conditions, fmt.Sprintf("s.client_id = $%d", argPos))
		args = append(args, *req.ClientID)
		argPos++
	}
	if req.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("s.sale_date >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("s.sale_date <= $%d", argPos))
		args = append(args, *req.DateTo)
		argPos++
	}
	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM sales s WHERE %s", where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, shared.NewStorageError("sale count", err)
	}

	limit, offset := shared.Window(req.Page, req.PerPage)
	query := fmt.Sprintf(`
		SELECT s.id, s.client_id, s.sale_date, s.subtotal::text, s.total_amount::text, s.notes, s.created_at, c.name
		FROM sales s
		LEFT JOIN clients c ON c.id = s.client_id
		WHERE %s
		ORDER BY s.sale_date DESC, s.id DESC
		LIMIT $%d OFFSET $%d`, where, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, shared.NewStorageError("sale list", err)
	}
	defer rows.Close()

	var out []SaleWithClient
	for rows.Next() {
		var s SaleWithClient
		var subtotal, totalAmount string
		if err := rows.Scan(&s.ID, &s.ClientID, &s.SaleDate, &subtotal, &totalAmount, &s.Notes, &s.CreatedAt, &s.ClientName); err != nil {
			return nil, 0, shared.NewStorageError("sale scan", err)
		}
		if s.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
			return nil, 0, fmt.Errorf("sales: parse subtotal %q: %w", subtotal, err)
		}
		if s.TotalAmount, err = decimal.NewFromString(totalAmount); err != nil {
			return nil, 0, fmt.Errorf("sales: parse total %q: %w", totalAmount, err)
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	// Lines, payments, and installments cascade via foreign keys.
	tag, err := r.db.Exec(ctx, "DELETE FROM sales WHERE id = $1", id)
	if err != nil {
		return shared.NewStorageError("sale delete", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) GetInstallment(ctx context.Context, id int64) (*Installment, error) {
	const query = `
		SELECT id, sale_id, payment_slot, number, amount::text, due_date, paid, paid_at
		FROM installments WHERE id = $1`

	var inst Installment
	var amount string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&inst.ID, &inst.SaleID, &inst.PaymentSlot, &inst.Number, &amount, &inst.DueDate, &inst.Paid, &inst.PaidAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, shared.NewStorageError("installment get", err)
	}
	if inst.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("sales: parse installment amount %q: %w", amount, err)
	}
	return &inst, nil
}

func (r *repository) ListInstallments(ctx context.Context, saleID int64) ([]Installment, error) {
	const query = `
		SELECT id, sale_id, payment_slot, number, amount::text, due_date, paid, paid_at
		FROM installments WHERE sale_id = $1 ORDER BY payment_slot, number`

	rows, err := r.db.Query(ctx, query, saleID)
	if err != nil {
		return nil, shared.NewStorageError("installment list", err)
	}
	defer rows.Close()

	var out []Installment
	for rows.Next() {
		var inst Installment
		var amount string
		if err := rows.Scan(&inst.ID, &inst.SaleID, &inst.PaymentSlot, &inst.Number, &amount, &inst.DueDate, &inst.Paid, &inst.PaidAt); err != nil {
			return nil, shared.NewStorageError("installment scan", err)
		}
		if inst.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("sales: parse installment amount %q: %w", amount, err)
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

func (r *repository) MarkInstallmentPaid(ctx context.Context, id int64, paidAt time.Time) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE installments SET paid = TRUE, paid_at = $2 WHERE id = $1 AND NOT paid", id, paidAt)
	if err != nil {
		return shared.NewStorageError("installment mark paid", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
