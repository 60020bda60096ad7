package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/balcao-pos/balcao-pos/internal/platform/httpx"
	"github.com/balcao-pos/balcao-pos/internal/shared"
)

// Repository is the catalog storage contract.
type Repository interface {
	Create(ctx context.Context, p Product) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	Get(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, req ListProductsRequest) ([]Product, int, error)
	Delete(ctx context.Context, id int64) error
	DecrementStock(ctx context.Context, id int64, qty int) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds the pgx-backed catalog repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productColumns = `id, name, sku, price::text, stock,
	promo_price::text, promo_starts_at, promo_ends_at, active, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var price string
	var promoPrice *string
	if err := row.Scan(&p.ID, &p.Name, &p.SKU, &price, &p.Stock,
		&promoPrice, &p.PromoStartsAt, &p.PromoEndsAt, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("catalog: parse price %q: %w", price, err)
	}
	if promoPrice != nil {
		d, err := decimal.NewFromString(*promoPrice)
		if err != nil {
			return nil, fmt.Errorf("catalog: parse promo price %q: %w", *promoPrice, err)
		}
		p.PromoPrice = &d
	}
	return &p, nil
}

func (r *repository) Create(ctx context.Context, p Product) (int64, error) {
	const query = `
		INSERT INTO products (name, sku, price, stock, promo_price, promo_starts_at, promo_ends_at, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
		RETURNING id`

	var promoPrice *string
	if p.PromoPrice != nil {
		s := p.PromoPrice.StringFixed(2)
		promoPrice = &s
	}
	var id int64
	err := r.pool.QueryRow(ctx, query,
		p.Name, p.SKU, p.Price.StringFixed(2), p.Stock, promoPrice, p.PromoStartsAt, p.PromoEndsAt,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, httpx.ErrDuplicate
		}
		return 0, shared.NewStorageError("catalog create", err)
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	setClauses := make([]string, 0, len(updates)+1)
	args := make([]interface{}, 0, len(updates)+1)
	argPos := 1
	for column, value := range updates {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argPos))
		args = append(args, value)
		argPos++
	}
	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d", strings.Join(setClauses, ", "), argPos)
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return shared.NewStorageError("catalog update", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Product, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE id = $1", productColumns)
	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, shared.NewStorageError("catalog get", err)
	}
	return p, nil
}

func (r *repository) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	conditions := []string{"1=1"}
	var args []interface{}
	argPos := 1

	if req.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR sku ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+req.Search+"%")
		argPos++
	}
	if req.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", argPos))
		args = append(args, *req.Active)
		argPos++
	}
	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products WHERE %s", where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, shared.NewStorageError("catalog count", err)
	}

	limit, offset := shared.Window(req.Page, req.PerPage)
	query := fmt.Sprintf("SELECT %s FROM products WHERE %s ORDER BY name LIMIT $%d OFFSET $%d",
		productColumns, where, argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, shared.NewStorageError("catalog list", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, shared.NewStorageError("catalog scan", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, shared.NewStorageError("catalog rows", err)
	}
	return products, total, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "UPDATE products SET active = FALSE, updated_at = now() WHERE id = $1", id)
	if err != nil {
		return shared.NewStorageError("catalog delete", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) DecrementStock(ctx context.Context, id int64, qty int) error {
	// Untracked products keep stock at zero; only tracked stock is decremented.
	const query = `
		UPDATE products
		SET stock = GREATEST(stock - $2, 0), updated_at = now()
		WHERE id = $1 AND stock > 0`
	if _, err := r.pool.Exec(ctx, query, id, qty); err != nil {
		return shared.NewStorageError("catalog decrement stock", err)
	}
	return nil
}
