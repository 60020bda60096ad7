package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/balcao-pos/balcao-pos/internal/money"
	"github.com/balcao-pos/balcao-pos/internal/sales/composer"
)

// Service handles catalog business logic and serves price/stock lookups to
// the sale composer.
type Service struct {
	repo     Repository
	validate *validator.Validate
	now      func() time.Time
}

// NewService constructs a Service instance.
func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, req CreateProductRequest) (*Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate product: %w", err)
	}

	price := money.Parse(req.Price)
	if price.IsNegative() {
		return nil, &composer.ValidationError{Field: "price", Message: "price must not be negative"}
	}

	p := Product{
		Name:          req.Name,
		SKU:           req.SKU,
		Price:         price,
		Stock:         req.Stock,
		PromoStartsAt: req.PromoStartsAt,
		PromoEndsAt:   req.PromoEndsAt,
	}
	if req.PromoPrice != nil {
		promo := money.Parse(*req.PromoPrice)
		if promo.IsNegative() {
			return nil, &composer.ValidationError{Field: "promo_price", Message: "promotional price must not be negative"}
		}
		p.PromoPrice = &promo
	}

	id, err := s.repo.Create(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateProductRequest) (*Product, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate product: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Price != nil {
		price := money.Parse(*req.Price)
		if price.IsNegative() {
			return nil, &composer.ValidationError{Field: "price", Message: "price must not be negative"}
		}
		updates["price"] = price.StringFixed(2)
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.PromoPrice != nil {
		promo := money.Parse(*req.PromoPrice)
		if promo.IsNegative() {
			return nil, &composer.ValidationError{Field: "promo_price", Message: "promotional price must not be negative"}
		}
		updates["promo_price"] = promo.StringFixed(2)
	}
	if req.PromoStartsAt != nil {
		updates["promo_starts_at"] = *req.PromoStartsAt
	}
	if req.PromoEndsAt != nil {
		updates["promo_ends_at"] = *req.PromoEndsAt
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListProductsRequest) ([]Product, int, error) {
	return s.repo.List(ctx, req)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Lookup returns the promo-aware unit price and available stock for a
// product about to enter a cart.
func (s *Service) Lookup(ctx context.Context, productID int64) (Quote, error) {
	p, err := s.repo.Get(ctx, productID)
	if err != nil {
		return Quote{}, fmt.Errorf("lookup product: %w", err)
	}
	return Quote{
		ProductID:      p.ID,
		UnitPrice:      p.CurrentPrice(s.now()),
		StockAvailable: p.Stock,
	}, nil
}

// RegisterSale decrements stock for every recorded line. Failures here are
// logged by the caller but do not undo the sale; stock drift is corrected by
// the next inventory count.
func (s *Service) RegisterSale(ctx context.Context, lines map[int64]int) error {
	for productID, qty := range lines {
		if err := s.repo.DecrementStock(ctx, productID, qty); err != nil {
			return err
		}
	}
	return nil
}
