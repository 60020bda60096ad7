package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. A promotion overrides the list price while the
// current time falls inside its window.
type Product struct {
	ID            int64            `json:"id"`
	Name          string           `json:"name"`
	SKU           string           `json:"sku"`
	Price         decimal.Decimal  `json:"price"`
	Stock         int              `json:"stock"`
	PromoPrice    *decimal.Decimal `json:"promo_price,omitempty"`
	PromoStartsAt *time.Time       `json:"promo_starts_at,omitempty"`
	PromoEndsAt   *time.Time       `json:"promo_ends_at,omitempty"`
	Active        bool             `json:"active"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// PromoActive reports whether the promotion window covers now. A promotion
// needs a price and both window bounds to apply.
func (p Product) PromoActive(now time.Time) bool {
	if p.PromoPrice == nil || p.PromoStartsAt == nil || p.PromoEndsAt == nil {
		return false
	}
	return !now.Before(*p.PromoStartsAt) && !now.After(*p.PromoEndsAt)
}

// CurrentPrice returns the promotional price when the promotion is active,
// the list price otherwise.
func (p Product) CurrentPrice(now time.Time) decimal.Decimal {
	if p.PromoActive(now) {
		return *p.PromoPrice
	}
	return p.Price
}

// Quote is what the sale composer needs to add a cart line: the effective
// unit price and the stock on hand. Zero stock means untracked inventory.
type Quote struct {
	ProductID      int64           `json:"product_id"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	StockAvailable int             `json:"stock_available"`
}
