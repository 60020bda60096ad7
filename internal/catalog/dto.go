package catalog

import "time"

type CreateProductRequest struct {
	Name          string     `json:"name" validate:"required,max=160"`
	SKU           string     `json:"sku" validate:"required,max=40"`
	Price         string     `json:"price" validate:"required"`
	Stock         int        `json:"stock" validate:"gte=0"`
	PromoPrice    *string    `json:"promo_price,omitempty"`
	PromoStartsAt *time.Time `json:"promo_starts_at,omitempty"`
	PromoEndsAt   *time.Time `json:"promo_ends_at,omitempty"`
}

type UpdateProductRequest struct {
	Name          *string    `json:"name,omitempty" validate:"omitempty,max=160"`
	Price         *string    `json:"price,omitempty"`
	Stock         *int       `json:"stock,omitempty" validate:"omitempty,gte=0"`
	PromoPrice    *string    `json:"promo_price,omitempty"`
	PromoStartsAt *time.Time `json:"promo_starts_at,omitempty"`
	PromoEndsAt   *time.Time `json:"promo_ends_at,omitempty"`
	Active        *bool      `json:"active,omitempty"`
}

type ListProductsRequest struct {
	Search  string `json:"search"`
	Active  *bool  `json:"active,omitempty"`
	Page    int    `json:"page" validate:"gte=0"`
	PerPage int    `json:"per_page" validate:"gte=0,lte=200"`
}
