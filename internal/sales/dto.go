package sales

import "time"

// CreateSaleRequest carries a cart and up to two payment instructions.
// Amounts arrive as text and go through the lenient currency parser, so the
// API accepts the same comma-decimal input the sales form produces.
type CreateSaleRequest struct {
	ClientID *int64                 `json:"client_id,omitempty"`
	SaleDate time.Time              `json:"sale_date" validate:"required"`
	Notes    *string                `json:"notes,omitempty"`
	Lines    []CreateSaleLineReq    `json:"lines" validate:"required,min=1,dive"`
	Payments []CreateSalePaymentReq `json:"payments" validate:"required,min=1,max=2,dive"`
}

type CreateSaleLineReq struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type CreateSalePaymentReq struct {
	Slot                int    `json:"slot" validate:"required,min=1,max=2"`
	Method              string `json:"method" validate:"required"`
	BaseAmount          string `json:"base_amount"`
	InterestRatePercent string `json:"interest_rate_percent,omitempty"`
	InstallmentCount    int    `json:"installment_count" validate:"gte=0,lte=48"`
}

type ListSalesRequest struct {
	ClientID *int64     `json:"client_id,omitempty"`
	DateFrom *time.Time `json:"date_from,omitempty"`
	DateTo   *time.Time `json:"date_to,omitempty"`
	Page     int        `json:"page" validate:"gte=0"`
	PerPage  int        `json:"per_page" validate:"gte=0,lte=200"`
}
