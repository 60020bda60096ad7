package sales

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/balcao-pos/balcao-pos/internal/sales/composer"
)

// Sale is a recorded sale with its lines, payments, and installment
// schedule. Deletion removes the whole aggregate; there is no soft delete.
type Sale struct {
	ID          int64           `json:"id"`
	ClientID    *int64          `json:"client_id,omitempty"`
	SaleDate    time.Time       `json:"sale_date"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Notes       *string         `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	Lines       []SaleLine      `json:"lines,omitempty"`
	Payments    []SalePayment   `json:"payments,omitempty"`
}

type SaleLine struct {
	ID        int64           `json:"id"`
	SaleID    int64           `json:"sale_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type SalePayment struct {
	ID                  int64                  `json:"id"`
	SaleID              int64                  `json:"sale_id"`
	Slot                int                    `json:"slot"`
	Method              composer.PaymentMethod `json:"method"`
	BaseAmount          decimal.Decimal        `json:"base_amount"`
	InterestRatePercent decimal.Decimal        `json:"interest_rate_percent"`
	TotalAmount         decimal.Decimal        `json:"total_amount"`
	InstallmentCount    int                    `json:"installment_count"`
	Paid                bool                   `json:"paid"`
}

// Installment is one receivable slice of a split payment.
type Installment struct {
	ID          int64           `json:"id"`
	SaleID      int64           `json:"sale_id"`
	PaymentSlot int             `json:"payment_slot"`
	Number      int             `json:"number"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     time.Time       `json:"due_date"`
	Paid        bool            `json:"paid"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
}

// SaleWithClient augments a listing row with the client name.
type SaleWithClient struct {
	Sale
	ClientName *string `json:"client_name,omitempty"`
}
