// Package composer implements the pure sale-composition logic: cart lines,
// split payment instructions with interest, derived totals, and the
// reconciliation rules that gate submission. Nothing in this package touches
// storage or transport; it is exercised by the sales service and by handlers
// through value types only.
package composer

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/balcao-pos/balcao-pos/internal/money"
)

// PaymentMethod enumerates the accepted payment methods.
type PaymentMethod string

const (
	MethodCash      PaymentMethod = "cash"
	MethodDebit     PaymentMethod = "debit"
	MethodCredit    PaymentMethod = "credit"
	MethodPix       PaymentMethod = "pix"
	MethodPixCredit PaymentMethod = "pix_credit"
	MethodOther     PaymentMethod = "other"
)

// Valid reports whether m is one of the known methods.
func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodDebit, MethodCredit, MethodPix, MethodPixCredit, MethodOther:
		return true
	}
	return false
}

// InterestBearing reports whether the method accrues interest on its base
// amount. Only the credit-like methods do.
func (m PaymentMethod) InterestBearing() bool {
	return m == MethodCredit || m == MethodPixCredit
}

// CartLine is one product-quantity pair inside a sale being composed.
type CartLine struct {
	ProductID      int64
	UnitPrice      decimal.Decimal
	Quantity       int
	StockAvailable int
}

// Total returns unit price times quantity.
func (l CartLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the transient line collection of a composition session. Operations
// return a new Cart; line order is always preserved.
type Cart struct {
	Lines []CartLine
}

// PaymentInstruction is one of up to two payment methods covering a sale.
// Slot 2 only contributes when Enabled is set.
type PaymentInstruction struct {
	Slot                int
	Method              PaymentMethod
	BaseAmount          decimal.Decimal
	InterestRatePercent decimal.Decimal
	InstallmentCount    int
	Paid                bool
	Enabled             bool
}

// Total returns the instruction amount after interest. Non credit-like
// methods carry no interest regardless of the configured rate.
func (p PaymentInstruction) Total() decimal.Decimal {
	if !p.Method.InterestBearing() {
		return p.BaseAmount
	}
	return money.AddPercent(p.BaseAmount, p.InterestRatePercent)
}

// ComposedTotals is the derived, immutable snapshot recomputed on every cart
// or payment mutation. It is a validation artifact, never persisted.
type ComposedTotals struct {
	Subtotal          decimal.Decimal
	PerPayment        map[int]decimal.Decimal
	TotalWithInterest decimal.Decimal
}

// Notice is a non-fatal warning surfaced to the caller, e.g. a quantity
// clamped to the available stock.
type Notice struct {
	LineIndex    int
	RequestedQty int
	AppliedQty   int
}

func (n Notice) String() string {
	return fmt.Sprintf("line %d: quantity adjusted from %d to %d (stock limit)", n.LineIndex, n.RequestedQty, n.AppliedQty)
}

// Composer applies the composition rules. The zero-stock policy is
// configurable: by default a line with StockAvailable == 0 is treated as
// untracked inventory and never clamped.
type Composer struct {
	zeroStockUnlimited bool
}

// Option customises a Composer.
type Option func(*Composer)

// WithZeroStockUnlimited controls whether StockAvailable == 0 means
// "untracked, sell freely" (true, the default) or "out of stock".
func WithZeroStockUnlimited(v bool) Option {
	return func(c *Composer) { c.zeroStockUnlimited = v }
}

// New builds a Composer with the given options.
func New(opts ...Option) *Composer {
	c := &Composer{zeroStockUnlimited: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Composer) stockLimit(l CartLine) (int, bool) {
	if l.StockAvailable == 0 && c.zeroStockUnlimited {
		return 0, false
	}
	return l.StockAvailable, true
}

// AddLine appends a line with quantity 1, clamped to the available stock.
// Under the strict zero-stock policy an out-of-stock product enters with
// quantity 0; Validate rejects such a line, and SetQuantity refuses to raise
// it.
func (c *Composer) AddLine(cart Cart, productID int64, unitPrice decimal.Decimal, stockAvailable int) Cart {
	line := CartLine{
		ProductID:      productID,
		UnitPrice:      unitPrice,
		Quantity:       1,
		StockAvailable: stockAvailable,
	}
	if limit, ok := c.stockLimit(line); ok && line.Quantity > limit {
		line.Quantity = limit
	}
	lines := make([]CartLine, len(cart.Lines), len(cart.Lines)+1)
	copy(lines, cart.Lines)
	return Cart{Lines: append(lines, line)}
}

// SetQuantity updates a line quantity. A quantity above the stock limit is
// clamped rather than rejected and reported through the returned Notice; a
// non-positive quantity is a hard validation error.
func (c *Composer) SetQuantity(cart Cart, lineIndex, quantity int) (Cart, *Notice, error) {
	if lineIndex < 0 || lineIndex >= len(cart.Lines) {
		return cart, nil, &ValidationError{Field: "lines", Message: fmt.Sprintf("line %d does not exist", lineIndex)}
	}
	if quantity <= 0 {
		return cart, nil, &ValidationError{Field: "quantity", Message: "quantity must be greater than zero"}
	}

	lines := make([]CartLine, len(cart.Lines))
	copy(lines, cart.Lines)

	var notice *Notice
	applied := quantity
	if limit, ok := c.stockLimit(lines[lineIndex]); ok && quantity > limit {
		if limit == 0 {
			return cart, nil, &ValidationError{
				Field:   fmt.Sprintf("lines[%d].quantity", lineIndex),
				Message: "product is out of stock",
			}
		}
		applied = limit
		notice = &Notice{LineIndex: lineIndex, RequestedQty: quantity, AppliedQty: limit}
	}
	lines[lineIndex].Quantity = applied
	return Cart{Lines: lines}, notice, nil
}

// ComputeTotals derives subtotal, per-payment totals, and the grand total
// with interest. Pure: same inputs always produce the same snapshot.
func (c *Composer) ComputeTotals(cart Cart, payments []PaymentInstruction) ComposedTotals {
	subtotal := decimal.Zero
	for _, line := range cart.Lines {
		subtotal = subtotal.Add(line.Total())
	}

	perPayment := make(map[int]decimal.Decimal, len(payments))
	total := decimal.Zero
	for _, p := range payments {
		if !p.Enabled {
			continue
		}
		pt := p.Total()
		perPayment[p.Slot] = pt
		total = total.Add(pt)
	}

	return ComposedTotals{
		Subtotal:          subtotal,
		PerPayment:        perPayment,
		TotalWithInterest: total,
	}
}

// AutofillSinglePayment forces a lone enabled instruction to reproduce the
// subtotal: non-credit methods take the subtotal as-is, credit-like methods
// take the amount that equals the subtotal after interest. With two enabled
// instructions both amounts stay user-editable and nothing changes.
func (c *Composer) AutofillSinglePayment(subtotal decimal.Decimal, payments []PaymentInstruction) []PaymentInstruction {
	active := -1
	for i, p := range payments {
		if !p.Enabled {
			continue
		}
		if active >= 0 {
			return payments
		}
		active = i
	}
	if active < 0 {
		return payments
	}

	out := make([]PaymentInstruction, len(payments))
	copy(out, payments)
	if out[active].Method.InterestBearing() {
		out[active].BaseAmount = money.StripPercent(subtotal, out[active].InterestRatePercent)
	} else {
		out[active].BaseAmount = subtotal
	}
	return out
}

// InstallmentAmounts splits an instruction's total into InstallmentCount
// equal cent amounts; the final installment absorbs the rounding remainder.
func (c *Composer) InstallmentAmounts(p PaymentInstruction) []decimal.Decimal {
	n := p.InstallmentCount
	if n <= 1 {
		return []decimal.Decimal{p.Total().Round(2)}
	}
	total := p.Total().Round(2)
	per := total.DivRound(decimal.NewFromInt(int64(n)), 2)
	amounts := make([]decimal.Decimal, n)
	running := decimal.Zero
	for i := 0; i < n-1; i++ {
		amounts[i] = per
		running = running.Add(per)
	}
	amounts[n-1] = total.Sub(running)
	return amounts
}
