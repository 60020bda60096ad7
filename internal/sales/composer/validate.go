package composer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/balcao-pos/balcao-pos/internal/money"
)

// ValidationError is a user-correctable input problem. Validate collects
// every violation into one list so callers can display all of them at once.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ValidationErrors aggregates the full rule-violation list of one Validate
// call.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks a composed sale against the submission rules. All rules are
// evaluated; the result is nil only when every one passes:
//
//  1. the cart holds at least one line;
//  2. every line has a non-negative unit price and a positive quantity
//     within its stock limit;
//  3. every enabled payment has a positive base amount;
//  4. the enabled base amounts sum to the subtotal within the reconcile
//     tolerance;
//  5. the recomputed grand total matches the snapshot the caller validated
//     against, guarding stale state at submit time.
func (c *Composer) Validate(cart Cart, payments []PaymentInstruction, computed ComposedTotals) ValidationErrors {
	var errs ValidationErrors

	if len(cart.Lines) == 0 {
		errs = append(errs, ValidationError{Field: "lines", Message: "at least one cart line is required"})
	}
	for i, line := range cart.Lines {
		if line.UnitPrice.IsNegative() {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("lines[%d].unit_price", i),
				Message: "unit price must not be negative",
			})
		}
		if line.Quantity <= 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("lines[%d].quantity", i),
				Message: "product is out of stock",
			})
			continue
		}
		if limit, ok := c.stockLimit(line); ok && line.Quantity > limit {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("lines[%d].quantity", i),
				Message: fmt.Sprintf("quantity %d exceeds available stock %d", line.Quantity, limit),
			})
		}
	}

	baseSum := decimal.Zero
	for _, p := range payments {
		if !p.Enabled {
			continue
		}
		if !p.BaseAmount.IsPositive() {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("payments[%d].amount", p.Slot),
				Message: "payment amount must be greater than zero",
			})
		}
		baseSum = baseSum.Add(p.BaseAmount)
	}

	if !money.Equal(baseSum, computed.Subtotal) {
		errs = append(errs, ValidationError{
			Field: "payments",
			Message: fmt.Sprintf("payment amounts sum to %s but the sale subtotal is %s",
				money.Format(baseSum), money.Format(computed.Subtotal)),
		})
	}

	current := c.ComputeTotals(cart, payments)
	if !money.Equal(current.TotalWithInterest, computed.TotalWithInterest) {
		errs = append(errs, ValidationError{
			Field: "total",
			Message: fmt.Sprintf("total with interest changed from %s to %s, recompute before submitting",
				money.Format(computed.TotalWithInterest), money.Format(current.TotalWithInterest)),
		})
	}

	return errs
}
