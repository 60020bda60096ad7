package sales

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/balcao-pos/balcao-pos/internal/catalog"
	"github.com/balcao-pos/balcao-pos/internal/money"
	"github.com/balcao-pos/balcao-pos/internal/profit"
	"github.com/balcao-pos/balcao-pos/internal/sales/composer"
)

// CatalogLookup supplies the unit price and stock for a product entering a
// cart.
type CatalogLookup interface {
	Lookup(ctx context.Context, productID int64) (catalog.Quote, error)
}

// EventPublisher receives the mutation events that invalidate the monthly
// profit summary. Events are published explicitly after the storage write
// succeeds; nothing is inferred from the transport layer.
type EventPublisher interface {
	Notify(ev profit.Event)
}

// StockRegister decrements tracked stock after a sale is recorded.
type StockRegister interface {
	RegisterSale(ctx context.Context, lines map[int64]int) error
}

// Service records and removes sales and settles installments.
type Service struct {
	repo     Repository
	catalog  CatalogLookup
	stock    StockRegister
	events   EventPublisher
	composer *composer.Composer
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires the sales service. stock and events may be nil in tests.
func NewService(repo Repository, catalogSvc CatalogLookup, stock StockRegister, events EventPublisher, comp *composer.Composer, logger *slog.Logger) *Service {
	if comp == nil {
		comp = composer.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		catalog:  catalogSvc,
		stock:    stock,
		events:   events,
		composer: comp,
		validate: validator.New(),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create composes, validates, and persists a sale, then publishes
// SaleCreated. Validation failures come back as the full
// composer.ValidationErrors list; the sale is only stored when the list is
// empty.
func (s *Service) Create(ctx context.Context, req CreateSaleRequest) (*Sale, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("validate sale request: %w", err)
	}

	cart, err := s.buildCart(ctx, req.Lines)
	if err != nil {
		return nil, err
	}
	payments, err := buildPayments(req.Payments)
	if err != nil {
		return nil, err
	}

	computed := s.composer.ComputeTotals(cart, payments)
	payments = s.composer.AutofillSinglePayment(computed.Subtotal, payments)
	computed = s.composer.ComputeTotals(cart, payments)

	if errs := s.composer.Validate(cart, payments, computed); len(errs) > 0 {
		return nil, errs
	}

	sale := Sale{
		ClientID:    req.ClientID,
		SaleDate:    req.SaleDate,
		Subtotal:    computed.Subtotal,
		TotalAmount: computed.TotalWithInterest,
		Notes:       req.Notes,
	}

	var saleID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		id, err := repo.Create(ctx, sale)
		if err != nil {
			return err
		}
		saleID = id

		for _, line := range cart.Lines {
			if _, err := repo.InsertLine(ctx, SaleLine{
				SaleID:    saleID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				LineTotal: line.Total(),
			}); err != nil {
				return err
			}
		}

		for _, p := range payments {
			if !p.Enabled {
				continue
			}
			if _, err := repo.InsertPayment(ctx, SalePayment{
				SaleID:              saleID,
				Slot:                p.Slot,
				Method:              p.Method,
				BaseAmount:          p.BaseAmount,
				InterestRatePercent: p.InterestRatePercent,
				TotalAmount:         p.Total().Round(2),
				InstallmentCount:    p.InstallmentCount,
			}); err != nil {
				return err
			}
			if !p.Method.InterestBearing() && p.InstallmentCount <= 1 {
				// Settled at the counter, nothing left to collect.
				continue
			}
			for i, amount := range s.composer.InstallmentAmounts(p) {
				if _, err := repo.InsertInstallment(ctx, Installment{
					SaleID:      saleID,
					PaymentSlot: p.Slot,
					Number:      i + 1,
					Amount:      amount,
					DueDate:     req.SaleDate.AddDate(0, i+1, 0),
				}); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create sale: %w", err)
	}

	if s.stock != nil {
		quantities := make(map[int64]int, len(cart.Lines))
		for _, line := range cart.Lines {
			quantities[line.ProductID] += line.Quantity
		}
		if err := s.stock.RegisterSale(ctx, quantities); err != nil {
			s.logger.Warn("stock decrement failed after sale", slog.Int64("sale_id", saleID), slog.Any("error", err))
		}
	}
	s.publish(profit.EventSaleCreated)

	return s.repo.Get(ctx, saleID)
}

// Delete removes a sale outright and publishes SaleDeleted.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	s.publish(profit.EventSaleDeleted)
	return nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Sale, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListSalesRequest) ([]SaleWithClient, int, error) {
	return s.repo.List(ctx, req)
}

func (s *Service) ListInstallments(ctx context.Context, saleID int64) ([]Installment, error) {
	return s.repo.ListInstallments(ctx, saleID)
}

// MarkInstallmentPaid settles one installment and publishes InstallmentPaid.
func (s *Service) MarkInstallmentPaid(ctx context.Context, installmentID int64) (*Installment, error) {
	if err := s.repo.MarkInstallmentPaid(ctx, installmentID, s.now()); err != nil {
		return nil, fmt.Errorf("mark installment paid: %w", err)
	}
	s.publish(profit.EventInstallmentPaid)
	return s.repo.GetInstallment(ctx, installmentID)
}

func (s *Service) publish(ev profit.Event) {
	if s.events != nil {
		s.events.Notify(ev)
	}
}

func (s *Service) buildCart(ctx context.Context, lines []CreateSaleLineReq) (composer.Cart, error) {
	var cart composer.Cart
	for i, lineReq := range lines {
		quote, err := s.catalog.Lookup(ctx, lineReq.ProductID)
		if err != nil {
			return composer.Cart{}, fmt.Errorf("lookup product %d: %w", lineReq.ProductID, err)
		}
		cart = s.composer.AddLine(cart, quote.ProductID, quote.UnitPrice, quote.StockAvailable)
		next, notice, err := s.composer.SetQuantity(cart, i, lineReq.Quantity)
		if err != nil {
			return composer.Cart{}, err
		}
		if notice != nil {
			s.logger.Info("cart quantity clamped", slog.String("notice", notice.String()))
		}
		cart = next
	}
	return cart, nil
}

func buildPayments(reqs []CreateSalePaymentReq) ([]composer.PaymentInstruction, error) {
	payments := make([]composer.PaymentInstruction, 0, len(reqs))
	for _, p := range reqs {
		method := composer.PaymentMethod(p.Method)
		if !method.Valid() {
			return nil, &composer.ValidationError{
				Field:   fmt.Sprintf("payments[%d].method", p.Slot),
				Message: fmt.Sprintf("unknown payment method %q", p.Method),
			}
		}
		count := p.InstallmentCount
		if count == 0 {
			count = 1
		}
		rate := decimal.Zero
		if p.InterestRatePercent != "" {
			rate = money.Parse(p.InterestRatePercent)
		}
		payments = append(payments, composer.PaymentInstruction{
			Slot:                p.Slot,
			Method:              method,
			BaseAmount:          money.Parse(p.BaseAmount),
			InterestRatePercent: rate,
			InstallmentCount:    count,
			Enabled:             true,
		})
	}
	return payments, nil
}
