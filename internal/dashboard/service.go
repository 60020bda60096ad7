package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/balcao-pos/balcao-pos/internal/money"
	"github.com/balcao-pos/balcao-pos/internal/profit"
)

// Overview is what the back-office landing page shows: the debounced monthly
// profit figure next to the live receivables position.
type Overview struct {
	MonthProfit      *profit.Summary `json:"month_profit,omitempty"`
	OpenReceivables  Receivables     `json:"open_receivables"`
	FormattedRecv    string          `json:"open_receivables_formatted"`
	SalesThisMonth   int             `json:"sales_this_month"`
	GeneratedAt      time.Time       `json:"generated_at"`
}

// SummarySource reads the last published profit summary without forcing a
// recomputation.
type SummarySource interface {
	Current() (profit.Summary, bool)
}

type Service struct {
	repo    Repository
	summary SummarySource
	now     func() time.Time
}

func NewService(repo Repository, summary SummarySource) *Service {
	return &Service{
		repo:    repo,
		summary: summary,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Load assembles the overview. The profit figure is whatever summary was
// last published; when none exists yet the field is omitted rather than
// shown as zero.
func (s *Service) Load(ctx context.Context) (*Overview, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	var (
		recv  Receivables
		count int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if recv, err = s.repo.OpenReceivables(gctx); err != nil {
			return fmt.Errorf("load receivables: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if count, err = s.repo.SalesCountSince(gctx, monthStart); err != nil {
			return fmt.Errorf("load sales count: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Overview{
		OpenReceivables: recv,
		FormattedRecv:   money.Format(recv.Total),
		SalesThisMonth:  count,
		GeneratedAt:     now,
	}
	if summary, ok := s.summary.Current(); ok {
		out.MonthProfit = &summary
	}
	return out, nil
}
