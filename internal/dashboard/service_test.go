package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balcao-pos/balcao-pos/internal/profit"
)

type stubRepository struct {
	receivables Receivables
	salesCount  int
	since       time.Time
}

func (s *stubRepository) OpenReceivables(_ context.Context) (Receivables, error) {
	return s.receivables, nil
}

func (s *stubRepository) SalesCountSince(_ context.Context, since time.Time) (int, error) {
	s.since = since
	return s.salesCount, nil
}

type stubSummary struct {
	summary profit.Summary
	ok      bool
}

func (s *stubSummary) Current() (profit.Summary, bool) {
	return s.summary, s.ok
}

func TestLoadOverview(t *testing.T) {
	repo := &stubRepository{
		receivables: Receivables{Total: decimal.RequireFromString("1234.50"), Count: 7},
		salesCount:  12,
	}
	summary := &stubSummary{
		summary: profit.Summary{
			Amount:    decimal.RequireFromString("9870.00"),
			Formatted: "9.870,00",
		},
		ok: true,
	}
	svc := NewService(repo, summary)
	svc.now = func() time.Time {
		return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	}

	overview, err := svc.Load(context.Background())
	require.NoError(t, err)

	require.NotNil(t, overview.MonthProfit)
	assert.Equal(t, "9.870,00", overview.MonthProfit.Formatted)
	assert.Equal(t, 7, overview.OpenReceivables.Count)
	assert.Equal(t, "1.234,50", overview.FormattedRecv)
	assert.Equal(t, 12, overview.SalesThisMonth)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), repo.since,
		"sales counted from the first of the current month")
}

func TestLoadOverviewWithoutSummary(t *testing.T) {
	repo := &stubRepository{receivables: Receivables{Total: decimal.Zero}}
	svc := NewService(repo, &stubSummary{})

	overview, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, overview.MonthProfit, "no summary yet leaves the field unset")
	assert.Equal(t, "0,00", overview.FormattedRecv)
}
