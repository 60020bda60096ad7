package profit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	mu     sync.Mutex
	amount decimal.Decimal
	err    error
	calls  atomic.Int32
}

func (s *stubSource) CurrentMonthProfit(ctx context.Context) (decimal.Decimal, error) {
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return decimal.Zero, s.err
	}
	return s.amount, nil
}

func (s *stubSource) set(amount decimal.Decimal, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.amount = amount
	s.err = err
}

func waitFor(t *testing.T, cond func() bool, timeout time.Duration, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s: %s", timeout, msg)
}

func TestRefreshPublishesSummary(t *testing.T) {
	src := &stubSource{}
	src.set(decimal.RequireFromString("1234.56"), nil)
	trigger := NewTrigger(src, nil)
	defer trigger.Close()

	var got []Summary
	var mu sync.Mutex
	trigger.Subscribe(func(s Summary) {
		mu.Lock()
		got = append(got, s)
		mu.Unlock()
	})

	summary, err := trigger.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, summary.Amount.Equal(decimal.RequireFromString("1234.56")))
	assert.Equal(t, "1.234,56", summary.Formatted)
	assert.False(t, summary.ComputedAt.IsZero())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, summary.Formatted, got[0].Formatted)

	current, ok := trigger.Current()
	require.True(t, ok)
	assert.Equal(t, summary.Formatted, current.Formatted)
}

func TestNotifyDebouncesToSingleRefresh(t *testing.T) {
	src := &stubSource{}
	src.set(decimal.NewFromInt(100), nil)
	trigger := NewTrigger(src, nil, WithSettleDelay(30*time.Millisecond))
	defer trigger.Close()

	for i := 0; i < 5; i++ {
		trigger.Notify(EventSaleCreated)
		time.Sleep(5 * time.Millisecond)
	}
	// Burst is still inside the settle window: nothing fetched yet.
	assert.Equal(t, int32(0), src.calls.Load())

	waitFor(t, func() bool { return src.calls.Load() == 1 }, time.Second, "refresh after settle delay")

	// Quiet period: no further refreshes.
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestNotifyRearmsTimerPerEvent(t *testing.T) {
	src := &stubSource{}
	src.set(decimal.NewFromInt(1), nil)
	trigger := NewTrigger(src, nil, WithSettleDelay(50*time.Millisecond))
	defer trigger.Close()

	trigger.Notify(EventSaleCreated)
	time.Sleep(30 * time.Millisecond)
	trigger.Notify(EventInstallmentPaid)
	time.Sleep(30 * time.Millisecond)
	// 60ms after the first event, but the second re-armed the timer.
	assert.Equal(t, int32(0), src.calls.Load())

	waitFor(t, func() bool { return src.calls.Load() == 1 }, time.Second, "refresh after last event")
}

func TestRefreshFailureKeepsLastGoodSummary(t *testing.T) {
	src := &stubSource{}
	src.set(decimal.NewFromInt(500), nil)
	trigger := NewTrigger(src, nil)
	defer trigger.Close()

	published := atomic.Int32{}
	trigger.Subscribe(func(Summary) { published.Add(1) })

	_, err := trigger.Refresh(context.Background())
	require.NoError(t, err)

	src.set(decimal.Zero, errors.New("connection refused"))
	stale, err := trigger.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, stale.Amount.Equal(decimal.NewFromInt(500)), "failed refresh must return last good value")

	current, ok := trigger.Current()
	require.True(t, ok)
	assert.True(t, current.Amount.Equal(decimal.NewFromInt(500)))
	// Observers only hear about successful refreshes.
	assert.Equal(t, int32(1), published.Load())
}

func TestSubscriptionCancel(t *testing.T) {
	src := &stubSource{}
	src.set(decimal.NewFromInt(10), nil)
	trigger := NewTrigger(src, nil)
	defer trigger.Close()

	calls := atomic.Int32{}
	sub := trigger.Subscribe(func(Summary) { calls.Add(1) })

	_, err := trigger.Refresh(context.Background())
	require.NoError(t, err)
	sub.Cancel()
	sub.Cancel() // idempotent

	_, err = trigger.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestMultipleObservers(t *testing.T) {
	src := &stubSource{}
	src.set(decimal.NewFromInt(42), nil)
	trigger := NewTrigger(src, nil)
	defer trigger.Close()

	a := atomic.Int32{}
	b := atomic.Int32{}
	trigger.Subscribe(func(Summary) { a.Add(1) })
	trigger.Subscribe(func(Summary) { b.Add(1) })

	_, err := trigger.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), a.Load())
	assert.Equal(t, int32(1), b.Load())
}

func TestCloseCancelsPendingTimer(t *testing.T) {
	src := &stubSource{}
	src.set(decimal.NewFromInt(1), nil)
	trigger := NewTrigger(src, nil, WithSettleDelay(20*time.Millisecond))

	trigger.Notify(EventSaleDeleted)
	trigger.Close()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), src.calls.Load(), "closed trigger must not fire")

	trigger.Notify(EventSaleCreated)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), src.calls.Load())

	_, err := trigger.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}
