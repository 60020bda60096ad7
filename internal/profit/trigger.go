// Package profit keeps the cached monthly-profit summary in sync with the
// sales data. Sale creation, sale deletion, and installment payments all mark
// the summary stale; the trigger coalesces those events and re-derives the
// figure from the authoritative aggregate after a short settle delay.
package profit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/balcao-pos/balcao-pos/internal/money"
)

// Event identifies a mutation that invalidates the monthly-profit summary.
type Event string

const (
	EventSaleCreated     Event = "sale_created"
	EventSaleDeleted     Event = "sale_deleted"
	EventInstallmentPaid Event = "installment_paid"
)

// DefaultSettleDelay is the wait between the last invalidating event and the
// refresh, giving the triggering write time to land.
const DefaultSettleDelay = 500 * time.Millisecond

// DefaultFetchTimeout bounds the aggregate fetch of a scheduled refresh.
const DefaultFetchTimeout = 30 * time.Second

// Summary is the process-wide cached monthly-profit value.
type Summary struct {
	Amount     decimal.Decimal `json:"amount"`
	Formatted  string          `json:"formatted"`
	ComputedAt time.Time       `json:"computed_at"`
}

// AggregateSource provides the authoritative current-month profit figure.
// Refresh always re-derives from it rather than updating incrementally, so
// the cached value cannot drift from partial updates.
type AggregateSource interface {
	CurrentMonthProfit(ctx context.Context) (decimal.Decimal, error)
}

// ErrClosed is returned by Refresh after Close.
var ErrClosed = errors.New("profit: trigger closed")

// Trigger debounces invalidation events into a single refresh and publishes
// each refreshed summary to its subscribers. Safe for concurrent use; the
// cached summary has a single writer discipline and last completion wins.
type Trigger struct {
	source       AggregateSource
	cache        *SummaryCache
	logger       *slog.Logger
	settleDelay  time.Duration
	fetchTimeout time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	current *Summary
	subs    map[uuid.UUID]func(Summary)
	closed  bool
}

// TriggerOption customises a Trigger.
type TriggerOption func(*Trigger)

// WithSettleDelay overrides the debounce window.
func WithSettleDelay(d time.Duration) TriggerOption {
	return func(t *Trigger) {
		if d > 0 {
			t.settleDelay = d
		}
	}
}

// WithFetchTimeout bounds the aggregate fetch of scheduled refreshes.
func WithFetchTimeout(d time.Duration) TriggerOption {
	return func(t *Trigger) {
		if d > 0 {
			t.fetchTimeout = d
		}
	}
}

// WithCache mirrors every refreshed summary into the given cache.
func WithCache(c *SummaryCache) TriggerOption {
	return func(t *Trigger) { t.cache = c }
}

// NewTrigger wires a Trigger to its aggregate source.
func NewTrigger(source AggregateSource, logger *slog.Logger, opts ...TriggerOption) *Trigger {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Trigger{
		source:       source,
		logger:       logger,
		settleDelay:  DefaultSettleDelay,
		fetchTimeout: DefaultFetchTimeout,
		subs:         make(map[uuid.UUID]func(Summary)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Notify marks the summary stale. Any pending refresh timer is re-armed with
// the full settle delay, so a burst of events produces exactly one refresh
// fired settleDelay after the last of them.
func (t *Trigger) Notify(ev Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.logger.Debug("profit summary invalidated", slog.String("event", string(ev)))
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.settleDelay, t.scheduledRefresh)
}

func (t *Trigger) scheduledRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), t.fetchTimeout)
	defer cancel()
	if _, err := t.Refresh(ctx); err != nil {
		t.logger.Warn("scheduled profit refresh failed", slog.Any("error", err))
	}
}

// Refresh re-derives the monthly profit from the aggregate source, caches it,
// and publishes it to subscribers. On failure the previous summary is kept
// and the error is returned; there is no automatic retry.
func (t *Trigger) Refresh(ctx context.Context) (Summary, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return Summary{}, ErrClosed
	}
	t.mu.Unlock()

	amount, err := t.source.CurrentMonthProfit(ctx)
	if err != nil {
		return t.lastGood(), fmt.Errorf("profit: refresh: %w", err)
	}

	summary := Summary{
		Amount:     amount,
		Formatted:  money.Format(amount),
		ComputedAt: time.Now().UTC(),
	}

	t.mu.Lock()
	t.current = &summary
	observers := make([]func(Summary), 0, len(t.subs))
	for _, fn := range t.subs {
		observers = append(observers, fn)
	}
	t.mu.Unlock()

	if t.cache != nil {
		if err := t.cache.Store(ctx, summary); err != nil {
			t.logger.Warn("profit summary cache store failed", slog.Any("error", err))
		}
	}
	for _, fn := range observers {
		fn(summary)
	}
	return summary, nil
}

// Prime seeds the cached summary from the configured SummaryCache. It only
// fills a cold start; once a refresh has run, Prime does nothing.
func (t *Trigger) Prime(ctx context.Context) {
	if t.cache == nil {
		return
	}
	summary, ok, err := t.cache.Load(ctx)
	if err != nil {
		t.logger.Warn("profit summary cache load failed", slog.Any("error", err))
		return
	}
	if !ok {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil && !t.closed {
		t.current = &summary
	}
}

func (t *Trigger) lastGood() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return Summary{}
	}
	return *t.current
}

// Current returns the last successfully refreshed summary, if any.
func (t *Trigger) Current() (Summary, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return Summary{}, false
	}
	return *t.current, true
}

// Subscription identifies one registered observer.
type Subscription struct {
	id      uuid.UUID
	trigger *Trigger
}

// Cancel removes the observer. Cancelling twice is harmless.
func (s Subscription) Cancel() {
	if s.trigger == nil {
		return
	}
	s.trigger.mu.Lock()
	delete(s.trigger.subs, s.id)
	s.trigger.mu.Unlock()
}

// Subscribe registers an observer invoked with every successfully refreshed
// summary. Observers run sequentially with no ordering guarantee among them.
func (t *Trigger) Subscribe(fn func(Summary)) Subscription {
	id := uuid.New()
	t.mu.Lock()
	t.subs[id] = fn
	t.mu.Unlock()
	return Subscription{id: id, trigger: t}
}

// Close cancels any pending refresh timer and stops accepting events.
func (t *Trigger) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
