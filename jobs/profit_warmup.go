package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/balcao-pos/balcao-pos/internal/profit"
)

// Refresher recomputes and publishes the monthly profit summary.
type Refresher interface {
	Refresh(ctx context.Context) (profit.Summary, error)
}

// ProfitWarmupJob keeps the cached profit summary fresh from the queue side,
// independent of the event-driven trigger.
type ProfitWarmupJob struct {
	Trigger Refresher
	Logger  *slog.Logger
}

func NewProfitWarmupJob(trigger Refresher, logger *slog.Logger) *ProfitWarmupJob {
	return &ProfitWarmupJob{Trigger: trigger, Logger: logger}
}

// Handle processes profit warmup tasks.
func (j *ProfitWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Trigger == nil {
		return errors.New("profit warmup: handler not configured")
	}
	var payload ProfitWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	logger := j.logger()
	if payload.Reason != "" {
		logger = logger.With(slog.String("reason", payload.Reason))
	}

	started := time.Now()
	summary, err := j.Trigger.Refresh(ctx)
	if err != nil {
		if errors.Is(err, profit.ErrClosed) {
			logger.Info("profit warmup skipped, trigger closed")
			return asynq.SkipRetry
		}
		logger.Error("profit warmup failed", slog.Any("error", err))
		return err
	}

	logger.Info("profit warmup completed",
		slog.String("amount", summary.Formatted),
		slog.Duration("duration", time.Since(started)))
	return nil
}

func (j *ProfitWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskProfitWarmup))
	}
	return slog.Default().With(slog.String("job", TaskProfitWarmup))
}
