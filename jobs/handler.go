package jobs

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/balcao-pos/balcao-pos/internal/platform/httpx"
)

// WarmupEnqueuer submits profit warmup tasks to the queue.
type WarmupEnqueuer interface {
	EnqueueProfitWarmup(ctx context.Context, payload ProfitWarmupPayload) (*asynq.TaskInfo, error)
}

// Handler exposes on-demand job submission over HTTP.
type Handler struct {
	logger   *slog.Logger
	enqueuer WarmupEnqueuer
}

func NewHandler(logger *slog.Logger, enqueuer WarmupEnqueuer) *Handler {
	return &Handler{logger: logger, enqueuer: enqueuer}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/profit-warmup", h.EnqueueWarmup)
}

// EnqueueWarmup queues a profit warmup so the monthly summary cache can be
// rebuilt without waiting for the nightly schedule.
func (h *Handler) EnqueueWarmup(w http.ResponseWriter, r *http.Request) {
	info, err := h.enqueuer.EnqueueProfitWarmup(r.Context(), ProfitWarmupPayload{Reason: "manual"})
	if err != nil {
		h.logger.Error("enqueue profit warmup failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{
		"task_id": info.ID,
		"queue":   info.Queue,
	})
}
