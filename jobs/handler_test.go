package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEnqueuer struct {
	info    *asynq.TaskInfo
	err     error
	payload ProfitWarmupPayload
	calls   int
}

func (s *stubEnqueuer) EnqueueProfitWarmup(_ context.Context, payload ProfitWarmupPayload) (*asynq.TaskInfo, error) {
	s.calls++
	s.payload = payload
	if s.err != nil {
		return nil, s.err
	}
	return s.info, nil
}

func newJobsRouter(enqueuer WarmupEnqueuer) http.Handler {
	r := chi.NewRouter()
	h := NewHandler(slog.New(slog.DiscardHandler), enqueuer)
	r.Route("/jobs", h.Routes)
	return r
}

func TestEnqueueWarmupAccepted(t *testing.T) {
	stub := &stubEnqueuer{info: &asynq.TaskInfo{ID: "task-1", Queue: QueueDefault}}
	router := newJobsRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/jobs/profit-warmup", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "task-1", body["task_id"])
	assert.Equal(t, QueueDefault, body["queue"])
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, "manual", stub.payload.Reason)
}

func TestEnqueueWarmupQueueUnavailable(t *testing.T) {
	stub := &stubEnqueuer{err: errors.New("redis: connection refused")}
	router := newJobsRouter(stub)

	req := httptest.NewRequest(http.MethodPost, "/jobs/profit-warmup", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
