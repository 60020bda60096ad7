package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskProfitWarmup recomputes the monthly profit summary so the first
	// dashboard hit of the day does not pay for the aggregate query.
	TaskProfitWarmup = "profit:warmup"
)

// ProfitWarmupPayload carries options for a warmup run.
type ProfitWarmupPayload struct {
	Reason string `json:"reason,omitempty"`
}

// NewProfitWarmupTask constructs an Asynq task.
func NewProfitWarmupTask(payload ProfitWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskProfitWarmup, data), nil
}
