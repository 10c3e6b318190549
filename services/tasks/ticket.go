package tasks

import (
	"encoding/json"
	"time"

	"concierge/models"

	"github.com/hibiken/asynq"
)

const TypeTicketNotify = "ticket:notify"

// NewTicketNotifyTask builds the front desk notification for a new ticket.
func NewTicketNotifyTask(payload models.TicketNotifyPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeTicketNotify, b)
	opts := []asynq.Option{
		asynq.MaxRetry(5),
		asynq.Timeout(30 * time.Second),
		asynq.Queue("default"),
	}
	return task, opts, nil
}

// ParseTicketNotify decodes a task payload.
func ParseTicketNotify(task *asynq.Task) (models.TicketNotifyPayload, error) {
	var p models.TicketNotifyPayload
	err := json.Unmarshal(task.Payload(), &p)
	return p, err
}
