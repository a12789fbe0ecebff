package tasks

import (
	"encoding/json"

	"fleetbid/models"

	"github.com/hibiken/asynq"
)

const (
	TypeAuctionSweep = "auction:sweep"
	TypeJobCompleted = "job:completed"
)

// NewSweepTask builds the periodic task that expires overdue open sessions.
func NewSweepTask() *asynq.Task {
	return asynq.NewTask(TypeAuctionSweep, nil)
}

// NewJobCompletedTask builds the task consumed when the execution/tracking
// component reports a finished job; handling it creates the escrow hold.
func NewJobCompletedTask(bookingID string) (*asynq.Task, error) {
	b, err := json.Marshal(models.JobCompletedPayload{BookingID: bookingID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeJobCompleted, b), nil
}
