package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSessionSweep is the task type for purging expired session audit rows.
	TaskSessionSweep = "session:sweep"
	// DefaultSweepGraceHours keeps expired audit rows inspectable for a day.
	DefaultSweepGraceHours = 24
)

// SessionSweepPayload configures a session sweep run.
type SessionSweepPayload struct {
	// GraceHours keeps expired rows around for this long before purging,
	// so recent expiries stay inspectable.
	GraceHours int `json:"grace_hours"`
}

// NewSessionSweepTask constructs an Asynq task.
func NewSessionSweepTask(graceHours int) (*asynq.Task, error) {
	data, err := json.Marshal(SessionSweepPayload{GraceHours: graceHours})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSessionSweep, data), nil
}
