package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// SessionPurger removes expired session audit rows.
type SessionPurger interface {
	DeleteExpiredSessions(ctx context.Context, cutoff time.Time) (int64, error)
}

// SessionSweepJob purges session audit rows whose expiry passed. The live
// session records in Redis expire on their own; this job only keeps the
// audit table from growing without bound.
type SessionSweepJob struct {
	purger SessionPurger
	logger *slog.Logger
}

// NewSessionSweepJob constructs the job.
func NewSessionSweepJob(purger SessionPurger, logger *slog.Logger) *SessionSweepJob {
	return &SessionSweepJob{purger: purger, logger: logger}
}

// Handle processes TaskSessionSweep tasks.
func (j *SessionSweepJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload SessionSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.GraceHours < 0 {
		return asynq.SkipRetry
	}
	cutoff := time.Now().UTC().Add(-time.Duration(payload.GraceHours) * time.Hour)
	removed, err := j.purger.DeleteExpiredSessions(ctx, cutoff)
	if err != nil {
		return err
	}
	if j.logger != nil {
		j.logger.Info("session sweep",
			slog.Int64("removed", removed),
			slog.Time("cutoff", cutoff))
	}
	return nil
}
