package event

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Task handles background jobs of the event catalog.
type Task struct {
	svc *Service
	now func() time.Time
}

func NewTask(svc *Service) *Task {
	return &Task{svc: svc, now: time.Now}
}

// HandleExpireTask ends every ACTIVE event whose window has closed.
func (t *Task) HandleExpireTask(ctx context.Context, task *asynq.Task) error {
	start := t.now()
	n, err := t.svc.EndExpired(ctx, start)
	if err != nil {
		return err
	}

	zap.L().Info("[Task] event expiry finished",
		zap.String("task_type", task.Type()),
		zap.Int64("ended", n),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}
