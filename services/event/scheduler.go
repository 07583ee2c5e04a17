package event

import (
	"context"
	"errors"
	"time"

	"eventreward/pkg/config"
	"eventreward/pkg/task"
	"eventreward/pkg/taskname"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Scheduler periodically enqueues the event expiry task.
type Scheduler struct {
	enqueuer task.Enqueuer
	interval time.Duration
}

func NewScheduler(cfg *config.Config, enqueuer task.Enqueuer) *Scheduler {
	return &Scheduler{enqueuer: enqueuer, interval: cfg.Scheduler.ExpiryInterval}
}

func StartScheduler(lc fx.Lifecycle, s *Scheduler) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go s.run(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func (s *Scheduler) run(ctx context.Context) {
	zap.L().Info("[Scheduler] started event expiry scheduler", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		s.enqueue(ctx)
		select {
		case <-ticker.C:
		case <-ctx.Done():
			zap.L().Warn("[Scheduler] stopped")
			return
		}
	}
}

func (s *Scheduler) enqueue(ctx context.Context) {
	t := asynq.NewTask(taskname.EventExpire, nil)
	info, err := s.enqueuer.Enqueue(ctx, t,
		asynq.Queue(taskname.QueueMaintenance),
		asynq.Unique(s.interval),
		asynq.MaxRetry(3),
	)
	if errors.Is(err, asynq.ErrDuplicateTask) {
		return
	}
	if err != nil {
		zap.L().Error("[Scheduler] failed enqueue event expiry", zap.Error(err))
		return
	}
	zap.L().Debug("[Scheduler] enqueued event expiry", zap.String("task_id", info.ID))
}
