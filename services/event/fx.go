package event

import (
	"eventreward/pkg/config"
	"eventreward/pkg/db"
	"eventreward/pkg/taskname"
	"eventreward/services/reward"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("event.service",
	fx.Provide(
		NewRepository,
		NewService,
		func(s *Service) reward.EventChecker { return s },
	),
	fx.Invoke(migrate),
)

// TaskModule runs the expiry job on an asynq worker.
var TaskModule = fx.Module("event.task",
	fx.Provide(
		NewTask,
		NewScheduler,
	),
	fx.Invoke(
		registerTaskHandlers,
		StartScheduler,
	),
)

func migrate(cfg *config.Config, conn *gorm.DB) error {
	return db.AutoMigrate(cfg, conn, &Event{})
}

func registerTaskHandlers(mux *asynq.ServeMux, t *Task) {
	mux.HandleFunc(taskname.EventExpire, t.HandleExpireTask)
}
