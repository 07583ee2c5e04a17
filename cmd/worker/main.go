package main

import (
	"log"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"eventreward/pkg/config"
	"eventreward/pkg/db"
	"eventreward/pkg/gen"
	"eventreward/pkg/hashistack/secretmanager"
	"eventreward/pkg/health"
	"eventreward/pkg/httpapi"
	"eventreward/pkg/logger"
	"eventreward/pkg/otelcol"
	"eventreward/pkg/profiling"
	"eventreward/pkg/redis"
	"eventreward/pkg/server"
	"eventreward/pkg/task"
	"eventreward/services/event"
	"eventreward/services/reward"
)

func main() {
	opts := []fx.Option{
		secretmanager.Module,
		config.Module,
		logger.Module,
		otelcol.Module,
		profiling.Module,
		db.Module,
		redis.Module,
		gen.Module,
		task.Client,
		task.Server,
		reward.Module,
		event.Module,
		event.TaskModule,
		httpapi.Module,
		health.Module,
		server.ProvideHTTPServer,
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})
