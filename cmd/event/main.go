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
	"eventreward/pkg/server"
	"eventreward/services/event"
	"eventreward/services/eventserver"
	"eventreward/services/reward"
	"eventreward/services/rewardrequest"
)

func main() {
	opts := []fx.Option{
		secretmanager.Module,
		config.Module,
		logger.Module,
		otelcol.Module,
		profiling.Module,
		db.Module,
		gen.Module,
		reward.Module,
		event.Module,
		rewardrequest.Module,
		eventserver.Module,
		httpapi.Module,
		health.Module,
		server.ProvideGRPCServer,
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
