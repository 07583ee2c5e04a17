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
	"eventreward/pkg/token"
	"eventreward/services/auth"
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
		token.Module,
		auth.Module,
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
