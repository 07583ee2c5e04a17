package client

import (
	"context"

	"eventreward/pkg/api/authv1"
	"eventreward/pkg/api/eventv1"
	"eventreward/pkg/config"
	"eventreward/pkg/middleware"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

var Module = fx.Module("grpc.client",
	fx.Provide(
		NewAuthClient,
		NewEventClient,
	),
)

func NewGRPCConn(lc fx.Lifecycle, tp trace.TracerProvider, addr string) (*grpc.ClientConn, error) {
	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler(otelgrpc.WithTracerProvider(tp))),
		grpc.WithChainUnaryInterceptor(middleware.RequestIDClientInterceptor()),
	)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return conn.Close()
		},
	})

	return conn, nil
}

func NewAuthClient(lc fx.Lifecycle, tp trace.TracerProvider, cfg *config.Config) (authv1.AuthServiceClient, error) {
	conn, err := NewGRPCConn(lc, tp, cfg.Services.AuthURL)
	if err != nil {
		zap.L().Error("failed to connect auth service", zap.Error(err), zap.String("url", cfg.Services.AuthURL))
		return nil, err
	}
	return authv1.NewAuthServiceClient(conn), nil
}

func NewEventClient(lc fx.Lifecycle, tp trace.TracerProvider, cfg *config.Config) (eventv1.EventServiceClient, error) {
	conn, err := NewGRPCConn(lc, tp, cfg.Services.EventURL)
	if err != nil {
		zap.L().Error("failed to connect event service", zap.Error(err), zap.String("url", cfg.Services.EventURL))
		return nil, err
	}
	return eventv1.NewEventServiceClient(conn), nil
}
