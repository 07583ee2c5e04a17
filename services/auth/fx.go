package auth

import (
	"eventreward/pkg/api/authv1"
	"eventreward/pkg/config"
	"eventreward/pkg/db"

	"go.uber.org/fx"
	"google.golang.org/grpc"
	"gorm.io/gorm"
)

var Module = fx.Module("auth.service",
	fx.Provide(
		NewRepository,
		NewRedisSessionStore,
		NewService,
		NewServer,
	),
	fx.Invoke(
		migrate,
		register,
	),
)

func migrate(cfg *config.Config, conn *gorm.DB) error {
	return db.AutoMigrate(cfg, conn, &User{})
}

func register(s *grpc.Server, srv *Server) {
	authv1.RegisterAuthServiceServer(s, srv)
}
