package reward

import (
	"eventreward/pkg/config"
	"eventreward/pkg/db"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("reward.service",
	fx.Provide(
		NewRepository,
		NewLedger,
		NewService,
	),
	fx.Invoke(migrate),
)

func migrate(cfg *config.Config, conn *gorm.DB) error {
	return db.AutoMigrate(cfg, conn, &Reward{})
}
