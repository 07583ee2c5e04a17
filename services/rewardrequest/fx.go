package rewardrequest

import (
	"eventreward/pkg/config"
	"eventreward/pkg/db"
	"eventreward/services/event"
	"eventreward/services/reward"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("rewardrequest.service",
	fx.Provide(
		NewRepository,
		NewOrchestrator,
		NewQueryService,
		func(s *event.Service) EventLoader { return s },
		func(l *reward.Ledger) StockLedger { return l },
	),
	fx.Invoke(migrate),
)

func migrate(cfg *config.Config, conn *gorm.DB) error {
	return db.AutoMigrate(cfg, conn, &RewardRequest{})
}
