package gen

import (
	"eventreward/pkg/config"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

// Module provides the id generator. NODE_ID must be unique per running process.
var Module = fx.Module("gen", fx.Provide(NewSnowflakeNode))

func NewSnowflakeNode(cfg *config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
