package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/anubad/internal/cache"
	"github.com/smallbiznis/anubad/internal/clock"
	"github.com/smallbiznis/anubad/internal/config"
	"github.com/smallbiznis/anubad/internal/migration"
	"github.com/smallbiznis/anubad/internal/observability"
	"github.com/smallbiznis/anubad/internal/providers/completion"
	"github.com/smallbiznis/anubad/internal/server"
	"github.com/smallbiznis/anubad/internal/translation"
	"github.com/smallbiznis/anubad/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Functional Domains
		completion.Module,
		cache.Module,
		translation.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
