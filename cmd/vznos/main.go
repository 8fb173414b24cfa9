package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/sadovo/vznos/internal/clock"
	"github.com/sadovo/vznos/internal/config"
	"github.com/sadovo/vznos/internal/migration"
	"github.com/sadovo/vznos/internal/observability"
	"github.com/sadovo/vznos/internal/server"
	"github.com/sadovo/vznos/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
