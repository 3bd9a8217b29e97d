package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/reguahq/regua/internal/appstate"
	"github.com/reguahq/regua/internal/charge"
	"github.com/reguahq/regua/internal/clock"
	"github.com/reguahq/regua/internal/config"
	"github.com/reguahq/regua/internal/customer"
	"github.com/reguahq/regua/internal/dunning"
	"github.com/reguahq/regua/internal/migration"
	"github.com/reguahq/regua/internal/notification"
	"github.com/reguahq/regua/internal/ratelimit"
	"github.com/reguahq/regua/internal/scheduler"
	"github.com/reguahq/regua/internal/server"
	"github.com/reguahq/regua/pkg/db"
	"github.com/reguahq/regua/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Functional domains
		appstate.Module,
		customer.Module,
		charge.Module,
		dunning.Module,
		notification.Module,
		ratelimit.Module,
		scheduler.Module,

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
