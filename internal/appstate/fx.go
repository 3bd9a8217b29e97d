package appstate

import (
	"github.com/reguahq/regua/internal/appstate/repository"
	"github.com/reguahq/regua/internal/appstate/service"
	"go.uber.org/fx"
)

var Module = fx.Module("appstate.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
