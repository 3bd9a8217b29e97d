package charge

import (
	"github.com/reguahq/regua/internal/charge/repository"
	"github.com/reguahq/regua/internal/charge/service"
	"go.uber.org/fx"
)

var Module = fx.Module("charge.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
