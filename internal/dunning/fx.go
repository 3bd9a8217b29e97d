package dunning

import (
	"github.com/reguahq/regua/internal/dunning/repository"
	"github.com/reguahq/regua/internal/dunning/service"
	"go.uber.org/fx"
)

var Module = fx.Module("dunning.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
