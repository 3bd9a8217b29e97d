package customer

import (
	"github.com/reguahq/regua/internal/customer/repository"
	"github.com/reguahq/regua/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
