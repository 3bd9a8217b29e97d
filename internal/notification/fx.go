package notification

import (
	"github.com/reguahq/regua/internal/notification/repository"
	"github.com/reguahq/regua/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
