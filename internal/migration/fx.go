package migration

import (
	appstatedomain "github.com/reguahq/regua/internal/appstate/domain"
	chargedomain "github.com/reguahq/regua/internal/charge/domain"
	"github.com/reguahq/regua/internal/config"
	customerdomain "github.com/reguahq/regua/internal/customer/domain"
	dunningdomain "github.com/reguahq/regua/internal/dunning/domain"
	notificationdomain "github.com/reguahq/regua/internal/notification/domain"
	organizationdomain "github.com/reguahq/regua/internal/organization/domain"
	"github.com/reguahq/regua/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, dunningCfg *config.DunningConfigHolder) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql are dev conveniences; the versioned
			// migrations target postgres only.
			if err := conn.AutoMigrate(
				&organizationdomain.Organization{},
				&appstatedomain.AppState{},
				&customerdomain.Customer{},
				&chargedomain.Charge{},
				&dunningdomain.DunningRule{},
				&dunningdomain.DunningStep{},
				&notificationdomain.NotificationLog{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureDefaultOrg(conn, cfg, dunningCfg)
	}),
)
