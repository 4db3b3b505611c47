package bootstrap

import (
	"coachbook/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		func(cfg config.Config) config.AuthConfig { return cfg.Auth },
		func(cfg config.Config) config.CalendarConfig { return cfg.Calendar },
		func(cfg config.Config) config.SyncConfig { return cfg.Sync },
		func(cfg config.Config) config.BookingConfig { return cfg.Booking },
	),
)
