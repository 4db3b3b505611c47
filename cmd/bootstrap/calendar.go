package bootstrap

import (
	"coachbook/internal/infra/googlecal"
	"coachbook/internal/infra/repository"
	"coachbook/internal/usecase"

	"go.uber.org/fx"
)

var CalendarModule = fx.Module("calendar",
	fx.Provide(
		fx.Annotate(
			repository.NewTokenStore,
			fx.As(new(googlecal.TokenStore)),
		),
		fx.Annotate(
			googlecal.NewClient,
			fx.As(new(usecase.CalendarGateway)),
		),
	),
)
