package components

import (
	"coachbook/internal/pkg/clock"
	"coachbook/internal/usecase"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		clock.NewRealClock,
		usecase.NewTokenValidator,
		usecase.NewCalendarSyncUseCase,
		// The availability resolver schedules refreshes through the sync
		// usecase without owning it.
		func(s usecase.CalendarSyncUseCase) usecase.RefreshScheduler { return s },
		usecase.NewAvailabilityUseCase,
		usecase.NewBookingUseCase,
		usecase.NewSweepUseCase,
		usecase.NewWebhookUseCase,
	),
)
