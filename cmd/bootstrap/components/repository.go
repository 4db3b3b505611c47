package components

import (
	repo_impl "coachbook/internal/infra/repository"

	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		repo_impl.NewCoachingRepository,
		repo_impl.NewWorkingHourRepository,
		repo_impl.NewBusyIntervalRepository,
		repo_impl.NewSyncStatusRepository,
		repo_impl.NewReservationRepository,
		repo_impl.NewCreditRepository,
		repo_impl.NewLeaseRepository,
		repo_impl.NewAttemptRepository,
		repo_impl.NewSettingsRepository,
		repo_impl.NewAuditLogRepository,
	),
)
