package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"coachbook/internal/pkg/config"
	"coachbook/internal/usecase"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
)

var JobsModule = fx.Module("jobs",
	fx.Invoke(startJobs),
)

// startJobs runs the periodic calendar sync and the stuck-attempt sweep on
// one scheduler. Both are safe to overlap with API-triggered work: sync is
// lease-guarded and the sweep only touches attempts past the stuck cutoff.
func startJobs(
	lc fx.Lifecycle,
	cfg config.SyncConfig,
	syncUC usecase.CalendarSyncUseCase,
	sweepUC usecase.SweepUseCase,
	settingsRepo usecase.SettingsRepository,
) error {
	scheduler := cron.New()

	syncSpec := fmt.Sprintf("@every %s", cfg.Interval)
	if _, err := scheduler.AddFunc(syncSpec, func() { syncAll(syncUC, settingsRepo) }); err != nil {
		return fmt.Errorf("failed to schedule calendar sync: %w", err)
	}

	sweepSpec := fmt.Sprintf("@every %s", cfg.SweepInterval)
	if _, err := scheduler.AddFunc(sweepSpec, func() { runSweep(sweepUC) }); err != nil {
		return fmt.Errorf("failed to schedule attempt sweep: %w", err)
	}

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			scheduler.Start()
			slog.Info("background jobs started", "sync_interval", cfg.Interval, "sweep_interval", cfg.SweepInterval)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			stopped := scheduler.Stop()
			select {
			case <-stopped.Done():
			case <-ctx.Done():
			}
			return nil
		},
	})
	return nil
}

func syncAll(syncUC usecase.CalendarSyncUseCase, settingsRepo usecase.SettingsRepository) {
	ctx := context.Background()

	ids, err := settingsRepo.ListInstructorIDs(ctx)
	if err != nil {
		slog.Error("periodic sync: failed to list instructors", "error", err)
		return
	}

	for _, id := range ids {
		if _, err := syncUC.Sync(ctx, id); err != nil && !errors.Is(err, usecase.ErrSyncInFlight) {
			slog.Warn("periodic sync failed for instructor", "instructor_id", id, "error", err)
		}
	}
}

func runSweep(sweepUC usecase.SweepUseCase) {
	if _, err := sweepUC.Sweep(context.Background()); err != nil {
		slog.Error("attempt sweep failed", "error", err)
	}
}
