package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"coachbook/internal/domain/schedule"
	"coachbook/internal/infra"
	"coachbook/internal/pkg/clock"
	"coachbook/internal/pkg/config"
	"coachbook/internal/pkg/errs"
	"coachbook/internal/pkg/metrics"

	"github.com/google/uuid"
)

var (
	ErrSyncInFlight       = errs.New("sync already in progress for instructor")
	ErrAllCalendarsFailed = errs.New("all linked calendars failed to sync")
	ErrInstructorNotFound = errs.New("instructor not found")
)

type SyncResult struct {
	SyncedCount       int
	FailedCalendarIDs []string
	LastSynced        time.Time
	Degraded          bool
}

type CalendarSyncUseCase interface {
	// Sync pulls busy intervals for the rolling window and replaces the
	// instructor's cache wholesale. Per-instructor mutual exclusion via
	// the sync lease; parallel across instructors.
	Sync(ctx context.Context, instructorID uuid.UUID) (*SyncResult, error)
	// ScheduleRefresh runs Sync in the background, dropping the request
	// when a sync is already in flight.
	ScheduleRefresh(instructorID uuid.UUID)
}

type calendarSyncUseCaseImpl struct {
	settingsRepo SettingsRepository
	busyRepo     BusyIntervalRepository
	leaseRepo    LeaseRepository
	gateway      CalendarGateway
	clock        clock.Clock
	cfg          config.CalendarConfig
	leaseTTL     time.Duration
}

func NewCalendarSyncUseCase(
	settingsRepo SettingsRepository,
	busyRepo BusyIntervalRepository,
	leaseRepo LeaseRepository,
	gateway CalendarGateway,
	clk clock.Clock,
	calCfg config.CalendarConfig,
	syncCfg config.SyncConfig,
) CalendarSyncUseCase {
	return &calendarSyncUseCaseImpl{
		settingsRepo: settingsRepo,
		busyRepo:     busyRepo,
		leaseRepo:    leaseRepo,
		gateway:      gateway,
		clock:        clk,
		cfg:          calCfg,
		leaseTTL:     syncCfg.LeaseTTL,
	}
}

func (u *calendarSyncUseCaseImpl) Sync(ctx context.Context, instructorID uuid.UUID) (*SyncResult, error) {
	settings, err := u.settingsRepo.FindByInstructor(ctx, instructorID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrInstructorNotFound
		}
		return nil, errs.Wrap(err, "failed to load instructor settings")
	}

	holder := uuid.NewString()
	acquired, err := u.leaseRepo.Acquire(ctx, instructorID, holder, u.leaseTTL)
	if err != nil {
		return nil, errs.Wrap(err, "failed to acquire sync lease")
	}
	if !acquired {
		metrics.CalendarSyncsTotal.WithLabelValues("skipped").Inc()
		return nil, ErrSyncInFlight
	}
	defer func() {
		if releaseErr := u.leaseRepo.Release(context.WithoutCancel(ctx), instructorID, holder); releaseErr != nil {
			// Expiry will reclaim the lease; log and move on.
			slog.Warn("failed to release sync lease", "instructor_id", instructorID, "error", releaseErr)
		}
	}()

	now := u.clock.Now()
	from := now
	to := now.AddDate(0, 0, u.cfg.WindowDays)

	var (
		entries []BusyEntry
		failed  []string
	)
	for _, calendarID := range settings.CalendarIDs {
		intervals, fetchErr := u.fetchOne(ctx, instructorID, calendarID, from, to)
		if fetchErr != nil {
			// One calendar's outage must not abort the rest.
			slog.Warn("calendar freebusy fetch failed",
				"instructor_id", instructorID, "calendar_id", calendarID, "error", fetchErr)
			failed = append(failed, calendarID)
			continue
		}
		for _, iv := range intervals {
			entries = append(entries, BusyEntry{CalendarID: calendarID, Interval: iv})
		}
	}

	if len(settings.CalendarIDs) > 0 && len(failed) == len(settings.CalendarIDs) {
		metrics.CalendarSyncsTotal.WithLabelValues("failed").Inc()
		return nil, ErrAllCalendarsFailed
	}

	degraded := len(failed) > 0
	if err := u.busyRepo.Replace(ctx, instructorID, entries, now, degraded, failed); err != nil {
		metrics.CalendarSyncsTotal.WithLabelValues("failed").Inc()
		return nil, errs.Wrap(err, "failed to replace busy cache")
	}

	outcome := "ok"
	if degraded {
		outcome = "degraded"
	}
	metrics.CalendarSyncsTotal.WithLabelValues(outcome).Inc()
	slog.Info("calendar sync completed",
		"instructor_id", instructorID, "intervals", len(entries), "degraded", degraded)

	return &SyncResult{
		SyncedCount:       len(settings.CalendarIDs) - len(failed),
		FailedCalendarIDs: failed,
		LastSynced:        now,
		Degraded:          degraded,
	}, nil
}

func (u *calendarSyncUseCaseImpl) fetchOne(ctx context.Context, instructorID uuid.UUID, calendarID string, from, to time.Time) ([]schedule.Interval, error) {
	callCtx, cancel := context.WithTimeout(ctx, u.cfg.CallTimeout)
	defer cancel()
	return u.gateway.FreeBusy(callCtx, instructorID, calendarID, from, to)
}

func (u *calendarSyncUseCaseImpl) ScheduleRefresh(instructorID uuid.UUID) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if _, err := u.Sync(ctx, instructorID); err != nil && !errors.Is(err, ErrSyncInFlight) {
			slog.Warn("background calendar refresh failed", "instructor_id", instructorID, "error", err)
		}
	}()
}
