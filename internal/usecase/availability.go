package usecase

import (
	"context"
	"log/slog"
	"time"

	"coachbook/internal/domain/coaching"
	"coachbook/internal/domain/schedule"
	"coachbook/internal/infra"
	"coachbook/internal/pkg/clock"
	"coachbook/internal/pkg/config"
	"coachbook/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrCoachingNotFound = errs.New("coaching not found")
	ErrCoachingInactive = errs.New("coaching is not active")
	ErrInvalidDate      = errs.New("invalid date")
)

type SlotView struct {
	Start     time.Time
	Available bool
}

// RefreshScheduler triggers an asynchronous cache refresh. Implemented by the
// sync usecase; availability reads never wait on it.
type RefreshScheduler interface {
	ScheduleRefresh(instructorID uuid.UUID)
}

type AvailabilityUseCase interface {
	// Slots resolves the slot list for one date, in the coaching's zone.
	Slots(ctx context.Context, coachingID uuid.UUID, date string) ([]SlotView, error)
	// SlotFree re-validates a single candidate start at call time.
	SlotFree(ctx context.Context, co *coaching.Coaching, start time.Time) (bool, error)
}

type availabilityUseCaseImpl struct {
	coachingRepo CoachingRepository
	ruleRepo     WorkingHourRepository
	busyRepo     BusyIntervalRepository
	statusRepo   SyncStatusRepository
	resvRepo     ReservationRepository
	scheduler    RefreshScheduler
	clock        clock.Clock
	cfg          config.BookingConfig
	staleAfter   time.Duration
}

func NewAvailabilityUseCase(
	coachingRepo CoachingRepository,
	ruleRepo WorkingHourRepository,
	busyRepo BusyIntervalRepository,
	statusRepo SyncStatusRepository,
	resvRepo ReservationRepository,
	scheduler RefreshScheduler,
	clk clock.Clock,
	bookingCfg config.BookingConfig,
	syncCfg config.SyncConfig,
) AvailabilityUseCase {
	return &availabilityUseCaseImpl{
		coachingRepo: coachingRepo,
		ruleRepo:     ruleRepo,
		busyRepo:     busyRepo,
		statusRepo:   statusRepo,
		resvRepo:     resvRepo,
		scheduler:    scheduler,
		clock:        clk,
		cfg:          bookingCfg,
		staleAfter:   syncCfg.StaleAfter,
	}
}

func (u *availabilityUseCaseImpl) Slots(ctx context.Context, coachingID uuid.UUID, date string) ([]SlotView, error) {
	co, err := u.findCoaching(ctx, coachingID)
	if err != nil {
		return nil, err
	}

	loc := co.Location()
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return nil, ErrInvalidDate
	}

	slots, err := u.resolve(ctx, co, loc, day)
	if err != nil {
		return nil, err
	}

	views := make([]SlotView, len(slots))
	for i, s := range slots {
		views[i] = SlotView{Start: s.Start, Available: s.Available}
	}
	return views, nil
}

func (u *availabilityUseCaseImpl) SlotFree(ctx context.Context, co *coaching.Coaching, start time.Time) (bool, error) {
	loc := co.Location()
	localStart := start.In(loc)
	day := time.Date(localStart.Year(), localStart.Month(), localStart.Day(), 0, 0, 0, 0, loc)

	slots, err := u.resolve(ctx, co, loc, day)
	if err != nil {
		return false, err
	}

	for _, s := range slots {
		if s.Start.Equal(localStart) {
			return s.Available, nil
		}
	}
	return false, nil
}

// resolve runs the full pipeline for one calendar day: working-hour rule,
// cached busy intervals, confirmed reservations, merge, candidate stride.
func (u *availabilityUseCaseImpl) resolve(ctx context.Context, co *coaching.Coaching, loc *time.Location, day time.Time) ([]schedule.Slot, error) {
	rule, err := u.ruleRepo.FindRule(ctx, co.ID(), day.Weekday())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil
		}
		return nil, errs.Wrap(err, "failed to find working hour rule")
	}
	if !rule.Enabled {
		return nil, nil
	}

	status, err := u.statusRepo.Find(ctx, co.InstructorID())
	if err != nil && !infra.IsKind(err, infra.KindNotFound) {
		return nil, errs.Wrap(err, "failed to read sync status")
	}

	now := u.clock.Now()

	// Fail closed: without one successful sync we cannot distinguish an
	// empty calendar from an unseen one.
	if status == nil || status.LastSyncedAt == nil {
		u.scheduler.ScheduleRefresh(co.InstructorID())
		return u.allUnavailable(rule, co, loc, day, now), nil
	}

	// Stale-while-revalidate: serve the last-good cache, refresh behind.
	if now.Sub(*status.LastSyncedAt) > u.staleAfter {
		slog.Debug("busy cache stale, scheduling refresh",
			"instructor_id", co.InstructorID(), "last_synced_at", *status.LastSyncedAt)
		u.scheduler.ScheduleRefresh(co.InstructorID())
	}

	dayStart := day
	dayEnd := day.AddDate(0, 0, 1)

	busy, err := u.busyRepo.ListForRange(ctx, co.InstructorID(), dayStart, dayEnd)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list busy intervals")
	}

	// Defense in depth against a stale cache: the ledger is authoritative
	// for our own reservations.
	reserved, err := u.resvRepo.ListConfirmedIntervals(ctx, co.ID(), co.InstructorID(), dayStart, dayEnd)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list confirmed reservations")
	}

	return schedule.BuildSlots(schedule.SlotParams{
		Rule:        rule,
		Year:        day.Year(),
		Month:       day.Month(),
		Day:         day.Day(),
		Location:    loc,
		Duration:    co.Duration(),
		Busy:        append(busy, reserved...),
		Now:         now,
		MinLeadTime: u.cfg.MinLeadTime,
	}), nil
}

func (u *availabilityUseCaseImpl) allUnavailable(rule *schedule.WorkingHourRule, co *coaching.Coaching, loc *time.Location, day time.Time, now time.Time) []schedule.Slot {
	slots := schedule.BuildSlots(schedule.SlotParams{
		Rule:        rule,
		Year:        day.Year(),
		Month:       day.Month(),
		Day:         day.Day(),
		Location:    loc,
		Duration:    co.Duration(),
		Now:         now,
		MinLeadTime: u.cfg.MinLeadTime,
	})
	for i := range slots {
		slots[i].Available = false
	}
	return slots
}

func (u *availabilityUseCaseImpl) findCoaching(ctx context.Context, coachingID uuid.UUID) (*coaching.Coaching, error) {
	co, err := u.coachingRepo.FindByID(ctx, coachingID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrCoachingNotFound
		}
		return nil, errs.Wrap(err, "failed to find coaching")
	}
	if !co.IsActive() {
		return nil, ErrCoachingInactive
	}
	return co, nil
}
