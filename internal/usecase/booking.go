package usecase

import (
	"context"
	"log/slog"
	"time"

	"coachbook/internal/domain/coaching"
	"coachbook/internal/domain/credit"
	"coachbook/internal/domain/reservation"
	"coachbook/internal/infra"
	"coachbook/internal/pkg/clock"
	"coachbook/internal/pkg/config"
	"coachbook/internal/pkg/errs"
	"coachbook/internal/pkg/metrics"

	"github.com/google/uuid"
)

var (
	ErrSlotTaken           = errs.New("slot is no longer available")
	ErrInsufficientCredit  = errs.New("no remaining sessions on credit package")
	ErrCreditExpired       = errs.New("credit package has expired")
	ErrCreditNotFound      = errs.New("credit package not found")
	ErrCreditMismatch      = errs.New("credit package does not cover this coaching")
	ErrCalendarFailure     = errs.New("external calendar rejected the event")
	ErrNeverSynced         = errs.New("instructor calendar has never been synced")
	ErrReservationNotFound = errs.New("reservation not found")
	ErrCancelForbidden     = errs.New("actor may not cancel this reservation")
)

const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// Actor identifies who requested an operation. Provider-driven flows use
// SystemActor, which bypasses ownership checks.
type Actor struct {
	UserID uuid.UUID
	Role   string
	system bool
}

var SystemActor = Actor{system: true}

func (a Actor) mayCancel(res *reservation.Reservation) bool {
	if a.system || a.Role == RoleInstructor || a.Role == RoleAdmin {
		return true
	}
	return a.UserID == res.StudentID()
}

type BookCommand struct {
	CoachingID     uuid.UUID
	StudentID      uuid.UUID
	CreditID       uuid.UUID
	Start          time.Time
	IdempotencyKey string
}

type BookingResult struct {
	Reservation *reservation.Reservation
	Replayed    bool
}

type CancelResult struct {
	Reservation *reservation.Reservation
	Refunded    bool
	AlreadyDone bool
}

type BookingUseCase interface {
	// Book runs the full transaction: validate, reserve externally, deduct
	// credit, persist. Any step failure compensates the ones before it.
	Book(ctx context.Context, cmd BookCommand) (*BookingResult, error)
	// Cancel is idempotent; cancelling a cancelled reservation is a no-op.
	Cancel(ctx context.Context, reservationID uuid.UUID, actor Actor) (*CancelResult, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*reservation.Reservation, error)
}

type bookingUseCaseImpl struct {
	coachingRepo CoachingRepository
	resvRepo     ReservationRepository
	creditRepo   CreditRepository
	attemptRepo  AttemptRepository
	settingsRepo SettingsRepository
	statusRepo   SyncStatusRepository
	availability AvailabilityUseCase
	gateway      CalendarGateway
	clock        clock.Clock
	cfg          config.BookingConfig
	calCfg       config.CalendarConfig
}

func NewBookingUseCase(
	coachingRepo CoachingRepository,
	resvRepo ReservationRepository,
	creditRepo CreditRepository,
	attemptRepo AttemptRepository,
	settingsRepo SettingsRepository,
	statusRepo SyncStatusRepository,
	availability AvailabilityUseCase,
	gateway CalendarGateway,
	clk clock.Clock,
	bookingCfg config.BookingConfig,
	calCfg config.CalendarConfig,
) BookingUseCase {
	return &bookingUseCaseImpl{
		coachingRepo: coachingRepo,
		resvRepo:     resvRepo,
		creditRepo:   creditRepo,
		attemptRepo:  attemptRepo,
		settingsRepo: settingsRepo,
		statusRepo:   statusRepo,
		availability: availability,
		gateway:      gateway,
		clock:        clk,
		cfg:          bookingCfg,
		calCfg:       calCfg,
	}
}

func (u *bookingUseCaseImpl) Book(ctx context.Context, cmd BookCommand) (*BookingResult, error) {
	if cmd.IdempotencyKey == "" {
		return nil, reservation.ErrEmptyIdempotencyKey
	}

	// Replay short-circuit: a confirmed reservation under the same key is
	// the prior outcome, returned as-is.
	if existing, err := u.resvRepo.FindConfirmedByIdempotencyKey(ctx, cmd.IdempotencyKey); err == nil {
		return &BookingResult{Reservation: existing, Replayed: true}, nil
	} else if !infra.IsKind(err, infra.KindNotFound) {
		return nil, errs.Wrap(err, "failed to check idempotency key")
	}

	co, err := u.findCoaching(ctx, cmd.CoachingID)
	if err != nil {
		return nil, err
	}

	attempt := &BookingAttempt{
		ID:             uuid.New(),
		IdempotencyKey: cmd.IdempotencyKey,
		CoachingID:     cmd.CoachingID,
		InstructorID:   co.InstructorID(),
		StudentID:      cmd.StudentID,
		CreditID:       &cmd.CreditID,
		Start:          cmd.Start,
		State:          AttemptRequested,
	}
	if err := u.attemptRepo.Create(ctx, attempt); err != nil {
		return nil, errs.Wrap(err, "failed to record booking attempt")
	}

	res, err := u.run(ctx, cmd, co, attempt)
	if err != nil {
		metrics.BookingsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}

	metrics.BookingsTotal.WithLabelValues("confirmed").Inc()
	return &BookingResult{Reservation: res}, nil
}

// run executes the saga steps on an already-persisted attempt, advancing its
// state before each side effect so a crash leaves an accurate trail.
func (u *bookingUseCaseImpl) run(ctx context.Context, cmd BookCommand, co *coaching.Coaching, attempt *BookingAttempt) (*reservation.Reservation, error) {
	u.transition(ctx, attempt, AttemptValidating)

	if err := u.validate(ctx, cmd, co); err != nil {
		u.transition(ctx, attempt, AttemptRejected)
		return nil, err
	}

	settings, err := u.settingsRepo.FindByInstructor(ctx, co.InstructorID())
	if err != nil {
		u.transition(ctx, attempt, AttemptRejected)
		return nil, errs.Wrap(err, "failed to load instructor settings")
	}

	end := cmd.Start.Add(co.Duration())

	u.transition(ctx, attempt, AttemptReservingExternal)

	event, err := u.createEvent(ctx, co, settings, cmd.Start, end)
	if err != nil {
		u.transition(ctx, attempt, AttemptRejected)
		return nil, errs.Mark(err, ErrCalendarFailure)
	}
	attempt.ExternalEventID = event.ID
	attempt.CalendarID = settings.BookingCalendarID

	u.transition(ctx, attempt, AttemptDeductingCredit)

	now := u.clock.Now()
	deducted, err := u.creditRepo.DeductOne(ctx, cmd.CreditID, now)
	if err != nil {
		u.compensateEvent(co.InstructorID(), settings.BookingCalendarID, event.ID)
		u.transition(ctx, attempt, AttemptRolledBack)
		return nil, errs.Wrap(err, "failed to deduct credit")
	}
	if !deducted {
		// A concurrent booking used the last session between the
		// pre-flight check and here.
		u.compensateEvent(co.InstructorID(), settings.BookingCalendarID, event.ID)
		u.transition(ctx, attempt, AttemptRejected)
		return nil, ErrInsufficientCredit
	}
	attempt.CreditDeducted = true

	u.transition(ctx, attempt, AttemptPersisting)

	res, err := reservation.NewReservation(reservation.NewReservationParams{
		CoachingID:      cmd.CoachingID,
		InstructorID:    co.InstructorID(),
		StudentID:       cmd.StudentID,
		Start:           cmd.Start,
		End:             end,
		ExternalEventID: event.ID,
		MeetLink:        event.MeetLink,
		CreditID:        cmd.CreditID,
		IdempotencyKey:  cmd.IdempotencyKey,
	})
	if err != nil {
		u.compensateCredit(cmd.CreditID)
		u.compensateEvent(co.InstructorID(), settings.BookingCalendarID, event.ID)
		u.transition(ctx, attempt, AttemptRolledBack)
		return nil, errs.Wrap(err, "failed to build reservation")
	}

	if err := u.resvRepo.Create(ctx, res); err != nil {
		u.compensateCredit(cmd.CreditID)
		u.compensateEvent(co.InstructorID(), settings.BookingCalendarID, event.ID)
		u.transition(ctx, attempt, AttemptRolledBack)
		if infra.IsKind(err, infra.KindDuplicateKey) {
			// The unique slot index is the last line of defense against
			// two coordinators racing past validation together.
			return nil, ErrSlotTaken
		}
		return nil, errs.Wrap(err, "failed to persist reservation")
	}

	u.transition(ctx, attempt, AttemptConfirmed)
	return res, nil
}

func (u *bookingUseCaseImpl) validate(ctx context.Context, cmd BookCommand, co *coaching.Coaching) error {
	status, err := u.statusRepo.Find(ctx, co.InstructorID())
	if err != nil && !infra.IsKind(err, infra.KindNotFound) {
		return errs.Wrap(err, "failed to read sync status")
	}
	if status == nil || status.LastSyncedAt == nil {
		return ErrNeverSynced
	}

	free, err := u.availability.SlotFree(ctx, co, cmd.Start)
	if err != nil {
		return errs.Wrap(err, "failed to re-validate slot")
	}
	if !free {
		return ErrSlotTaken
	}

	snap, err := u.creditRepo.FindByID(ctx, cmd.CreditID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrCreditNotFound
		}
		return errs.Wrap(err, "failed to find credit package")
	}
	if snap.StudentID != cmd.StudentID || snap.CoachingID != cmd.CoachingID {
		return ErrCreditMismatch
	}

	pkg := credit.Reconstruct(snap.ID, snap.StudentID, snap.CoachingID, snap.RemainingSessions, snap.ExpiresAt)
	switch err := pkg.Usable(u.clock.Now()); err {
	case nil:
		return nil
	case credit.ErrExpired:
		return ErrCreditExpired
	case credit.ErrExhausted:
		return ErrInsufficientCredit
	default:
		return err
	}
}

func (u *bookingUseCaseImpl) createEvent(ctx context.Context, co *coaching.Coaching, settings *SettingsSnapshot, start, end time.Time) (*CalendarEvent, error) {
	callCtx, cancel := context.WithTimeout(ctx, u.calCfg.CallTimeout)
	defer cancel()

	return u.gateway.CreateEvent(callCtx, co.InstructorID(), settings.BookingCalendarID, EventParams{
		Title:    co.Title(),
		Start:    start,
		End:      end,
		TimeZone: co.TimeZone(),
	})
}

func (u *bookingUseCaseImpl) Cancel(ctx context.Context, reservationID uuid.UUID, actor Actor) (*CancelResult, error) {
	res, err := u.resvRepo.FindByID(ctx, reservationID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, errs.Wrap(err, "failed to find reservation")
	}
	if !actor.mayCancel(res) {
		return nil, ErrCancelForbidden
	}

	flipped, err := u.resvRepo.MarkCancelled(ctx, reservationID, u.clock.Now())
	if err != nil {
		return nil, errs.Wrap(err, "failed to cancel reservation")
	}
	if !flipped {
		return &CancelResult{Reservation: res, AlreadyDone: true}, nil
	}

	refunded := false
	if u.cfg.RefundAfterAttendance || !res.WasAttended() {
		if err := u.creditRepo.RefundOne(ctx, res.CreditID()); err != nil {
			// The cancellation stands; surface the refund failure instead
			// of rolling the status back.
			metrics.CompensationFailures.WithLabelValues("refund_credit").Inc()
			return nil, errs.Wrap(err, "reservation cancelled but credit refund failed")
		}
		refunded = true
	}

	if res.ExternalEventID() != "" {
		u.deleteEventAsync(res)
	}

	return &CancelResult{Reservation: res, Refunded: refunded}, nil
}

func (u *bookingUseCaseImpl) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*reservation.Reservation, error) {
	list, err := u.resvRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, errs.Wrap(err, "failed to list reservations")
	}
	return list, nil
}

// deleteEventAsync removes the calendar event best-effort. The ledger row is
// already cancelled; a leftover event is cosmetic and gets logged, never
// surfaced to the caller.
func (u *bookingUseCaseImpl) deleteEventAsync(res *reservation.Reservation) {
	instructorID := res.InstructorID()
	eventID := res.ExternalEventID()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), u.calCfg.CallTimeout)
		defer cancel()

		settings, err := u.settingsRepo.FindByInstructor(ctx, instructorID)
		if err != nil {
			metrics.ExternalEventDeleteFailures.Inc()
			slog.Error("failed to load settings for event delete",
				"instructor_id", instructorID, "event_id", eventID, "error", err)
			return
		}
		if err := u.gateway.DeleteEvent(ctx, instructorID, settings.BookingCalendarID, eventID); err != nil {
			metrics.ExternalEventDeleteFailures.Inc()
			slog.Error("failed to delete external event",
				"instructor_id", instructorID, "event_id", eventID, "error", err)
		}
	}()
}

func (u *bookingUseCaseImpl) compensateEvent(instructorID uuid.UUID, calendarID, eventID string) {
	ctx, cancel := context.WithTimeout(context.Background(), u.calCfg.CallTimeout)
	defer cancel()

	if err := u.gateway.DeleteEvent(ctx, instructorID, calendarID, eventID); err != nil {
		metrics.CompensationFailures.WithLabelValues("delete_event").Inc()
		slog.Error("compensation failed: external event not deleted",
			"instructor_id", instructorID, "event_id", eventID, "error", err)
	}
}

func (u *bookingUseCaseImpl) compensateCredit(creditID uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := u.creditRepo.RefundOne(ctx, creditID); err != nil {
		metrics.CompensationFailures.WithLabelValues("refund_credit").Inc()
		slog.Error("compensation failed: credit not refunded", "credit_id", creditID, "error", err)
	}
}

// transition persists the attempt state change; a failed write is logged
// only, the saga itself must not die on bookkeeping.
func (u *bookingUseCaseImpl) transition(ctx context.Context, attempt *BookingAttempt, state AttemptState) {
	attempt.State = state
	if err := u.attemptRepo.Update(context.WithoutCancel(ctx), attempt); err != nil {
		slog.Error("failed to update booking attempt",
			"attempt_id", attempt.ID, "state", state, "error", err)
	}
}

func (u *bookingUseCaseImpl) findCoaching(ctx context.Context, coachingID uuid.UUID) (*coaching.Coaching, error) {
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
