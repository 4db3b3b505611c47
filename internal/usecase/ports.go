package usecase

import (
	"context"
	"time"

	"coachbook/internal/domain/coaching"
	"coachbook/internal/domain/reservation"
	"coachbook/internal/domain/schedule"

	"github.com/google/uuid"
)

// Write-side snapshots keep the usecases off the storage row shapes.

type CreditSnapshot struct {
	ID                uuid.UUID
	StudentID         uuid.UUID
	CoachingID        uuid.UUID
	RemainingSessions int
	ExpiresAt         *time.Time
}

type SettingsSnapshot struct {
	InstructorID      uuid.UUID
	CalendarIDs       []string
	BookingCalendarID string
	WebhookSecret     string
}

type SyncStatus struct {
	InstructorID      uuid.UUID
	LastSyncedAt      *time.Time
	Degraded          bool
	FailedCalendarIDs []string
}

// BusyEntry is one cached interval with its source calendar, kept so a later
// sync can attribute degradation to a specific calendar.
type BusyEntry struct {
	CalendarID string
	Interval   schedule.Interval
}

type AttemptState string

const (
	AttemptRequested         AttemptState = "REQUESTED"
	AttemptValidating        AttemptState = "VALIDATING"
	AttemptReservingExternal AttemptState = "RESERVING_EXTERNAL"
	AttemptDeductingCredit   AttemptState = "DEDUCTING_CREDIT"
	AttemptPersisting        AttemptState = "PERSISTING"
	AttemptConfirmed         AttemptState = "CONFIRMED"
	AttemptRejected          AttemptState = "REJECTED"
	AttemptRolledBack        AttemptState = "ROLLED_BACK"
)

// BookingAttempt is the persisted saga record. It exists so a coordinator
// crash between the external mutation and the ledger insert leaves a trail
// the sweep can reconcile.
type BookingAttempt struct {
	ID              uuid.UUID
	IdempotencyKey  string
	CoachingID      uuid.UUID
	InstructorID    uuid.UUID
	StudentID       uuid.UUID
	CreditID        *uuid.UUID
	Start           time.Time
	State           AttemptState
	ExternalEventID string
	CalendarID      string
	CreditDeducted  bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type AuditEntry struct {
	EventID      string
	InstructorID uuid.UUID
	EventType    string
	Payload      []byte
}

type CoachingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*coaching.Coaching, error)
}

type WorkingHourRepository interface {
	// FindRule returns KindNotFound when no rule exists for the weekday.
	FindRule(ctx context.Context, coachingID uuid.UUID, weekday time.Weekday) (*schedule.WorkingHourRule, error)
}

type BusyIntervalRepository interface {
	ListForRange(ctx context.Context, instructorID uuid.UUID, from, to time.Time) ([]schedule.Interval, error)
	// Replace swaps the instructor's cached set wholesale and records the
	// sync status in the same transaction.
	Replace(ctx context.Context, instructorID uuid.UUID, entries []BusyEntry, syncedAt time.Time, degraded bool, failedCalendarIDs []string) error
}

type SyncStatusRepository interface {
	Find(ctx context.Context, instructorID uuid.UUID) (*SyncStatus, error)
}

type ReservationRepository interface {
	// Create returns KindDuplicateKey when the confirmed-slot unique index
	// rejects the insert.
	Create(ctx context.Context, res *reservation.Reservation) error
	FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	FindConfirmedByIdempotencyKey(ctx context.Context, key string) (*reservation.Reservation, error)
	ListConfirmedIntervals(ctx context.Context, coachingID, instructorID uuid.UUID, from, to time.Time) ([]schedule.Interval, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*reservation.Reservation, error)
	// MarkCancelled flips confirmed to cancelled; false means it was not
	// confirmed (already cancelled), which callers treat as a no-op.
	MarkCancelled(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	SetAttendance(ctx context.Context, id uuid.UUID, attendance reservation.Attendance, now time.Time) error
}

type CreditRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CreditSnapshot, error)
	// DeductOne decrements iff remaining_sessions > 0 and the package has
	// not expired; false means a concurrent booking won the race.
	DeductOne(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	RefundOne(ctx context.Context, id uuid.UUID) error
}

type LeaseRepository interface {
	// Acquire takes the per-instructor sync lease for ttl; false when a
	// live lease is held by someone else.
	Acquire(ctx context.Context, instructorID uuid.UUID, holderToken string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, instructorID uuid.UUID, holderToken string) error
}

type AttemptRepository interface {
	Create(ctx context.Context, attempt *BookingAttempt) error
	Update(ctx context.Context, attempt *BookingAttempt) error
	// ListStuck returns attempts still in a non-terminal state whose last
	// update is older than the cutoff.
	ListStuck(ctx context.Context, updatedBefore time.Time) ([]*BookingAttempt, error)
}

type SettingsRepository interface {
	FindByInstructor(ctx context.Context, instructorID uuid.UUID) (*SettingsSnapshot, error)
	// ListInstructorIDs feeds the periodic sync; only instructors with at
	// least one linked calendar are returned.
	ListInstructorIDs(ctx context.Context) ([]uuid.UUID, error)
}

type AuditLogRepository interface {
	// Insert appends the event; false means the event id was already
	// recorded (replay).
	Insert(ctx context.Context, entry AuditEntry) (bool, error)
}

type EventParams struct {
	Title    string
	Start    time.Time
	End      time.Time
	TimeZone string
}

type CalendarEvent struct {
	ID       string
	MeetLink string
	HTMLLink string
}

// CalendarGateway is the external calendar provider boundary. Loosely-typed
// provider payloads are parsed into schedule.Interval at this boundary and
// never leak inward.
type CalendarGateway interface {
	FreeBusy(ctx context.Context, instructorID uuid.UUID, calendarID string, from, to time.Time) ([]schedule.Interval, error)
	CreateEvent(ctx context.Context, instructorID uuid.UUID, calendarID string, params EventParams) (*CalendarEvent, error)
	// DeleteEvent is idempotent: deleting an already-deleted event succeeds.
	DeleteEvent(ctx context.Context, instructorID uuid.UUID, calendarID, eventID string) error
}
