//go:build unit

package usecase_test

import (
	"context"
	"sync"
	"time"

	"coachbook/internal/domain/coaching"
	"coachbook/internal/domain/reservation"
	"coachbook/internal/domain/schedule"
	"coachbook/internal/infra"
	"coachbook/internal/usecase"

	"github.com/google/uuid"
)

// Function-field fakes keep each test's behavior next to its assertions.
// Unset fields fail loudly through the zero return values.

func notFound(msg string) error {
	return infra.WrapRepoErr(msg, nil, infra.KindNotFound)
}

func duplicateKey(msg string) error {
	return infra.WrapRepoErr(msg, nil, infra.KindDuplicateKey)
}

type fakeCoachingRepo struct {
	findByID func(ctx context.Context, id uuid.UUID) (*coaching.Coaching, error)
}

func (f *fakeCoachingRepo) FindByID(ctx context.Context, id uuid.UUID) (*coaching.Coaching, error) {
	if f.findByID == nil {
		return nil, notFound("coaching not found")
	}
	return f.findByID(ctx, id)
}

type fakeWorkingHourRepo struct {
	findRule func(ctx context.Context, coachingID uuid.UUID, weekday time.Weekday) (*schedule.WorkingHourRule, error)
}

func (f *fakeWorkingHourRepo) FindRule(ctx context.Context, coachingID uuid.UUID, weekday time.Weekday) (*schedule.WorkingHourRule, error) {
	if f.findRule == nil {
		return nil, notFound("working hour rule not found")
	}
	return f.findRule(ctx, coachingID, weekday)
}

type fakeBusyRepo struct {
	listForRange func(ctx context.Context, instructorID uuid.UUID, from, to time.Time) ([]schedule.Interval, error)

	mu       sync.Mutex
	replaced []replaceCall
}

type replaceCall struct {
	instructorID uuid.UUID
	entries      []usecase.BusyEntry
	syncedAt     time.Time
	degraded     bool
	failed       []string
}

func (f *fakeBusyRepo) ListForRange(ctx context.Context, instructorID uuid.UUID, from, to time.Time) ([]schedule.Interval, error) {
	if f.listForRange == nil {
		return nil, nil
	}
	return f.listForRange(ctx, instructorID, from, to)
}

func (f *fakeBusyRepo) Replace(_ context.Context, instructorID uuid.UUID, entries []usecase.BusyEntry, syncedAt time.Time, degraded bool, failedCalendarIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replaced = append(f.replaced, replaceCall{
		instructorID: instructorID,
		entries:      entries,
		syncedAt:     syncedAt,
		degraded:     degraded,
		failed:       failedCalendarIDs,
	})
	return nil
}

func (f *fakeBusyRepo) replaceCalls() []replaceCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]replaceCall(nil), f.replaced...)
}

type fakeSyncStatusRepo struct {
	find func(ctx context.Context, instructorID uuid.UUID) (*usecase.SyncStatus, error)
}

func (f *fakeSyncStatusRepo) Find(ctx context.Context, instructorID uuid.UUID) (*usecase.SyncStatus, error) {
	if f.find == nil {
		return nil, notFound("sync status not found")
	}
	return f.find(ctx, instructorID)
}

type fakeReservationRepo struct {
	create             func(ctx context.Context, res *reservation.Reservation) error
	findByID           func(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error)
	findByKey          func(ctx context.Context, key string) (*reservation.Reservation, error)
	listIntervals      func(ctx context.Context, coachingID, instructorID uuid.UUID, from, to time.Time) ([]schedule.Interval, error)
	listByStudent      func(ctx context.Context, studentID uuid.UUID) ([]*reservation.Reservation, error)
	markCancelled      func(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	setAttendance      func(ctx context.Context, id uuid.UUID, attendance reservation.Attendance, now time.Time) error
	attendanceRecorded []reservation.Attendance
}

func (f *fakeReservationRepo) Create(ctx context.Context, res *reservation.Reservation) error {
	if f.create == nil {
		return nil
	}
	return f.create(ctx, res)
}

func (f *fakeReservationRepo) FindByID(ctx context.Context, id uuid.UUID) (*reservation.Reservation, error) {
	if f.findByID == nil {
		return nil, notFound("reservation not found")
	}
	return f.findByID(ctx, id)
}

func (f *fakeReservationRepo) FindConfirmedByIdempotencyKey(ctx context.Context, key string) (*reservation.Reservation, error) {
	if f.findByKey == nil {
		return nil, notFound("no confirmed reservation for key")
	}
	return f.findByKey(ctx, key)
}

func (f *fakeReservationRepo) ListConfirmedIntervals(ctx context.Context, coachingID, instructorID uuid.UUID, from, to time.Time) ([]schedule.Interval, error) {
	if f.listIntervals == nil {
		return nil, nil
	}
	return f.listIntervals(ctx, coachingID, instructorID, from, to)
}

func (f *fakeReservationRepo) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*reservation.Reservation, error) {
	if f.listByStudent == nil {
		return nil, nil
	}
	return f.listByStudent(ctx, studentID)
}

func (f *fakeReservationRepo) MarkCancelled(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	if f.markCancelled == nil {
		return false, notFound("reservation not found")
	}
	return f.markCancelled(ctx, id, now)
}

func (f *fakeReservationRepo) SetAttendance(ctx context.Context, id uuid.UUID, attendance reservation.Attendance, now time.Time) error {
	f.attendanceRecorded = append(f.attendanceRecorded, attendance)
	if f.setAttendance == nil {
		return nil
	}
	return f.setAttendance(ctx, id, attendance, now)
}

type fakeCreditRepo struct {
	findByID  func(ctx context.Context, id uuid.UUID) (*usecase.CreditSnapshot, error)
	deductOne func(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	refundOne func(ctx context.Context, id uuid.UUID) error

	mu      sync.Mutex
	deducts int
	refunds int
}

func (f *fakeCreditRepo) FindByID(ctx context.Context, id uuid.UUID) (*usecase.CreditSnapshot, error) {
	if f.findByID == nil {
		return nil, notFound("credit package not found")
	}
	return f.findByID(ctx, id)
}

func (f *fakeCreditRepo) DeductOne(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	f.mu.Lock()
	f.deducts++
	f.mu.Unlock()
	if f.deductOne == nil {
		return true, nil
	}
	return f.deductOne(ctx, id, now)
}

func (f *fakeCreditRepo) RefundOne(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	f.refunds++
	f.mu.Unlock()
	if f.refundOne == nil {
		return nil
	}
	return f.refundOne(ctx, id)
}

func (f *fakeCreditRepo) refundCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refunds
}

type fakeLeaseRepo struct {
	acquire func(ctx context.Context, instructorID uuid.UUID, holderToken string, ttl time.Duration) (bool, error)

	mu       sync.Mutex
	released int
}

func (f *fakeLeaseRepo) Acquire(ctx context.Context, instructorID uuid.UUID, holderToken string, ttl time.Duration) (bool, error) {
	if f.acquire == nil {
		return true, nil
	}
	return f.acquire(ctx, instructorID, holderToken, ttl)
}

func (f *fakeLeaseRepo) Release(_ context.Context, _ uuid.UUID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released++
	return nil
}

func (f *fakeLeaseRepo) releaseCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.released
}

type fakeAttemptRepo struct {
	mu        sync.Mutex
	created   []*usecase.BookingAttempt
	states    []usecase.AttemptState
	listStuck func(ctx context.Context, updatedBefore time.Time) ([]*usecase.BookingAttempt, error)
}

func (f *fakeAttemptRepo) Create(_ context.Context, attempt *usecase.BookingAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, attempt)
	f.states = append(f.states, attempt.State)
	return nil
}

func (f *fakeAttemptRepo) Update(_ context.Context, attempt *usecase.BookingAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, attempt.State)
	return nil
}

func (f *fakeAttemptRepo) ListStuck(ctx context.Context, updatedBefore time.Time) ([]*usecase.BookingAttempt, error) {
	if f.listStuck == nil {
		return nil, nil
	}
	return f.listStuck(ctx, updatedBefore)
}

func (f *fakeAttemptRepo) stateTrail() []usecase.AttemptState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]usecase.AttemptState(nil), f.states...)
}

type fakeSettingsRepo struct {
	findByInstructor func(ctx context.Context, instructorID uuid.UUID) (*usecase.SettingsSnapshot, error)
	listIDs          func(ctx context.Context) ([]uuid.UUID, error)
}

func (f *fakeSettingsRepo) FindByInstructor(ctx context.Context, instructorID uuid.UUID) (*usecase.SettingsSnapshot, error) {
	if f.findByInstructor == nil {
		return nil, notFound("instructor settings not found")
	}
	return f.findByInstructor(ctx, instructorID)
}

func (f *fakeSettingsRepo) ListInstructorIDs(ctx context.Context) ([]uuid.UUID, error) {
	if f.listIDs == nil {
		return nil, nil
	}
	return f.listIDs(ctx)
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []usecase.AuditEntry
	replay  bool
	err     error
}

func (f *fakeAuditRepo) Insert(_ context.Context, entry usecase.AuditEntry) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replay {
		return false, nil
	}
	f.entries = append(f.entries, entry)
	return true, nil
}

type fakeGateway struct {
	freeBusy    func(ctx context.Context, instructorID uuid.UUID, calendarID string, from, to time.Time) ([]schedule.Interval, error)
	createEvent func(ctx context.Context, instructorID uuid.UUID, calendarID string, params usecase.EventParams) (*usecase.CalendarEvent, error)
	deleteEvent func(ctx context.Context, instructorID uuid.UUID, calendarID, eventID string) error

	mu      sync.Mutex
	deleted []string
}

func (f *fakeGateway) FreeBusy(ctx context.Context, instructorID uuid.UUID, calendarID string, from, to time.Time) ([]schedule.Interval, error) {
	if f.freeBusy == nil {
		return nil, nil
	}
	return f.freeBusy(ctx, instructorID, calendarID, from, to)
}

func (f *fakeGateway) CreateEvent(ctx context.Context, instructorID uuid.UUID, calendarID string, params usecase.EventParams) (*usecase.CalendarEvent, error) {
	if f.createEvent == nil {
		return &usecase.CalendarEvent{ID: "evt_fake", MeetLink: "https://meet.google.com/fake"}, nil
	}
	return f.createEvent(ctx, instructorID, calendarID, params)
}

func (f *fakeGateway) DeleteEvent(ctx context.Context, instructorID uuid.UUID, calendarID, eventID string) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, eventID)
	f.mu.Unlock()
	if f.deleteEvent == nil {
		return nil
	}
	return f.deleteEvent(ctx, instructorID, calendarID, eventID)
}

func (f *fakeGateway) deletedEvents() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

type fakeScheduler struct {
	mu    sync.Mutex
	calls []uuid.UUID
}

func (f *fakeScheduler) ScheduleRefresh(instructorID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, instructorID)
}

func (f *fakeScheduler) refreshCalls() []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uuid.UUID(nil), f.calls...)
}
