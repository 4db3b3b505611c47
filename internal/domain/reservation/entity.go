package reservation

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidTimeRange    = errors.New("reservation start must be before end")
	ErrEmptyIdempotencyKey = errors.New("idempotency key is required")
	ErrAlreadyCancelled    = errors.New("reservation is already cancelled")
	ErrInvalidAttendance   = errors.New("invalid attendance value")
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

type Attendance string

const (
	AttendanceNone     Attendance = "none"
	AttendanceAttended Attendance = "attended"
	AttendanceAbsent   Attendance = "absent"
	AttendanceLate     Attendance = "late"
)

func ParseAttendance(s string) (Attendance, error) {
	switch Attendance(s) {
	case AttendanceNone, AttendanceAttended, AttendanceAbsent, AttendanceLate:
		return Attendance(s), nil
	}
	return "", ErrInvalidAttendance
}

// Reservation is a row in the authoritative ledger. Created only by the
// booking coordinator; terminated only by a status transition, never deleted.
type Reservation struct {
	id              uuid.UUID
	coachingID      uuid.UUID
	instructorID    uuid.UUID
	studentID       uuid.UUID
	start           time.Time
	end             time.Time
	status          Status
	attendance      Attendance
	externalEventID string
	meetLink        string
	creditID        uuid.UUID
	idempotencyKey  string
	createdAt       time.Time
	updatedAt       time.Time
}

type NewReservationParams struct {
	CoachingID      uuid.UUID
	InstructorID    uuid.UUID
	StudentID       uuid.UUID
	Start           time.Time
	End             time.Time
	ExternalEventID string
	MeetLink        string
	CreditID        uuid.UUID
	IdempotencyKey  string
}

func NewReservation(p NewReservationParams) (*Reservation, error) {
	if !p.Start.Before(p.End) {
		return nil, ErrInvalidTimeRange
	}
	if p.IdempotencyKey == "" {
		return nil, ErrEmptyIdempotencyKey
	}
	return &Reservation{
		id:              uuid.New(),
		coachingID:      p.CoachingID,
		instructorID:    p.InstructorID,
		studentID:       p.StudentID,
		start:           p.Start,
		end:             p.End,
		status:          StatusConfirmed,
		attendance:      AttendanceNone,
		externalEventID: p.ExternalEventID,
		meetLink:        p.MeetLink,
		creditID:        p.CreditID,
		idempotencyKey:  p.IdempotencyKey,
	}, nil
}

func Reconstruct(
	id, coachingID, instructorID, studentID uuid.UUID,
	start, end time.Time,
	status Status,
	attendance Attendance,
	externalEventID, meetLink string,
	creditID uuid.UUID,
	idempotencyKey string,
	createdAt, updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:              id,
		coachingID:      coachingID,
		instructorID:    instructorID,
		studentID:       studentID,
		start:           start,
		end:             end,
		status:          status,
		attendance:      attendance,
		externalEventID: externalEventID,
		meetLink:        meetLink,
		creditID:        creditID,
		idempotencyKey:  idempotencyKey,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

func (r *Reservation) IsConfirmed() bool { return r.status == StatusConfirmed }
func (r *Reservation) IsCancelled() bool { return r.status == StatusCancelled }

// WasAttended reports whether attendance has been marked as held in any form.
func (r *Reservation) WasAttended() bool {
	return r.attendance == AttendanceAttended || r.attendance == AttendanceLate
}

func (r *Reservation) ID() uuid.UUID           { return r.id }
func (r *Reservation) CoachingID() uuid.UUID   { return r.coachingID }
func (r *Reservation) InstructorID() uuid.UUID { return r.instructorID }
func (r *Reservation) StudentID() uuid.UUID    { return r.studentID }
func (r *Reservation) Start() time.Time        { return r.start }
func (r *Reservation) End() time.Time          { return r.end }
func (r *Reservation) Status() Status          { return r.status }
func (r *Reservation) Attendance() Attendance  { return r.attendance }
func (r *Reservation) ExternalEventID() string { return r.externalEventID }
func (r *Reservation) MeetLink() string        { return r.meetLink }
func (r *Reservation) CreditID() uuid.UUID     { return r.creditID }
func (r *Reservation) IdempotencyKey() string  { return r.idempotencyKey }
func (r *Reservation) CreatedAt() time.Time    { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time    { return r.updatedAt }
