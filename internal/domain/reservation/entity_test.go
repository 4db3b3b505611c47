//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"coachbook/internal/domain/reservation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validParams() reservation.NewReservationParams {
	start := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	return reservation.NewReservationParams{
		CoachingID:      uuid.New(),
		InstructorID:    uuid.New(),
		StudentID:       uuid.New(),
		Start:           start,
		End:             start.Add(time.Hour),
		ExternalEventID: "evt_123",
		MeetLink:        "https://meet.google.com/abc-defg-hij",
		CreditID:        uuid.New(),
		IdempotencyKey:  "key-1",
	}
}

func TestNewReservation(t *testing.T) {
	t.Run("confirmed with no attendance on creation", func(t *testing.T) {
		res, err := reservation.NewReservation(validParams())
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, res.ID())
		assert.Equal(t, reservation.StatusConfirmed, res.Status())
		assert.Equal(t, reservation.AttendanceNone, res.Attendance())
		assert.True(t, res.IsConfirmed())
		assert.False(t, res.WasAttended())
	})

	t.Run("start must precede end", func(t *testing.T) {
		p := validParams()
		p.End = p.Start
		_, err := reservation.NewReservation(p)
		assert.ErrorIs(t, err, reservation.ErrInvalidTimeRange)
	})

	t.Run("idempotency key is required", func(t *testing.T) {
		p := validParams()
		p.IdempotencyKey = ""
		_, err := reservation.NewReservation(p)
		assert.ErrorIs(t, err, reservation.ErrEmptyIdempotencyKey)
	})
}

func TestParseAttendance(t *testing.T) {
	for _, valid := range []string{"none", "attended", "absent", "late"} {
		got, err := reservation.ParseAttendance(valid)
		require.NoError(t, err)
		assert.Equal(t, reservation.Attendance(valid), got)
	}

	_, err := reservation.ParseAttendance("present")
	assert.ErrorIs(t, err, reservation.ErrInvalidAttendance)
}

func TestWasAttended(t *testing.T) {
	p := validParams()
	now := time.Now()

	build := func(att reservation.Attendance) *reservation.Reservation {
		return reservation.Reconstruct(
			uuid.New(), p.CoachingID, p.InstructorID, p.StudentID,
			p.Start, p.End,
			reservation.StatusConfirmed, att,
			p.ExternalEventID, p.MeetLink, p.CreditID, p.IdempotencyKey,
			now, now,
		)
	}

	assert.True(t, build(reservation.AttendanceAttended).WasAttended())
	assert.True(t, build(reservation.AttendanceLate).WasAttended())
	assert.False(t, build(reservation.AttendanceAbsent).WasAttended())
	assert.False(t, build(reservation.AttendanceNone).WasAttended())
}
