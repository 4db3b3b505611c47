//go:build unit

package coaching_test

import (
	"testing"
	"time"

	"coachbook/internal/domain/coaching"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCoaching(t *testing.T) {
	t.Run("valid coaching", func(t *testing.T) {
		id, instructorID := uuid.New(), uuid.New()
		co, err := coaching.New(id, instructorID, "Morning Coaching", time.Hour, "Asia/Tokyo", true)
		require.NoError(t, err)
		assert.Equal(t, id, co.ID())
		assert.Equal(t, instructorID, co.InstructorID())
		assert.Equal(t, "Morning Coaching", co.Title())
		assert.Equal(t, time.Hour, co.Duration())
		assert.Equal(t, "Asia/Tokyo", co.TimeZone())
		assert.True(t, co.IsActive())
	})

	t.Run("non-positive duration", func(t *testing.T) {
		_, err := coaching.New(uuid.New(), uuid.New(), "Coaching", 0, "UTC", true)
		assert.ErrorIs(t, err, coaching.ErrInvalidDuration)
	})

	t.Run("unknown time zone", func(t *testing.T) {
		_, err := coaching.New(uuid.New(), uuid.New(), "Coaching", time.Hour, "Mars/Olympus", true)
		assert.ErrorIs(t, err, coaching.ErrUnknownTimeZone)
	})
}

func TestCoachingLocation(t *testing.T) {
	co, err := coaching.New(uuid.New(), uuid.New(), "Coaching", time.Hour, "Asia/Tokyo", true)
	require.NoError(t, err)

	loc := co.Location()
	require.NotNil(t, loc)
	assert.Equal(t, "Asia/Tokyo", loc.String())
}
