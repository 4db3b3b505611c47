package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidClockTime = errors.New("invalid clock time")
	ErrInvalidRuleRange = errors.New("rule start must be before rule end")
)

// MinuteOfDay is a wall-clock time expressed as minutes since midnight,
// interpreted in the coaching's time zone.
type MinuteOfDay int

func ParseMinuteOfDay(s string) (MinuteOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, ErrInvalidClockTime
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, ErrInvalidClockTime
	}
	return MinuteOfDay(h*60 + m), nil
}

func (m MinuteOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// At anchors the minute-of-day onto a calendar date in loc.
func (m MinuteOfDay) At(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, int(m)/60, int(m)%60, 0, 0, loc)
}

// WorkingHourRule is the recurring candidate window for one weekday.
// Instructor-owned, last-write-wins, read-only to the engine.
type WorkingHourRule struct {
	CoachingID uuid.UUID
	Weekday    time.Weekday
	Enabled    bool
	Start      MinuteOfDay
	End        MinuteOfDay
}

func NewWorkingHourRule(coachingID uuid.UUID, weekday time.Weekday, enabled bool, start, end MinuteOfDay) (WorkingHourRule, error) {
	if start >= end {
		return WorkingHourRule{}, ErrInvalidRuleRange
	}
	return WorkingHourRule{
		CoachingID: coachingID,
		Weekday:    weekday,
		Enabled:    enabled,
		Start:      start,
		End:        end,
	}, nil
}
