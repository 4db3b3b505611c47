package coaching

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidDuration = errors.New("session duration must be positive")
	ErrUnknownTimeZone = errors.New("unknown coaching time zone")
)

// Coaching is a bookable offering with a fixed session duration. All slot
// arithmetic happens in its time zone, never the caller's locale.
type Coaching struct {
	id           uuid.UUID
	instructorID uuid.UUID
	title        string
	duration     time.Duration
	timeZone     string
	active       bool
}

func New(id, instructorID uuid.UUID, title string, duration time.Duration, timeZone string, active bool) (*Coaching, error) {
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}
	if _, err := time.LoadLocation(timeZone); err != nil {
		return nil, ErrUnknownTimeZone
	}
	return &Coaching{
		id:           id,
		instructorID: instructorID,
		title:        title,
		duration:     duration,
		timeZone:     timeZone,
		active:       active,
	}, nil
}

func (c *Coaching) ID() uuid.UUID           { return c.id }
func (c *Coaching) InstructorID() uuid.UUID { return c.instructorID }
func (c *Coaching) Title() string           { return c.title }
func (c *Coaching) Duration() time.Duration { return c.duration }
func (c *Coaching) TimeZone() string        { return c.timeZone }
func (c *Coaching) IsActive() bool          { return c.active }

func (c *Coaching) Location() *time.Location {
	loc, err := time.LoadLocation(c.timeZone)
	if err != nil {
		// Rejected at construction; a bad zone here means corrupted storage.
		return time.UTC
	}
	return loc
}
