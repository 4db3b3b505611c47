package credit

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrExhausted = errors.New("no remaining sessions")
	ErrExpired   = errors.New("credit package expired")
)

// PackageCredit is a purchased quota of bookable sessions. The engine never
// sets remaining_sessions directly; it only requests a conditional decrement
// (booking) or an increment (refund on cancel).
type PackageCredit struct {
	id                uuid.UUID
	studentID         uuid.UUID
	coachingID        uuid.UUID
	remainingSessions int
	expiresAt         *time.Time
}

func Reconstruct(id, studentID, coachingID uuid.UUID, remainingSessions int, expiresAt *time.Time) *PackageCredit {
	return &PackageCredit{
		id:                id,
		studentID:         studentID,
		coachingID:        coachingID,
		remainingSessions: remainingSessions,
		expiresAt:         expiresAt,
	}
}

func (c *PackageCredit) IsExpired(now time.Time) bool {
	return c.expiresAt != nil && now.After(*c.expiresAt)
}

// Usable is the pre-flight check before the coordinator mutates anything.
// The authoritative guard is the conditional decrement in storage; this only
// rejects obviously doomed attempts early.
func (c *PackageCredit) Usable(now time.Time) error {
	if c.IsExpired(now) {
		return ErrExpired
	}
	if c.remainingSessions <= 0 {
		return ErrExhausted
	}
	return nil
}

func (c *PackageCredit) ID() uuid.UUID          { return c.id }
func (c *PackageCredit) StudentID() uuid.UUID   { return c.studentID }
func (c *PackageCredit) CoachingID() uuid.UUID  { return c.coachingID }
func (c *PackageCredit) RemainingSessions() int { return c.remainingSessions }
func (c *PackageCredit) ExpiresAt() *time.Time  { return c.expiresAt }
