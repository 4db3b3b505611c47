package request

import (
	"time"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	CoachingID uuid.UUID `json:"coachingId" binding:"required"`
	PackageID  uuid.UUID `json:"packageId" binding:"required"`
	Start      time.Time `json:"start" binding:"required"`
}
