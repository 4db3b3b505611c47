package response

import (
	"time"

	"coachbook/internal/domain/reservation"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type BookingResponse struct {
	ID              uuid.UUID `json:"id"`
	CoachingID      uuid.UUID `json:"coachingId"`
	InstructorID    uuid.UUID `json:"instructorId"`
	StudentID       uuid.UUID `json:"studentId"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	Status          string    `json:"status"`
	Attendance      string    `json:"attendance"`
	MeetLink        string    `json:"meetLink,omitempty"`
	ExternalEventID string    `json:"externalEventId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// FromReservation maps entity accessors onto the response by name. The
// typed enums do not convert implicitly and are set by hand.
func FromReservation(res *reservation.Reservation) *BookingResponse {
	var resp BookingResponse
	_ = copier.Copy(&resp, res)
	resp.Status = string(res.Status())
	resp.Attendance = string(res.Attendance())
	return &resp
}

type BookingListResponse struct {
	Bookings []*BookingResponse `json:"bookings"`
}

func FromReservations(list []*reservation.Reservation) *BookingListResponse {
	bookings := make([]*BookingResponse, len(list))
	for i, res := range list {
		bookings[i] = FromReservation(res)
	}
	return &BookingListResponse{Bookings: bookings}
}

type CancelResponse struct {
	ID       uuid.UUID `json:"id"`
	Status   string    `json:"status"`
	Refunded bool      `json:"refunded"`
}
