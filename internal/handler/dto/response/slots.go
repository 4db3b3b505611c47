package response

import (
	"time"

	"coachbook/internal/usecase"
)

type SlotResponse struct {
	Start     time.Time `json:"start"`
	Available bool      `json:"available"`
}

type SlotListResponse struct {
	Date  string         `json:"date"`
	Slots []SlotResponse `json:"slots"`
}

func FromSlotViews(date string, views []usecase.SlotView) *SlotListResponse {
	slots := make([]SlotResponse, len(views))
	for i, v := range views {
		slots[i] = SlotResponse{Start: v.Start, Available: v.Available}
	}
	return &SlotListResponse{Date: date, Slots: slots}
}
