package response

import (
	"time"

	"coachbook/internal/usecase"
)

type SyncResponse struct {
	SyncedCount       int       `json:"syncedCount"`
	FailedCalendarIDs []string  `json:"failedCalendarIds,omitempty"`
	LastSynced        time.Time `json:"lastSynced"`
	Degraded          bool      `json:"degraded"`
}

func FromSyncResult(result *usecase.SyncResult) *SyncResponse {
	return &SyncResponse{
		SyncedCount:       result.SyncedCount,
		FailedCalendarIDs: result.FailedCalendarIDs,
		LastSynced:        result.LastSynced,
		Degraded:          result.Degraded,
	}
}
