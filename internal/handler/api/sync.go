package api

import (
	"errors"
	"net/http"

	resdto "coachbook/internal/handler/dto/response"
	"coachbook/internal/handler/httperr"
	"coachbook/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SyncHandler struct {
	syncUseCase usecase.CalendarSyncUseCase
}

func NewSyncHandler(syncUseCase usecase.CalendarSyncUseCase) *SyncHandler {
	return &SyncHandler{
		syncUseCase: syncUseCase,
	}
}

func (h *SyncHandler) TriggerSync(c *gin.Context) {
	instructorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidationError, "Invalid instructor id")
		return
	}

	result, err := h.syncUseCase.Sync(c.Request.Context(), instructorID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInstructorNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, httperr.CodeNotFound, "Instructor not found")
		case errors.Is(err, usecase.ErrSyncInFlight):
			httperr.AbortWithError(c, http.StatusConflict, err, httperr.CodeValidationError, "Sync already in progress")
		case errors.Is(err, usecase.ErrAllCalendarsFailed):
			httperr.AbortWithError(c, http.StatusBadGateway, err, httperr.CodeCalendarError, "All linked calendars failed to sync")
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, httperr.CodeInternalError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromSyncResult(result))
}
