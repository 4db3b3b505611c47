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

type AvailabilityHandler struct {
	availabilityUseCase usecase.AvailabilityUseCase
}

func NewAvailabilityHandler(availabilityUseCase usecase.AvailabilityUseCase) *AvailabilityHandler {
	return &AvailabilityHandler{
		availabilityUseCase: availabilityUseCase,
	}
}

func (h *AvailabilityHandler) GetSlots(c *gin.Context) {
	coachingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidationError, "Invalid coaching id")
		return
	}

	date := c.Query("date")
	if date == "" {
		httperr.AbortWithError(c, http.StatusBadRequest, usecase.ErrInvalidDate, httperr.CodeValidationError, "date query parameter is required")
		return
	}

	slots, err := h.availabilityUseCase.Slots(c.Request.Context(), coachingID, date)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrCoachingNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, httperr.CodeNotFound, "Coaching not found")
		case errors.Is(err, usecase.ErrCoachingInactive):
			httperr.AbortWithError(c, http.StatusNotFound, err, httperr.CodeNotFound, "Coaching is not active")
		case errors.Is(err, usecase.ErrInvalidDate):
			httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidationError, "Invalid date format, expected YYYY-MM-DD")
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, httperr.CodeInternalError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, resdto.FromSlotViews(date, slots))
}
