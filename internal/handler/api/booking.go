package api

import (
	"errors"
	"net/http"
	"strings"

	reqdto "coachbook/internal/handler/dto/request"
	resdto "coachbook/internal/handler/dto/response"
	"coachbook/internal/handler/httperr"
	"coachbook/internal/handler/middleware"
	"coachbook/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	bookingUseCase usecase.BookingUseCase
}

func NewBookingHandler(bookingUseCase usecase.BookingUseCase) *BookingHandler {
	return &BookingHandler{
		bookingUseCase: bookingUseCase,
	}
}

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errors.New("missing user context"), httperr.CodeInternalError, "Internal server error")
		return
	}

	idempotencyKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if idempotencyKey == "" {
		httperr.AbortWithError(c, http.StatusBadRequest, errors.New("missing idempotency key"), httperr.CodeValidationError, "Idempotency-Key header is required")
		return
	}

	var req reqdto.CreateBookingRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, httperr.CodeValidationError, "Invalid request format")
		return
	}

	result, err := h.bookingUseCase.Book(c.Request.Context(), usecase.BookCommand{
		CoachingID:     req.CoachingID,
		StudentID:      userID,
		CreditID:       req.PackageID,
		Start:          req.Start,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		h.abortBookingError(c, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, resdto.FromReservation(result.Reservation))
}

func (h *BookingHandler) abortBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrCoachingNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, httperr.CodeNotFound, "Coaching not found")
	case errors.Is(err, usecase.ErrCoachingInactive):
		httperr.AbortWithError(c, http.StatusNotFound, err, httperr.CodeNotFound, "Coaching is not active")
	case errors.Is(err, usecase.ErrSlotTaken):
		httperr.AbortWithError(c, http.StatusConflict, err, httperr.CodeSlotTaken, "Slot is no longer available")
	case errors.Is(err, usecase.ErrNeverSynced):
		httperr.AbortWithError(c, http.StatusConflict, err, httperr.CodeNeverSynced, "Instructor calendar has not been synced yet")
	case errors.Is(err, usecase.ErrInsufficientCredit):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, httperr.CodeInsufficientCredit, "No remaining sessions on credit package")
	case errors.Is(err, usecase.ErrCreditExpired):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, httperr.CodeCreditExpired, "Credit package has expired")
	case errors.Is(err, usecase.ErrCreditNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, httperr.CodeNotFound, "Credit package not found")
	case errors.Is(err, usecase.ErrCreditMismatch):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, httperr.CodeValidationError, "Credit package does not cover this coaching")
	case errors.Is(err, usecase.ErrCalendarFailure):
		httperr.AbortWithError(c, http.StatusBadGateway, err, httperr.CodeCalendarError, "External calendar rejected the booking")
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, httperr.CodeInternalError, "Internal server error")
	}
}

func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errors.New("missing user context"), httperr.CodeInternalError, "Internal server error")
		return
	}
	role, _ := middleware.GetUserRole(c)

	reservationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidationError, "Invalid reservation id")
		return
	}

	result, err := h.bookingUseCase.Cancel(c.Request.Context(), reservationID, usecase.Actor{UserID: userID, Role: role})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrReservationNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, httperr.CodeNotFound, "Reservation not found")
		case errors.Is(err, usecase.ErrCancelForbidden):
			httperr.AbortWithError(c, http.StatusForbidden, err, httperr.CodeValidationError, "Cannot cancel another student's reservation")
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, httperr.CodeInternalError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusOK, resdto.CancelResponse{
		ID:       result.Reservation.ID(),
		Status:   "cancelled",
		Refunded: result.Refunded,
	})
}

func (h *BookingHandler) ListBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusInternalServerError, errors.New("missing user context"), httperr.CodeInternalError, "Internal server error")
		return
	}

	studentID := userID
	if raw := c.Query("studentId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidationError, "Invalid student id")
			return
		}
		if role, _ := middleware.GetUserRole(c); role != usecase.RoleInstructor && role != usecase.RoleAdmin && parsed != userID {
			httperr.AbortWithError(c, http.StatusForbidden, errors.New("cross-student listing forbidden"), httperr.CodeValidationError, "Cannot list another student's bookings")
			return
		}
		studentID = parsed
	}

	list, err := h.bookingUseCase.ListByStudent(c.Request.Context(), studentID)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, httperr.CodeInternalError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, resdto.FromReservations(list))
}
