package api

import (
	"errors"
	"io"
	"net/http"

	"coachbook/internal/handler/httperr"
	"coachbook/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const signatureHeader = "X-Webhook-Signature"

type WebhookHandler struct {
	webhookUseCase usecase.WebhookUseCase
}

func NewWebhookHandler(webhookUseCase usecase.WebhookUseCase) *WebhookHandler {
	return &WebhookHandler{
		webhookUseCase: webhookUseCase,
	}
}

func (h *WebhookHandler) Receive(c *gin.Context) {
	instructorID, err := uuid.Parse(c.Query("instructorId"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidationError, "instructorId query parameter is required")
		return
	}

	signature := c.GetHeader(signatureHeader)
	if signature == "" {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing signature header"), httperr.CodeSignatureError, "Signature header is required")
		return
	}

	// The signature covers the raw bytes; bind after verification only.
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidationError, "Failed to read request body")
		return
	}

	result, err := h.webhookUseCase.Ingest(c.Request.Context(), instructorID, body, signature)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInstructorNotFound):
			httperr.AbortWithError(c, http.StatusNotFound, err, httperr.CodeNotFound, "Instructor not found")
		case errors.Is(err, usecase.ErrInvalidSignature):
			httperr.AbortWithError(c, http.StatusUnauthorized, err, httperr.CodeSignatureError, "Signature verification failed")
		case errors.Is(err, usecase.ErrMalformedPayload):
			httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidationError, "Malformed webhook payload")
		case errors.Is(err, usecase.ErrUnknownEvent):
			httperr.AbortWithError(c, http.StatusBadRequest, err, httperr.CodeValidationError, "Unknown event type")
		default:
			httperr.AbortWithError(c, http.StatusInternalServerError, err, httperr.CodeInternalError, "Internal server error")
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"received": true,
		"event":    result.EventType,
		"replayed": result.Replayed,
	})
}
