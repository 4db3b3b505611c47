package httperr

import (
	"github.com/gin-gonic/gin"
)

// Stable machine-readable error codes. Clients branch on Code; Message is
// for humans and may change.
const (
	CodeSlotTaken          = "SLOT_TAKEN"
	CodeInsufficientCredit = "INSUFFICIENT_CREDIT"
	CodeCreditExpired      = "CREDIT_EXPIRED"
	CodeCalendarError      = "CALENDAR_ERROR"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeSignatureError     = "SIGNATURE_ERROR"
	CodeNeverSynced        = "NEVER_SYNCED"
	CodeNotFound           = "NOT_FOUND"
	CodeInternalError      = "INTERNAL_ERROR"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, code, msg string) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Code = code
	resp.Error.Message = msg

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}
