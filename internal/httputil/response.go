// Package httputil shapes every API response: a success envelope, an error
// envelope with a stable machine code, and the pagination block.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/nippoworks/api-nippo/internal/authz"
)

// Error codes shared across handlers. Denial reasons from the authz package
// are passed through as-is.
const (
	CodeUnauthenticated       = "UNAUTHENTICATED"
	CodeValidationError       = "VALIDATION_ERROR"
	CodeManagerCycle          = "MANAGER_CYCLE"
	CodeNotFound              = "NOT_FOUND"
	CodeDuplicateCustomerName = "DUPLICATE_CUSTOMER_NAME"
	CodeDuplicateReportDate   = "DUPLICATE_REPORT_DATE"
	CodeDuplicateEmail        = "DUPLICATE_EMAIL"
	CodeCustomerInUse         = "CUSTOMER_IN_USE"
	CodeForbidden             = "FORBIDDEN"
	CodeInternalError         = "INTERNAL_ERROR"
)

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *errorBody  `json:"error,omitempty"`
}

// JSON writes a success envelope.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

// Error writes an error envelope with a machine code and a human message.
func Error(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: &errorBody{Code: code, Message: message}})
}

// ValidationError writes a 422 with per-field detail messages.
func ValidationError(w http.ResponseWriter, message string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Error: &errorBody{
		Code:    CodeValidationError,
		Message: message,
		Details: details,
	}})
}

// Denial maps an authz rejection onto the wire. State conflicts on a
// transition are 409; everything else a denial expresses is 403.
func Denial(w http.ResponseWriter, d *authz.Denial) {
	status := http.StatusForbidden
	if d.Reason == authz.ReasonInvalidSourceStatus {
		status = http.StatusConflict
	}
	Error(w, status, string(d.Reason), d.Message)
}

// FindError maps a load failure: a missing row is 404 with the given
// message, any other store error is a logged 500.
func FindError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		Error(w, http.StatusNotFound, CodeNotFound, message)
		return
	}
	Internal(w, err, "store read failed")
}

// Internal logs err server-side and answers with a generic 500.
func Internal(w http.ResponseWriter, err error, msg string) {
	log.Error().Err(err).Msg(msg)
	Error(w, http.StatusInternalServerError, CodeInternalError, "サーバーエラーが発生しました")
}
