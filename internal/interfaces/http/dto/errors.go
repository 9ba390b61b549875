package dto

import (
	"net/http"

	"github.com/vetclinic/backend/internal/domain/shared"
)

// Transport-level error codes. Domain errors keep their own codes and
// are mapped to HTTP statuses below.
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes.
// Validation and malformed input map to 400, rejected business
// operations to 422, concurrency conflicts to 409, and missing
// external setup surfaces as 500 because the client cannot fix it.
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound: http.StatusNotFound,
	ErrCodeConflict: http.StatusConflict,

	shared.CodeValidation:      http.StatusBadRequest,
	shared.CodeStateTransition: http.StatusUnprocessableEntity,
	shared.CodeOverpayment:     http.StatusUnprocessableEntity,
	shared.CodeDeliveryFailure: http.StatusUnprocessableEntity,
	shared.CodeReconciliation:  http.StatusUnprocessableEntity,
	shared.CodeConfiguration:   http.StatusInternalServerError,

	"ALREADY_EXISTS":        http.StatusConflict,
	"CONCURRENCY_CONFLICT":  http.StatusConflict,
	"OPTIMISTIC_LOCK_ERROR": http.StatusConflict,
	"INVALID_INPUT":         http.StatusBadRequest,
	"INVALID_STATE":         http.StatusUnprocessableEntity,
	"SEQUENCE_ERROR":        http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes default to 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
