package util

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Error codes surfaced to API clients.
const (
	CodeValidation     = "VALIDATION_FAILED"
	CodeOutOfRangeDate = "OUT_OF_RANGE_DATE"
	CodeNotFound       = "NOT_FOUND"
	CodeUserNotFound   = "USER_NOT_FOUND"
	CodeMonthNotFound  = "MONTH_NOT_FOUND"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeForbidden      = "FORBIDDEN"
	CodeConflict       = "CONFLICT"
	CodeMonthLocked    = "MONTH_LOCKED"
	CodeInternal       = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

// NewOutOfRangeDate reports a submitted date outside the target month.
func NewOutOfRangeDate(date time.Time, month string) error {
	return NewDomainError(CodeOutOfRangeDate,
		fmt.Sprintf("date %s is outside month %s", date.Format("2006-01-02"), month),
		http.StatusBadRequest,
		map[string]any{"date": date.Format("2006-01-02"), "month": month})
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUserNotFound(userID string) error {
	return NewDomainError(CodeUserNotFound, "user not found", http.StatusNotFound, map[string]any{"user_id": userID})
}

func NewMonthNotFound(month string) error {
	return NewDomainError(CodeMonthNotFound, "month not found", http.StatusNotFound, map[string]any{"month": month})
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

func NewMonthLocked(month string) error {
	return NewDomainError(CodeMonthLocked, "schedule is approved and locked", http.StatusConflict, map[string]any{"month": month})
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// HasCode reports whether err is a DomainError carrying code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.Code == code
}
