package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeState        ErrorCode = "INVALID_STATE"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// AppError - ошибка сервисного слоя с сообщением для клиента.
// Cause не показывается клиенту в production.
type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func Validation(message string) *AppError { return New(ErrCodeValidation, message) }

func Internal(err error, message string) *AppError { return Wrap(err, ErrCodeInternal, message) }

// Конфликт уникальности отдаётся клиенту как 400, как и прочие ошибки ввода.
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeValidation, ErrCodeConflict, ErrCodeState:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// As извлекает AppError из цепочки.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func Is(err error, code ErrorCode) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

func IsNotFound(err error) bool { return Is(err, ErrCodeNotFound) }

func IsValidation(err error) bool { return Is(err, ErrCodeValidation) }

var (
	ErrInvalidCredentials = New(ErrCodeUnauthorized, "Invalid credentials")
	ErrUserIDRequired     = New(ErrCodeValidation, "User ID is required")
	ErrUserNotFound       = New(ErrCodeNotFound, "User not found")
	ErrPostNotFound       = New(ErrCodeNotFound, "Post not found")
	ErrCommentNotFound    = New(ErrCodeNotFound, "Comment not found")
	ErrForbidden          = New(ErrCodeForbidden, "Not allowed")
)
