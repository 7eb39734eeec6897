package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"quick-quote/logger"
)

type ErrorType string

const (
	ConfigParseError   ErrorType = "CONFIG_PARSE_ERROR"
	ExternalParseError ErrorType = "EXTERNAL_PARSE_ERROR"
	ValidationError    ErrorType = "VALIDATION_ERROR"
	NotFoundError      ErrorType = "NOT_FOUND"
	DatabaseError      ErrorType = "DATABASE_ERROR"
	DeliveryError      ErrorType = "DELIVERY_ERROR"
	UnavailableError   ErrorType = "SERVICE_UNAVAILABLE"
	ServerError        ErrorType = "SERVER_ERROR"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Raw        error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the raw cause to errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Raw
}

// New creates a new AppError
func New(errType ErrorType, message string, detail string) *AppError {
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     detail,
		HTTPStatus: getHTTPStatus(errType),
	}
}

// Wrap wraps a raw error with AppError context
func Wrap(err error, errType ErrorType, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Type:       errType,
		Message:    message,
		Detail:     err.Error(),
		HTTPStatus: getHTTPStatus(errType),
		Raw:        err,
	}
}

// ConfigParse reports a configuration source that could not be read.
// The whole import is rejected.
func ConfigParse(err error, message string) *AppError {
	if err == nil {
		return New(ConfigParseError, message, "")
	}
	return Wrap(err, ConfigParseError, message)
}

// ExternalParse reports a failure of the description parser.
// Callers fall back to manual entry.
func ExternalParse(err error, message string) *AppError {
	if err == nil {
		return New(ExternalParseError, message, "")
	}
	return Wrap(err, ExternalParseError, message)
}

// NotFound reports a missing entity
func NotFound(entity string, id interface{}) *AppError {
	return &AppError{
		Type:       NotFoundError,
		Message:    fmt.Sprintf("%s not found", entity),
		Detail:     fmt.Sprintf("ID: %v", id),
		HTTPStatus: http.StatusNotFound,
	}
}

func ValidationFailed(message string, details string) *AppError {
	return &AppError{
		Type:       ValidationError,
		Message:    message,
		Detail:     details,
		HTTPStatus: http.StatusBadRequest,
	}
}

func NewDatabaseError(err error) *AppError {
	// Log original error but return sanitized message
	logger.GetLogger().Errorw("Database error", "error", err)
	return &AppError{
		Type:       DatabaseError,
		Message:    "Database operation failed",
		Detail:     "Please try again later",
		HTTPStatus: http.StatusInternalServerError,
		Raw:        err,
	}
}

// Delivery reports an email that could not be handed to the provider
func Delivery(err error, message string) *AppError {
	return Wrap(err, DeliveryError, message)
}

func Unavailable(message string) *AppError {
	return New(UnavailableError, message, "")
}

func InternalServerError(message string) *AppError {
	return New(ServerError, message, "")
}

// As returns the AppError in err's chain, if any
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err carries an AppError of the given type
func Is(err error, errType ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == errType
}

// HTTPStatus maps any error to a response status, 500 when it is not an AppError
func HTTPStatus(err error) int {
	if appErr, ok := As(err); ok && appErr.HTTPStatus != 0 {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

func getHTTPStatus(errType ErrorType) int {
	switch errType {
	case ConfigParseError:
		return http.StatusUnprocessableEntity
	case ExternalParseError, DeliveryError:
		return http.StatusBadGateway
	case ValidationError:
		return http.StatusBadRequest
	case NotFoundError:
		return http.StatusNotFound
	case UnavailableError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
