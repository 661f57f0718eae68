package platformerrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorType categorizes a failure along the ingestion/query pipeline.
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "VALIDATION"
	ErrorTypeNotFound      ErrorType = "NOT_FOUND"
	ErrorTypeExtraction    ErrorType = "EXTRACTION"
	ErrorTypeEmbedding     ErrorType = "EMBEDDING"
	ErrorTypeVectorIndex   ErrorType = "VECTOR_INDEX"
	ErrorTypeGeneration    ErrorType = "GENERATION"
	ErrorTypeDatabaseError ErrorType = "DATABASE_ERROR"
	ErrorTypeInternal      ErrorType = "INTERNAL"
)

// Layer identifies where the error originated.
type Layer string

const (
	LayerRepository     Layer = "repository"
	LayerDomain         Layer = "domain"
	LayerHandler        Layer = "handler"
	LayerInfrastructure Layer = "infrastructure"
)

type requestIDKey struct{}

// ContextWithRequestID stores the request ID for error annotation.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func requestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// PlatformError carries layer, type, and request metadata alongside the cause.
type PlatformError struct {
	Type      ErrorType
	Layer     Layer
	Message   string
	Err       error
	RequestID string
	Timestamp time.Time
}

func (e *PlatformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s][%s] %s: %v", e.Layer, e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s][%s] %s", e.Layer, e.Type, e.Message)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// GetErrorType returns the error category.
func (e *PlatformError) GetErrorType() ErrorType {
	return e.Type
}

// NewError wraps err (which may be nil) as a PlatformError.
func NewError(ctx context.Context, layer Layer, errorType ErrorType, message string, err error) *PlatformError {
	return &PlatformError{
		Type:      errorType,
		Layer:     layer,
		Message:   message,
		Err:       err,
		RequestID: requestIDFromContext(ctx),
		Timestamp: time.Now().UTC(),
	}
}

// AsError re-wraps err with a new message, preserving an existing
// PlatformError's type so the boundary maps it to the right status.
func AsError(ctx context.Context, layer Layer, err error, message string) *PlatformError {
	var perr *PlatformError
	if errors.As(err, &perr) {
		return NewError(ctx, layer, perr.Type, message, err)
	}
	return NewError(ctx, layer, ErrorTypeInternal, message, err)
}

// TypeOf extracts the error type, defaulting to INTERNAL.
func TypeOf(err error) ErrorType {
	var perr *PlatformError
	if errors.As(err, &perr) {
		return perr.Type
	}
	return ErrorTypeInternal
}

// ErrorTypeToHTTPStatus maps error categories onto HTTP status codes.
func ErrorTypeToHTTPStatus(errorType ErrorType) int {
	switch errorType {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeExtraction:
		return http.StatusUnprocessableEntity
	case ErrorTypeEmbedding, ErrorTypeVectorIndex, ErrorTypeGeneration:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
