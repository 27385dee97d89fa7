package common

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

// Pipeline error taxonomy. Stage errors wrap one of these so callers can
// branch with errors.Is regardless of how much context was added on the way up.
var (
	ErrExtraction        = errors.New("document text extraction failed")
	ErrUpstream          = errors.New("completion service failed")
	ErrMalformedResponse = errors.New("malformed completion response")
	ErrPersistence       = errors.New("persistence failed")
	ErrNotification      = errors.New("notification failed")
	ErrTransfer          = errors.New("content transfer failed")
)

// Error codes carried by AppError.
const (
	CodeConfig      = "CONFIG_ERROR"
	CodeExtraction  = "EXTRACTION_ERROR"
	CodeUpstream    = "UPSTREAM_SERVICE_ERROR"
	CodePersistence = "PERSISTENCE_ERROR"
	CodeNotify      = "NOTIFICATION_ERROR"
	CodeNotFound    = "NOT_FOUND"
	CodeTransfer    = "TRANSFER_ERROR"
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf joins a taxonomy sentinel with the underlying cause so that both
// errors.Is(err, kind) and errors.Is(err, cause) hold.
func Wrapf(kind error, cause error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if cause == nil {
		return fmt.Errorf("%s: %w", msg, kind)
	}
	return fmt.Errorf("%s: %w: %w", msg, kind, cause)
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}

// ToStatus maps a pipeline error onto a gRPC status.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrExtraction):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, ErrMalformedResponse):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, ErrUpstream), errors.Is(err, ErrTransfer):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
