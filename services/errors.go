package services

import (
	"errors"
	"fmt"

	"municipal-reports-service/models"
)

var (
	// ErrReportNotFound is returned when the referenced report does not exist.
	ErrReportNotFound = errors.New("report not found")

	// ErrConflict is returned when a lifecycle write lost a race: the report
	// changed between read and write. Callers may re-run the operation; the
	// service revalidates from scratch on retry.
	ErrConflict = errors.New("report was modified concurrently")
)

// ValidationError reports a missing or malformed field in an otherwise
// well-formed request (e.g. a rejection without a reason).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// InvalidTransitionError reports a status change that is not permitted from
// the report's current status. Both states are carried so the caller can
// render a precise message.
type InvalidTransitionError struct {
	From models.Status
	To   models.Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// ForbiddenError reports an authorization failure in the comment guard.
type ForbiddenError struct {
	AuthorID   int64
	AuthorType models.AuthorType
	Reason     string
}

func (e *ForbiddenError) Error() string {
	return e.Reason
}

// ConfigurationError reports a routing misconfiguration, such as an office
// with no officers or a category with no office entry. These must be
// surfaced to the operator, never silently ignored.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}
