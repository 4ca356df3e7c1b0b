package apperrors

import "errors"

// Common errors
var (
	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")

	// Lifecycle errors
	ErrInvalidState = errors.New("operation invalid for current state")

	// Allocation errors
	ErrConflict = errors.New("scheduling conflict")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrInvalidFormat      = errors.New("invalid token format")

	// Store errors
	ErrStoreFailure = errors.New("store operation failed")
)

// Request lifecycle errors
var (
	ErrRequestNotFound        = errors.New("course request not found")
	ErrRequestAlreadyTaken    = errors.New("course request already accepted by another instructor")
	ErrRequestNotAccepted     = errors.New("course request is not in accepted state")
	ErrRequestHasReservations = errors.New("course request already has slot reservations")
)

// Allocation errors
var (
	ErrSlotUnavailable  = errors.New("time slot is not available")
	ErrNoEligibleRoom   = errors.New("no eligible room for section and slot")
	ErrRoomOccupied     = errors.New("room is occupied at this slot")
	ErrRoomTooSmall     = errors.New("room capacity is below section enrollment")
	ErrRoomTypeMismatch = errors.New("room type does not match offering requirement")
)

// Reference data errors
var (
	ErrTimeSlotNotFound   = errors.New("time slot not found")
	ErrRoomNotFound       = errors.New("room not found")
	ErrSectionNotFound    = errors.New("section not found")
	ErrAssignmentNotFound = errors.New("room assignment not found")
	ErrInstructorNotFound = errors.New("instructor not found")
	ErrUserNotFound       = errors.New("user not found")
)

// NewNotFoundError creates a new custom error for a missing resource with a message
func NewNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for allocation conflicts with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewStateError creates a new custom error for invalid lifecycle transitions
func NewStateError(message string) error {
	return &CustomError{
		Err:     ErrInvalidState,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewValidationError creates a new custom error for invalid input with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}
