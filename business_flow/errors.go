// Package businessflow contains the core business logic and use cases for farm operations workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// User-related errors
	ErrUserNotFound      = errors.New("user not found")
	ErrAccountInactive   = errors.New("account is inactive")
	ErrRoleNotFound      = errors.New("role not found")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionExpired    = errors.New("session has expired")
	ErrAccessDenied      = errors.New("access denied")

	// Inventory-related errors
	ErrResourceNotFound    = errors.New("resource not found")
	ErrDuplicateResource   = errors.New("resource already registered for this owner")
	ErrInvalidResourceKind = errors.New("invalid resource kind")
	ErrInvalidQuantity     = errors.New("quantity must be greater than zero")
	ErrInsufficientStock   = errors.New("requested quantity exceeds available stock")
	ErrInvalidUsageStatus  = errors.New("invalid usage status")
	ErrMissingDetails      = errors.New("details are required for damaged or missing items")

	// Sequence errors
	ErrSequenceNameEmpty = errors.New("sequence name is empty")

	// Barangay errors
	ErrBarangayNotFound   = errors.New("barangay not found")
	ErrBarangayNameTaken  = errors.New("barangay name already exists")
	ErrBarangayReferenced = errors.New("barangay still has users or projects")

	// Project errors
	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectClosed        = errors.New("project is not ongoing")
	ErrInvalidProjectStatus = errors.New("invalid project status")

	// Team errors
	ErrTeamNotFound        = errors.New("team not found")
	ErrFarmerAlreadyInTeam = errors.New("farmer already belongs to a team")
	ErrFarmerNotInTeam     = errors.New("farmer is not a member of the team")

	// Task errors
	ErrTaskNotFound      = errors.New("task not found")
	ErrSubtaskNotFound   = errors.New("subtask not found")
	ErrInvalidTaskStatus = errors.New("invalid task status")

	// Attendance errors
	ErrAttendanceNotFound = errors.New("attendance record not found")

	// Harvest errors
	ErrHarvestNotFound = errors.New("harvest not found")

	// Feedback errors
	ErrFeedbackNotFound            = errors.New("feedback not found")
	ErrFeedbackAlreadyAcknowledged = errors.New("feedback already acknowledged")

	// Filter errors
	ErrInvalidPage           = errors.New("page must be at least 1")
	ErrInvalidPageSize       = errors.New("page size must be between 1 and 100")
	ErrStartDateAfterEndDate = errors.New("start date cannot be after end date")

	ErrCacheNotAvailable = errors.New("cache not available")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsRoleNotFound(err error) bool {
	return errors.Is(err, ErrRoleNotFound)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

func IsSessionExpired(err error) bool {
	return errors.Is(err, ErrSessionExpired)
}

func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

func IsResourceNotFound(err error) bool {
	return errors.Is(err, ErrResourceNotFound)
}

func IsDuplicateResource(err error) bool {
	return errors.Is(err, ErrDuplicateResource)
}

func IsInvalidResourceKind(err error) bool {
	return errors.Is(err, ErrInvalidResourceKind)
}

func IsInvalidQuantity(err error) bool {
	return errors.Is(err, ErrInvalidQuantity)
}

func IsInsufficientStock(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}

func IsInvalidUsageStatus(err error) bool {
	return errors.Is(err, ErrInvalidUsageStatus)
}

func IsMissingDetails(err error) bool {
	return errors.Is(err, ErrMissingDetails)
}

func IsBarangayNotFound(err error) bool {
	return errors.Is(err, ErrBarangayNotFound)
}

func IsBarangayNameTaken(err error) bool {
	return errors.Is(err, ErrBarangayNameTaken)
}

func IsBarangayReferenced(err error) bool {
	return errors.Is(err, ErrBarangayReferenced)
}

func IsProjectNotFound(err error) bool {
	return errors.Is(err, ErrProjectNotFound)
}

func IsProjectClosed(err error) bool {
	return errors.Is(err, ErrProjectClosed)
}

func IsInvalidProjectStatus(err error) bool {
	return errors.Is(err, ErrInvalidProjectStatus)
}

func IsTeamNotFound(err error) bool {
	return errors.Is(err, ErrTeamNotFound)
}

func IsFarmerAlreadyInTeam(err error) bool {
	return errors.Is(err, ErrFarmerAlreadyInTeam)
}

func IsFarmerNotInTeam(err error) bool {
	return errors.Is(err, ErrFarmerNotInTeam)
}

func IsTaskNotFound(err error) bool {
	return errors.Is(err, ErrTaskNotFound)
}

func IsSubtaskNotFound(err error) bool {
	return errors.Is(err, ErrSubtaskNotFound)
}

func IsInvalidTaskStatus(err error) bool {
	return errors.Is(err, ErrInvalidTaskStatus)
}

func IsAttendanceNotFound(err error) bool {
	return errors.Is(err, ErrAttendanceNotFound)
}

func IsHarvestNotFound(err error) bool {
	return errors.Is(err, ErrHarvestNotFound)
}

func IsFeedbackNotFound(err error) bool {
	return errors.Is(err, ErrFeedbackNotFound)
}

func IsFeedbackAlreadyAcknowledged(err error) bool {
	return errors.Is(err, ErrFeedbackAlreadyAcknowledged)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}

func IsStartDateAfterEndDate(err error) bool {
	return errors.Is(err, ErrStartDateAfterEndDate)
}

func IsCacheNotAvailable(err error) bool {
	return errors.Is(err, ErrCacheNotAvailable)
}
