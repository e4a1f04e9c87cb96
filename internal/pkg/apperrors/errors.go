package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Authentication errors
	ErrUnauthenticated = errors.New("authentication required")
	ErrTokenExpired    = errors.New("token expired")
	ErrTokenInvalid    = errors.New("invalid token")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Business-rule violations
	ErrInvariant    = errors.New("business rule violated")
	ErrMimeRejected = errors.New("file type not accepted")
)

// Association errors
var (
	ErrAssociationNotFound   = errors.New("association not found")
	ErrAssociationNameTaken  = errors.New("an association with an equivalent name already exists")
	ErrAssociationEnabled    = errors.New("association must be disabled before deletion")
	ErrAssociationAtCapacity = errors.New("association member capacity reached")
	ErrPresidentExists       = errors.New("association already has a president")
	ErrMembershipExists      = errors.New("user is already a member of this association")
	ErrPublicRequiresSite    = errors.New("association must be enabled and site to be public")
	ErrCharterDocsMissing    = errors.New("required charter documents are missing")
	ErrCharterTransition     = errors.New("charter status transition not allowed")
	ErrCannotSelfDemote      = errors.New("the sitting president cannot demote themselves")
)

// Commission errors
var (
	ErrCommissionNotFound   = errors.New("commission not found")
	ErrCommissionNameTaken  = errors.New("a commission with an equivalent name already exists")
	ErrCommissionDates      = errors.New("submission deadline must not be after session date")
	ErrCommissionPastDate   = errors.New("submission deadline must not be in the past")
	ErrCommissionInUse      = errors.New("commission has submissions from finished projects")
	ErrCommissionHeld       = errors.New("commission session has already been held")
	ErrCommissionFundExists = errors.New("commission already reviews this fund")
)

// Project errors
var (
	ErrProjectNotFound         = errors.New("project not found")
	ErrProjectOwnership        = errors.New("project must belong to exactly one of association or user")
	ErrProjectNotEditable      = errors.New("project is not editable in its current status")
	ErrProjectTransition       = errors.New("project status transition not allowed")
	ErrProjectDates            = errors.New("start date must not be after end date")
	ErrCannotSubmitProjects    = errors.New("association is not allowed to submit projects")
	ErrNotPresident            = errors.New("only the president or a delegated president may act for the association")
	ErrDeadlinePassed          = errors.New("commission submission deadline has passed")
	ErrCommissionClosed        = errors.New("commission is closed to new projects")
	ErrSiteFundRestricted      = errors.New("fund is reserved to site associations")
	ErrSubmissionExists        = errors.New("project is already submitted to this commission fund")
	ErrMultipleCommissions     = errors.New("project submissions must all target the same commission")
	ErrValidatorFieldForbidden = errors.New("field is reserved to fund managers")
	ErrReviewCommissionPending = errors.New("a commission decision is still pending")
	ErrProjectDocsMissing      = errors.New("required project documents are missing")
)

// Document errors
var (
	ErrDocumentNotFound       = errors.New("document not found")
	ErrDocumentUploadNotFound = errors.New("document upload not found")
	ErrDocumentNotUpdatable   = errors.New("document type cannot be updated")
	ErrDocumentOwnerBinding   = errors.New("upload must attach to exactly one owner")
	ErrDocumentExpirationRule = errors.New("document may declare rolling or fixed expiration, not both")
)

// User and group errors
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrGroupNotFound       = errors.New("group not found")
	ErrGroupRestricted     = errors.New("joining this group requires staff authority")
	ErrGroupIncompatible   = errors.New("user cannot hold both a public group and a staff group")
	ErrGroupNoAssociations = errors.New("user's group does not allow association membership")
)

// Setting errors
var (
	ErrSettingNotFound = errors.New("setting not found")
)

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
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

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewInvariantError wraps a violated business rule with a contextual message
func NewInvariantError(rule error, message string) error {
	return &CustomError{
		Err:     rule,
		Message: message,
	}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Code      string
	Details   map[string]interface{}
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

// WithStatusMsg adds a user-friendly status message
func (e *CustomError) WithStatusMsg(msg string) *CustomError {
	e.StatusMsg = msg
	return e
}
