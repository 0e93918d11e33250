package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeRateLimited  ErrorType = "RATE_LIMITED"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrCodeInvalidID        ErrorCode = "INVALID_ID"
	ErrCodeInvalidEmail     ErrorCode = "INVALID_EMAIL"
	ErrCodeInvalidRole      ErrorCode = "INVALID_ROLE"
	ErrCodePasswordTooShort ErrorCode = "PASSWORD_TOO_SHORT"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
	ErrCodeTooManyRequests  ErrorCode = "TOO_MANY_REQUESTS"

	ErrCodeUnauthenticated    ErrorCode = "UNAUTHENTICATED"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"

	ErrCodeForbidden            ErrorCode = "FORBIDDEN"
	ErrCodeNoOrganizationAccess ErrorCode = "NO_ORGANIZATION_ACCESS"
	ErrCodeOrganizationRequired ErrorCode = "ORGANIZATION_ID_REQUIRED"
	ErrCodeRoleEscalation       ErrorCode = "ROLE_ESCALATION"
	ErrCodeCrossTenant          ErrorCode = "CROSS_TENANT_ACCESS"
	ErrCodeInsufficientLevel    ErrorCode = "INSUFFICIENT_PERMISSION"

	ErrCodeOrganizationNotFound ErrorCode = "ORGANIZATION_NOT_FOUND"
	ErrCodeOrganizationHasUsers ErrorCode = "ORGANIZATION_HAS_USERS"
	ErrCodeUserNotFound         ErrorCode = "USER_NOT_FOUND"
	ErrCodeEmailTaken           ErrorCode = "EMAIL_TAKEN"
	ErrCodeUsernameTaken        ErrorCode = "USERNAME_TAKEN"
	ErrCodeFolderNotFound       ErrorCode = "FOLDER_NOT_FOUND"
	ErrCodeFolderCycle          ErrorCode = "FOLDER_CYCLE"
	ErrCodeReportNotFound       ErrorCode = "REPORT_NOT_FOUND"
	ErrCodeInvalidFileType      ErrorCode = "INVALID_FILE_TYPE"
	ErrCodeFileTooLarge         ErrorCode = "FILE_TOO_LARGE"
	ErrCodeFileNotFound         ErrorCode = "FILE_NOT_FOUND"
	ErrCodeInvalidPermission    ErrorCode = "INVALID_PERMISSION"

	ErrCodeInvitationNotFound        ErrorCode = "INVITATION_NOT_FOUND"
	ErrCodeInvitationAlreadyAccepted ErrorCode = "INVITATION_ALREADY_ACCEPTED"
	ErrCodeInvitationExpired         ErrorCode = "INVITATION_EXPIRED"
	ErrCodeInvitationPending         ErrorCode = "INVITATION_PENDING"
	ErrCodeUserAlreadyExists         ErrorCode = "USER_ALREADY_EXISTS"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause returns a copy so that package-level sentinels are never mutated.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func NewRateLimitError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimited,
		Code:       ErrCodeTooManyRequests,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
	}
}

var (
	ErrUnauthenticated    = NewUnauthorizedError("Authentication required", ErrCodeUnauthenticated)
	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewUnauthorizedError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)

	ErrForbidden            = NewForbiddenError("Insufficient permissions", ErrCodeForbidden)
	ErrNoOrganizationAccess = NewForbiddenError("No organization access", ErrCodeNoOrganizationAccess)
	ErrOrganizationRequired = NewValidationError("organizationId is required for superadmin", ErrCodeOrganizationRequired)
	ErrRoleEscalation       = NewForbiddenError("Cannot assign the superadmin role", ErrCodeRoleEscalation)
	ErrCrossTenantAccess    = NewForbiddenError("Access denied to this report", ErrCodeCrossTenant)
	ErrInsufficientLevel    = NewForbiddenError("No permission for this report", ErrCodeInsufficientLevel)
	ErrGranteeOutsideTenant = NewForbiddenError("Cannot grant permissions to users outside your organization", ErrCodeCrossTenant)

	ErrOrganizationNotFound = NewNotFoundError("Organization not found", ErrCodeOrganizationNotFound)
	ErrOrganizationHasUsers = NewConflictError("Cannot delete organization with existing users", ErrCodeOrganizationHasUsers)
	ErrUserNotFound         = NewNotFoundError("User not found", ErrCodeUserNotFound)
	ErrEmailTaken           = NewConflictError("Email is already registered", ErrCodeEmailTaken)
	ErrUsernameTaken        = NewConflictError("Username is already taken", ErrCodeUsernameTaken)
	ErrFolderNotFound       = NewNotFoundError("Folder not found", ErrCodeFolderNotFound)
	ErrFolderCycle          = NewValidationError("Folder parent would create a cycle", ErrCodeFolderCycle)
	ErrReportNotFound       = NewNotFoundError("Report not found", ErrCodeReportNotFound)
	ErrFileNotFound         = NewNotFoundError("File not found", ErrCodeFileNotFound)

	ErrInvitationNotFound        = NewNotFoundError("Invalid invitation token", ErrCodeInvitationNotFound)
	ErrInvitationAlreadyAccepted = NewValidationError("Invitation has already been used", ErrCodeInvitationAlreadyAccepted)
	ErrInvitationExpired         = NewValidationError("Invitation has expired", ErrCodeInvitationExpired)
	ErrInvitationPending         = NewConflictError("A pending invitation already exists for this email", ErrCodeInvitationPending)
	ErrUserAlreadyExists         = NewConflictError("User already exists with this email", ErrCodeUserAlreadyExists)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Code == code
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
