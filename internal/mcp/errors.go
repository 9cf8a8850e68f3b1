package mcp

import (
	"errors"
	"fmt"

	"github.com/ganot/showcase/internal/domain/project"
	"github.com/ganot/showcase/internal/domain/query"
	"github.com/ganot/showcase/internal/domain/session"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	if e.RecoveryHint == "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.RecoveryHint)
}

// MapError maps domain errors to MCP error codes. Unknown errors map to
// INTERNAL without leaking their text.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, session.ErrAuthorizationDenied):
		return &APIError{Code: "ACCESS_DENIED", Message: "editor capability required", RecoveryHint: "Connect with an editor bearer token"}
	case errors.Is(err, project.ErrNotFound):
		return &APIError{Code: "PROJECT_NOT_FOUND", Message: "project not found", RecoveryHint: "Call list_projects for current ids"}
	case errors.Is(err, session.ErrValidation), errors.Is(err, project.ErrValidation):
		return &APIError{Code: "VALIDATION_FAILED", Message: "draft rejected", RecoveryHint: "Fix the draft and call save_session again"}
	case errors.Is(err, session.ErrSessionOpen):
		return &APIError{Code: "SESSION_OPEN", Message: "an edit session is already open", RecoveryHint: "Save or cancel it first"}
	case errors.Is(err, session.ErrNoSession), errors.Is(err, session.ErrStaleSession):
		return &APIError{Code: "SESSION_NOT_FOUND", Message: "no matching session is open", RecoveryHint: "Open a new session"}
	case errors.Is(err, session.ErrNotEditing):
		return &APIError{Code: "NOT_EDITING", Message: "delete requires an open edit session", RecoveryHint: "Call open_edit_session first"}
	case errors.Is(err, query.ErrUnknownSort):
		return &APIError{Code: "INVALID_SORT", Message: "unknown sort order", RecoveryHint: "Valid sorts: insertion, name, date"}
	default:
		return &APIError{Code: "INTERNAL", Message: "internal error"}
	}
}

// toolError converts a domain error into the error returned from a tool
// handler. A validation message from the session is surfaced verbatim.
func toolError(err error, st session.State) error {
	apiErr := MapError(err)
	if apiErr == nil {
		return nil
	}
	if apiErr.Code == "VALIDATION_FAILED" && st.Validation != "" {
		apiErr.Message = st.Validation
	}
	return apiErr
}
