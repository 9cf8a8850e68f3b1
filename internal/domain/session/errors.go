package session

import "errors"

var (
	// ErrAuthorizationDenied indicates the capability gate refused the action.
	ErrAuthorizationDenied = errors.New("authorization denied")
	// ErrValidation indicates the draft cannot be saved as entered.
	ErrValidation = errors.New("invalid draft")
	// ErrSessionOpen indicates another add/edit session is already open.
	ErrSessionOpen = errors.New("a session is already open")
	// ErrNoSession indicates no add/edit session is open.
	ErrNoSession = errors.New("no session is open")
	// ErrNotEditing indicates delete was requested outside an edit session.
	ErrNotEditing = errors.New("no edit session is open")
	// ErrStaleSession indicates the request names a session that is no longer current.
	ErrStaleSession = errors.New("session is no longer current")
)
