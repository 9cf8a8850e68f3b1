package catalog

import (
	"errors"

	"github.com/ganot/showcase/internal/domain/project"
	"github.com/ganot/showcase/internal/domain/query"
	"github.com/ganot/showcase/internal/domain/session"
	"github.com/ganot/showcase/internal/domain/view"
)

// UnavailableMessage replaces the empty-state text when the initial load failed.
const UnavailableMessage = "Project data could not be loaded."

// Level grades a notice.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notice is a one-shot message attached to the screen produced by an event.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Screen is everything a surface needs to draw the catalog after an event.
type Screen struct {
	Projection  view.Projection  `json:"projection"`
	Query       query.State      `json:"query"`
	Categories  []string         `json:"categories"`
	Detail      *view.DetailView `json:"detail,omitempty"`
	Session     session.State    `json:"session"`
	Notice      *Notice          `json:"notice,omitempty"`
	Favourites  []int64          `json:"favourites"`
	Dark        bool             `json:"dark"`
	Online      bool             `json:"online"`
	Total       int              `json:"total"`
	Unavailable bool             `json:"unavailable"`
}

// Notice messages for rejected transitions.
const (
	MsgDenied        = "Access denied."
	MsgNotFound      = "That project no longer exists."
	MsgSessionOpen   = "Finish or cancel the open form first."
	MsgNoSession     = "That form is no longer open."
	MsgNotEditing    = "Only an open edit form can delete a project."
	MsgUnknownSort   = "Unknown sort order."
	MsgFailed        = "Something went wrong. Please try again."
	MsgAdded         = "Project added."
	MsgUpdated       = "Project updated."
	MsgDeleted       = "Project deleted."
	MsgFavourited    = "Added to favourites."
	MsgUnfavourited  = "Removed from favourites."
	MsgOffline       = "You are offline."
	MsgBackOnline    = "Back online."
	MsgValidationGen = "Please check the form."
)

// noticeFor maps an event error onto the notice shown to the user. The
// boolean is false for unexpected errors.
func noticeFor(err error, st session.State) (*Notice, bool) {
	msg := ""
	switch {
	case errors.Is(err, session.ErrAuthorizationDenied):
		msg = MsgDenied
	case errors.Is(err, session.ErrValidation), errors.Is(err, project.ErrValidation):
		msg = st.Validation
		if msg == "" {
			msg = MsgValidationGen
		}
	case errors.Is(err, project.ErrNotFound):
		msg = MsgNotFound
	case errors.Is(err, session.ErrSessionOpen):
		msg = MsgSessionOpen
	case errors.Is(err, session.ErrNoSession), errors.Is(err, session.ErrStaleSession):
		msg = MsgNoSession
	case errors.Is(err, session.ErrNotEditing):
		msg = MsgNotEditing
	case errors.Is(err, query.ErrUnknownSort):
		msg = MsgUnknownSort
	default:
		return &Notice{Level: LevelError, Message: MsgFailed}, false
	}
	return &Notice{Level: LevelError, Message: msg}, true
}

func info(msg string) *Notice {
	return &Notice{Level: LevelInfo, Message: msg}
}
