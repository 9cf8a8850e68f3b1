package session

import (
	"slices"
	"strings"

	"github.com/ganot/showcase/internal/domain/project"
)

// Mode is the session lifecycle state.
type Mode string

const (
	ModeClosed Mode = "closed"
	ModeAdd    Mode = "add"
	ModeEdit   Mode = "edit"
)

// Action is a privileged transition checked against the Gate.
type Action string

const (
	ActionAdd    Action = "add"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Draft holds the editable fields of an open session. Date is YYYY-MM-DD text
// or empty.
type Draft struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Date        string   `json:"date"`
	Link        string   `json:"link"`
}

// DraftFrom pre-populates a draft from a record snapshot.
func DraftFrom(rec project.Project) Draft {
	return Draft{
		Name:        rec.Name,
		Category:    rec.Category,
		Description: rec.Description,
		Tags:        slices.Clone(rec.Tags),
		Date:        rec.Date.String(),
		Link:        rec.Link,
	}
}

// TagsText joins the draft tags for a single text input.
func (d Draft) TagsText() string {
	return strings.Join(d.Tags, ", ")
}

// ParseTags splits comma separated tag text, trimming each tag and dropping
// empty ones. Order and duplicates are kept.
func ParseTags(s string) []string {
	tags := []string{}
	for _, part := range strings.Split(s, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// State is a snapshot of the session. RecordID is set only in ModeEdit.
//
// Owner is the caller that opened the session. Held marks a snapshot taken
// by anyone else: it reports the mode and nothing of the session's contents.
type State struct {
	ID         string `json:"id,omitempty"`
	Mode       Mode   `json:"mode"`
	Owner      string `json:"owner,omitempty"`
	RecordID   int64  `json:"record_id,omitempty"`
	Draft      Draft  `json:"draft"`
	Validation string `json:"validation,omitempty"`
	Held       bool   `json:"held,omitempty"`
}

// Open reports whether an add or edit session is in progress.
func (s State) Open() bool {
	return s.Mode == ModeAdd || s.Mode == ModeEdit
}

// Editable reports whether the snapshot is an open session its holder may
// fill in.
func (s State) Editable() bool {
	return s.Open() && !s.Held
}

func closedState() State {
	return State{Mode: ModeClosed}
}
