package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/ganot/showcase/internal/domain/activity"
	"github.com/ganot/showcase/internal/domain/project"
	"github.com/google/uuid"
)

// Validation messages surfaced on State.Validation.
const (
	MsgNameRequired = "Name is required."
	MsgInvalidDate  = "Date must be in YYYY-MM-DD form."
)

// Controller drives the add/edit/delete workflow. It is the only writer of
// the record store. Not safe for concurrent use.
type Controller struct {
	store      RecordStore
	gate       Gate
	identity   Identity
	activities ActivityLogger
	logger     *slog.Logger
	state      State
}

// NewController creates a closed controller. A nil gate denies everything. A
// nil identity treats every caller as the same anonymous caller; activities
// may be nil.
func NewController(store RecordStore, gate Gate, identity Identity, activities ActivityLogger, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if gate == nil {
		gate = GateFunc(func(context.Context, Action) bool { return false })
	}
	if identity == nil {
		identity = IdentityFunc(func(context.Context) string { return "" })
	}
	return &Controller{
		store:      store,
		gate:       gate,
		identity:   identity,
		activities: activities,
		logger:     logger,
		state:      closedState(),
	}
}

// State returns a snapshot of the current session.
func (c *Controller) State() State {
	st := c.state
	st.Draft.Tags = slices.Clone(st.Draft.Tags)
	return st
}

// StateFor returns the snapshot as seen by the caller in ctx. Callers other
// than the owner get a held snapshot without the session id or draft.
func (c *Controller) StateFor(ctx context.Context) State {
	if !c.state.Open() || c.identity.Caller(ctx) == c.state.Owner {
		return c.State()
	}
	return State{Mode: c.state.Mode, Draft: Draft{Tags: []string{}}, Held: true}
}

// OpenAdd opens an add session with an empty draft.
func (c *Controller) OpenAdd(ctx context.Context) (State, error) {
	if c.state.Open() {
		return c.State(), ErrSessionOpen
	}
	if !c.gate.Allow(ctx, ActionAdd) {
		c.logger.Info("add session denied")
		return c.State(), ErrAuthorizationDenied
	}

	owner := c.identity.Caller(ctx)
	c.state = State{ID: uuid.NewString(), Mode: ModeAdd, Owner: owner, Draft: Draft{Tags: []string{}}}
	c.logger.Debug("session opened", "session_id", c.state.ID, "mode", ModeAdd, "owner", owner)
	return c.State(), nil
}

// OpenEdit opens an edit session pre-filled from the record's current snapshot.
func (c *Controller) OpenEdit(ctx context.Context, id int64) (State, error) {
	if c.state.Open() {
		return c.State(), ErrSessionOpen
	}
	if !c.gate.Allow(ctx, ActionEdit) {
		c.logger.Info("edit session denied", "project_id", id)
		return c.State(), ErrAuthorizationDenied
	}
	rec, err := c.store.Get(id)
	if err != nil {
		return c.State(), fmt.Errorf("opening edit session for %d: %w", id, err)
	}

	owner := c.identity.Caller(ctx)
	c.state = State{ID: uuid.NewString(), Mode: ModeEdit, Owner: owner, RecordID: id, Draft: DraftFrom(rec)}
	c.logger.Debug("session opened", "session_id", c.state.ID, "mode", ModeEdit, "project_id", id, "owner", owner)
	return c.State(), nil
}

// Cancel discards the draft and closes the session. Cancelling a closed
// session is a no-op. Besides the owner, any caller the gate allows to edit
// may cancel, so a session left behind by a signed-out editor can be cleared.
func (c *Controller) Cancel(ctx context.Context) (State, error) {
	if !c.state.Open() {
		return c.State(), nil
	}
	caller := c.identity.Caller(ctx)
	if caller != c.state.Owner && !c.gate.Allow(ctx, ActionEdit) {
		c.logger.Info("cancel denied", "session_id", c.state.ID)
		return c.State(), ErrAuthorizationDenied
	}
	c.logger.Debug("session cancelled", "session_id", c.state.ID, "by", caller)
	c.state = closedState()
	return c.State(), nil
}

// Save commits draft through the record store and closes the session. Only
// the owner may save. An empty sessionID targets the current session.
//
// A draft that fails validation keeps the session open with the draft and a
// validation message. If the record under edit has vanished the session is
// closed and the wrapped project.ErrNotFound returned.
func (c *Controller) Save(ctx context.Context, sessionID string, draft Draft) (project.Project, error) {
	if err := c.checkCurrent(ctx, sessionID); err != nil {
		return project.Project{}, err
	}

	draft.Tags = append([]string{}, draft.Tags...)
	c.state.Draft = draft
	c.state.Validation = ""

	name := strings.TrimSpace(draft.Name)
	if name == "" {
		c.state.Validation = MsgNameRequired
		return project.Project{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	date, err := project.ParseDate(strings.TrimSpace(draft.Date))
	if err != nil {
		c.state.Validation = MsgInvalidDate
		return project.Project{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	switch c.state.Mode {
	case ModeAdd:
		rec, err := c.store.Create(project.CreateRequest{
			Name:        name,
			Category:    draft.Category,
			Description: draft.Description,
			Tags:        draft.Tags,
			Date:        date,
			Link:        draft.Link,
		})
		if err != nil {
			return project.Project{}, fmt.Errorf("creating project: %w", err)
		}
		c.record(ctx, rec.ID, activity.TypeRecordCreated, fmt.Sprintf("Created %q", rec.Name))
		c.state = closedState()
		return rec, nil

	default:
		id := c.state.RecordID
		rec, err := c.store.Update(id, project.UpdateRequest{
			Name:        &name,
			Category:    &draft.Category,
			Description: &draft.Description,
			Tags:        draft.Tags,
			Date:        &date,
			Link:        &draft.Link,
		})
		if errors.Is(err, project.ErrNotFound) {
			c.state = closedState()
			return project.Project{}, fmt.Errorf("updating project %d: %w", id, err)
		}
		if err != nil {
			return project.Project{}, fmt.Errorf("updating project %d: %w", id, err)
		}
		c.record(ctx, rec.ID, activity.TypeRecordUpdated, fmt.Sprintf("Updated %q", rec.Name))
		c.state = closedState()
		return rec, nil
	}
}

// Delete removes the record under edit and closes the session. Only the owner
// may delete and the gate is consulted again; a refusal leaves the session as
// it was.
func (c *Controller) Delete(ctx context.Context, sessionID string) error {
	if err := c.checkCurrent(ctx, sessionID); err != nil {
		return err
	}
	if c.state.Mode != ModeEdit {
		return ErrNotEditing
	}
	id := c.state.RecordID
	if !c.gate.Allow(ctx, ActionDelete) {
		c.logger.Info("delete denied", "project_id", id)
		return ErrAuthorizationDenied
	}

	name := c.state.Draft.Name
	if rec, err := c.store.Get(id); err == nil {
		name = rec.Name
	}
	if err := c.store.Delete(id); err != nil {
		if errors.Is(err, project.ErrNotFound) {
			c.state = closedState()
		}
		return fmt.Errorf("deleting project %d: %w", id, err)
	}

	c.record(ctx, id, activity.TypeRecordDeleted, fmt.Sprintf("Deleted %q", name))
	c.state = closedState()
	return nil
}

// checkCurrent admits the owner of the open session. sessionID, when given,
// must name it.
func (c *Controller) checkCurrent(ctx context.Context, sessionID string) error {
	if !c.state.Open() {
		return ErrNoSession
	}
	if c.identity.Caller(ctx) != c.state.Owner {
		c.logger.Info("session held by another caller", "session_id", c.state.ID)
		return ErrAuthorizationDenied
	}
	if sessionID != "" && sessionID != c.state.ID {
		return ErrStaleSession
	}
	return nil
}

// record appends to the activity log. Failures are logged and never undo the
// mutation.
func (c *Controller) record(ctx context.Context, id int64, typ activity.ActivityType, summary string) {
	c.logger.Info(summary, "project_id", id, "session_id", c.state.ID)
	if c.activities == nil {
		return
	}
	entry := &activity.ActivityEntry{ProjectID: &id, ActivityType: typ, Summary: summary}
	if err := c.activities.LogActivity(ctx, entry); err != nil {
		c.logger.Warn("failed to record activity", "type", typ, "project_id", id, "error", err)
	}
}
