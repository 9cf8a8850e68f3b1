package session

import (
	"context"

	"github.com/ganot/showcase/internal/domain/activity"
	"github.com/ganot/showcase/internal/domain/project"
)

// RecordStore is the mutable project collection the controller edits.
type RecordStore interface {
	Get(id int64) (project.Project, error)
	Create(req project.CreateRequest) (project.Project, error)
	Update(id int64, req project.UpdateRequest) (project.Project, error)
	Delete(id int64) error
}

// Gate is the capability check consulted before privileged transitions.
type Gate interface {
	Allow(ctx context.Context, action Action) bool
}

// GateFunc adapts a function to Gate.
type GateFunc func(ctx context.Context, action Action) bool

func (f GateFunc) Allow(ctx context.Context, action Action) bool {
	return f(ctx, action)
}

// AllowAll grants every action.
var AllowAll Gate = GateFunc(func(context.Context, Action) bool { return true })

// Identity names the caller of a transition. The empty name is an anonymous
// visitor.
type Identity interface {
	Caller(ctx context.Context) string
}

// IdentityFunc adapts a function to Identity.
type IdentityFunc func(ctx context.Context) string

func (f IdentityFunc) Caller(ctx context.Context) string {
	return f(ctx)
}

// ActivityLogger records successful mutations.
type ActivityLogger interface {
	LogActivity(ctx context.Context, entry *activity.ActivityEntry) error
}
