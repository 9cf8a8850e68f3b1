package project

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// CreateRequest describes a project creation request.
type CreateRequest struct {
	Name        string
	Category    string
	Description string
	Tags        []string
	Date        Date
	Link        string
}

// UpdateRequest describes a partial update. Nil fields are left untouched;
// a non-nil empty Tags slice clears the tags.
type UpdateRequest struct {
	Name        *string
	Category    *string
	Description *string
	Tags        []string
	Date        *Date
	Link        *string
}

// Store owns the canonical, insertion-ordered project collection.
//
// Store is not safe for concurrent use; its owner serialises access.
type Store struct {
	records []Project
	lastID  int64
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to mint identifiers.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a store seeded with records, in order. Seed records must
// have unique identifiers and non-empty names.
func NewStore(seed []Project, opts ...Option) (*Store, error) {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}

	seen := make(map[int64]struct{}, len(seed))
	s.records = make([]Project, 0, len(seed))
	for _, rec := range seed {
		if strings.TrimSpace(rec.Name) == "" {
			return nil, fmt.Errorf("seeding project %d: %w", rec.ID, ErrValidation)
		}
		if _, dup := seen[rec.ID]; dup {
			return nil, fmt.Errorf("seeding project %d: %w", rec.ID, ErrDuplicateID)
		}
		seen[rec.ID] = struct{}{}
		s.records = append(s.records, rec.Clone())
		s.lastID = max(s.lastID, rec.ID)
	}

	return s, nil
}

// Create validates and appends a new project with a freshly minted identifier.
func (s *Store) Create(req CreateRequest) (Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Project{}, ErrValidation
	}

	rec := Project{
		ID:          s.mintID(),
		Name:        name,
		Category:    req.Category,
		Description: req.Description,
		Tags:        req.Tags,
		Date:        req.Date,
		Link:        req.Link,
	}.Clone()

	s.records = append(s.records, rec)
	return rec.Clone(), nil
}

// Update merges the supplied fields into an existing project.
func (s *Store) Update(id int64, req UpdateRequest) (Project, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return Project{}, ErrNotFound
	}

	var name string
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
		if name == "" {
			return Project{}, ErrValidation
		}
	}

	updated := s.records[idx].Clone()
	if req.Name != nil {
		updated.Name = name
	}
	if req.Category != nil {
		updated.Category = *req.Category
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}
	if req.Tags != nil {
		updated.Tags = slices.Clone(req.Tags)
	}
	if req.Date != nil {
		updated.Date = *req.Date
	}
	if req.Link != nil {
		updated.Link = *req.Link
	}

	s.records[idx] = updated
	return updated.Clone(), nil
}

// Delete removes a project. Favourites referencing it are left alone.
func (s *Store) Delete(id int64) error {
	idx := s.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}
	s.records = slices.Delete(s.records, idx, idx+1)
	return nil
}

// Get returns a snapshot of one project.
func (s *Store) Get(id int64) (Project, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return Project{}, ErrNotFound
	}
	return s.records[idx].Clone(), nil
}

// All returns a snapshot of the collection in insertion order.
func (s *Store) All() []Project {
	out := make([]Project, len(s.records))
	for i, rec := range s.records {
		out[i] = rec.Clone()
	}
	return out
}

// Len reports the number of stored projects.
func (s *Store) Len() int {
	return len(s.records)
}

func (s *Store) indexOf(id int64) int {
	return slices.IndexFunc(s.records, func(p Project) bool { return p.ID == id })
}

// mintID returns a time-based identifier strictly greater than any seen before,
// so identifiers are never reused even after deletes or clock skew.
func (s *Store) mintID() int64 {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}
