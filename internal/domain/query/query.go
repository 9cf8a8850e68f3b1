// Package query derives ordered views from the record collection.
//
// Every function here is pure: inputs are never mutated and each call returns
// a freshly allocated view.
package query

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ganot/showcase/internal/domain/project"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ErrUnknownSort is returned for a sort key outside the supported set.
var ErrUnknownSort = errors.New("unknown sort key")

// SortKey selects the view ordering.
type SortKey string

const (
	// SortInsertion keeps record store order.
	SortInsertion SortKey = ""
	SortName      SortKey = "name"
	SortDate      SortKey = "date"
)

// ParseSortKey validates a user-supplied sort key. "insertion" and "" both
// select store order.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(s) {
	case SortInsertion, "insertion":
		return SortInsertion, nil
	case SortName, SortDate:
		return SortKey(s), nil
	}
	return SortInsertion, fmt.Errorf("%w: %q", ErrUnknownSort, s)
}

// AnyCategory disables the category filter.
const AnyCategory = ""

// State is the transient compound query.
type State struct {
	Search         string
	Category       string
	Sort           SortKey
	FavouritesOnly bool
}

// IsZero reports whether the state is the identity query.
func (s State) IsZero() bool {
	return s == State{}
}

// WithTag returns the state produced by activating a tag badge: the search
// term becomes the tag text and every other dimension is kept.
func (s State) WithTag(tag string) State {
	s.Search = tag
	return s
}

// Favourites is a membership test for the favourites filter.
type Favourites interface {
	Has(id int64) bool
}

// Apply filters and sorts records for st. favs is consulted only when
// st.FavouritesOnly is set and may be nil otherwise.
func Apply(records []project.Project, st State, favs Favourites) []project.Project {
	term := strings.ToLower(st.Search)

	view := make([]project.Project, 0, len(records))
	for _, rec := range records {
		if !matchesSearch(rec, term) {
			continue
		}
		if st.Category != AnyCategory && rec.Category != st.Category {
			continue
		}
		if st.FavouritesOnly && (favs == nil || !favs.Has(rec.ID)) {
			continue
		}
		view = append(view, rec.Clone())
	}

	switch st.Sort {
	case SortName:
		c := newCollator()
		slices.SortStableFunc(view, func(a, b project.Project) int {
			return c.CompareString(a.Name, b.Name)
		})
	case SortDate:
		slices.SortStableFunc(view, compareDateDesc)
	}

	return view
}

// Categories returns the distinct non-empty categories of records in
// collated order.
func Categories(records []project.Project) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, rec := range records {
		if rec.Category == "" {
			continue
		}
		if _, ok := seen[rec.Category]; ok {
			continue
		}
		seen[rec.Category] = struct{}{}
		out = append(out, rec.Category)
	}
	c := newCollator()
	slices.SortStableFunc(out, c.CompareString)
	return out
}

func matchesSearch(rec project.Project, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(rec.Name), term) {
		return true
	}
	return slices.ContainsFunc(rec.Tags, func(tag string) bool {
		return strings.Contains(strings.ToLower(tag), term)
	})
}

// compareDateDesc puts the most recent date first and undated records last.
func compareDateDesc(a, b project.Project) int {
	switch {
	case a.Date.IsZero() && b.Date.IsZero():
		return 0
	case a.Date.IsZero():
		return 1
	case b.Date.IsZero():
		return -1
	}
	return b.Date.Compare(a.Date)
}

// Collators keep internal buffers and must not be shared between goroutines.
func newCollator() *collate.Collator {
	return collate.New(language.English)
}
