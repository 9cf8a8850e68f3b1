// Package view projects a query result onto a presentation description.
//
// A projection carries every interaction hook its cards need, so a surface
// can discard the previous projection wholesale and attach the new one.
package view

import (
	"strconv"

	"github.com/ganot/showcase/internal/domain/project"
	"github.com/ganot/showcase/internal/domain/query"
)

// EmptyMessage is shown when the view has no records.
const EmptyMessage = "No projects found."

// Action names an interaction a hook triggers.
type Action string

const (
	ActionToggleFavourite Action = "favourite.toggle"
	ActionSelect          Action = "project.select"
	ActionActivateTag     Action = "tag.activate"
	ActionVisit           Action = "project.visit"
)

const (
	starOn  = "★"
	starOff = "☆"
)

// Hook binds an action to its target: a project id, a tag text or a URL.
type Hook struct {
	Action Action `json:"action"`
	Target string `json:"target"`
}

// Tag is a rendered tag badge.
type Tag struct {
	Text     string `json:"text"`
	Activate Hook   `json:"activate"`
}

// Card is the presentation of one record in the list.
type Card struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Category        string `json:"category"`
	Description     string `json:"description"`
	Tags            []Tag  `json:"tags"`
	Favourite       bool   `json:"favourite"`
	Star            string `json:"star"`
	ToggleFavourite Hook   `json:"toggle_favourite"`
	Select          Hook   `json:"select"`
}

// Projection is the full list presentation for one render.
type Projection struct {
	Cards        []Card `json:"cards"`
	Empty        bool   `json:"empty"`
	EmptyMessage string `json:"empty_message,omitempty"`
}

// Hooks lists every hook in the projection in card order.
func (p Projection) Hooks() []Hook {
	var hooks []Hook
	for _, c := range p.Cards {
		hooks = append(hooks, c.ToggleFavourite, c.Select)
		for _, tag := range c.Tags {
			hooks = append(hooks, tag.Activate)
		}
	}
	return hooks
}

// Render projects records, already filtered and ordered, against favs.
// Favourites that reference records outside the view are ignored.
func Render(records []project.Project, favs query.Favourites) Projection {
	if len(records) == 0 {
		return Projection{Cards: []Card{}, Empty: true, EmptyMessage: EmptyMessage}
	}

	cards := make([]Card, 0, len(records))
	for _, rec := range records {
		cards = append(cards, card(rec, favs != nil && favs.Has(rec.ID)))
	}
	return Projection{Cards: cards}
}

func card(rec project.Project, favourite bool) Card {
	target := strconv.FormatInt(rec.ID, 10)
	tags := make([]Tag, 0, len(rec.Tags))
	for _, text := range rec.Tags {
		tags = append(tags, Tag{Text: text, Activate: Hook{Action: ActionActivateTag, Target: text}})
	}
	return Card{
		ID:              rec.ID,
		Name:            rec.Name,
		Category:        rec.Category,
		Description:     rec.Description,
		Tags:            tags,
		Favourite:       favourite,
		Star:            star(favourite),
		ToggleFavourite: Hook{Action: ActionToggleFavourite, Target: target},
		Select:          Hook{Action: ActionSelect, Target: target},
	}
}

func star(favourite bool) string {
	if favourite {
		return starOn
	}
	return starOff
}
