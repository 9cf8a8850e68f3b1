package mcp

import (
	"time"

	"github.com/ganot/showcase/internal/catalog"
	"github.com/ganot/showcase/internal/domain/activity"
	"github.com/ganot/showcase/internal/domain/session"
	"github.com/ganot/showcase/internal/domain/view"
)

// EmptyInput is the input of tools that take no arguments.
type EmptyInput struct{}

// ListProjectsInput represents the MCP tool input for listing projects.
type ListProjectsInput struct {
	Search         string `json:"search,omitempty" jsonschema:"case-insensitive substring matched against names and tags"`
	Category       string `json:"category,omitempty" jsonschema:"exact category to keep; omit for every category"`
	Sort           string `json:"sort,omitempty" jsonschema:"insertion (default), name or date"`
	FavouritesOnly bool   `json:"favourites_only,omitempty" jsonschema:"keep only starred projects"`
}

// ProjectIDInput identifies one project.
type ProjectIDInput struct {
	ID int64 `json:"id" jsonschema:"project identifier"`
}

// SaveSessionInput carries the draft committed by save_session.
type SaveSessionInput struct {
	SessionID   string   `json:"session_id,omitempty" jsonschema:"session to save; omit for the open session"`
	Name        string   `json:"name" jsonschema:"project name (required)"`
	Category    string   `json:"category,omitempty" jsonschema:"project category"`
	Description string   `json:"description,omitempty" jsonschema:"markdown description"`
	Tags        []string `json:"tags,omitempty" jsonschema:"tag list; omit or pass [] for none"`
	Date        string   `json:"date,omitempty" jsonschema:"YYYY-MM-DD or empty"`
	Link        string   `json:"link,omitempty" jsonschema:"absolute http(s) URL"`
}

// DeleteProjectInput names the edit session whose project is deleted.
type DeleteProjectInput struct {
	SessionID string `json:"session_id,omitempty" jsonschema:"edit session; omit for the open session"`
}

// RecentActivityInput filters the activity log.
type RecentActivityInput struct {
	ProjectID    int64  `json:"project_id,omitempty" jsonschema:"only entries for this project"`
	ActivityType string `json:"type,omitempty" jsonschema:"record_created, record_updated, record_deleted or favourite_toggled"`
	Limit        int    `json:"limit,omitempty" jsonschema:"maximum entries (default 50)"`
}

// ProjectCard is one project as listed.
type ProjectCard struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Favourite   bool     `json:"favourite"`
}

// ProjectList is the list_projects result.
type ProjectList struct {
	Projects []ProjectCard `json:"projects"`
	Empty    bool          `json:"empty"`
	Message  string        `json:"message,omitempty"`
}

// ProjectDetail is the get_project result.
type ProjectDetail struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	Description     string   `json:"description"`
	Tags            []string `json:"tags"`
	Favourite       bool     `json:"favourite"`
	Date            string   `json:"date"`
	LongDate        string   `json:"long_date"`
	DescriptionHTML string   `json:"description_html"`
	Link            string   `json:"link,omitempty"`
}

// CategoryList is the list_categories result.
type CategoryList struct {
	Categories []string `json:"categories"`
}

// FavouriteResult reports membership after a toggle.
type FavouriteResult struct {
	ID        int64  `json:"id"`
	Favourite bool   `json:"favourite"`
	Message   string `json:"message"`
}

// SessionDraft mirrors session.Draft.
type SessionDraft struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Date        string   `json:"date"`
	Link        string   `json:"link"`
}

// SessionResult reports the session after a session tool.
type SessionResult struct {
	SessionID string       `json:"session_id,omitempty"`
	Mode      string       `json:"mode"`
	ProjectID int64        `json:"project_id,omitempty"`
	Draft     SessionDraft `json:"draft"`
	Message   string       `json:"message,omitempty"`
	Total     int          `json:"total"`
}

// ActivityItem is one activity log entry.
type ActivityItem struct {
	ID        int64  `json:"id"`
	ProjectID int64  `json:"project_id,omitempty"`
	Type      string `json:"type"`
	Summary   string `json:"summary"`
	CreatedAt string `json:"created_at"`
}

// ActivityList is the recent_activity result.
type ActivityList struct {
	Entries []ActivityItem `json:"entries"`
}

func cardResult(c view.Card) ProjectCard {
	tags := make([]string, 0, len(c.Tags))
	for _, t := range c.Tags {
		tags = append(tags, t.Text)
	}
	return ProjectCard{
		ID:          c.ID,
		Name:        c.Name,
		Category:    c.Category,
		Description: c.Description,
		Tags:        tags,
		Favourite:   c.Favourite,
	}
}

func listResult(p view.Projection) ProjectList {
	out := ProjectList{Projects: make([]ProjectCard, 0, len(p.Cards)), Empty: p.Empty}
	for _, c := range p.Cards {
		out.Projects = append(out.Projects, cardResult(c))
	}
	if p.Empty {
		out.Message = p.EmptyMessage
	}
	return out
}

func detailResult(d view.DetailView) ProjectDetail {
	c := cardResult(d.Card)
	return ProjectDetail{
		ID:              c.ID,
		Name:            c.Name,
		Category:        c.Category,
		Description:     c.Description,
		Tags:            c.Tags,
		Favourite:       c.Favourite,
		Date:            d.Date,
		LongDate:        d.LongDate,
		DescriptionHTML: string(d.DescriptionHTML),
		Link:            d.Link,
	}
}

func sessionResult(sc catalog.Screen) SessionResult {
	st := sc.Session
	out := SessionResult{
		SessionID: st.ID,
		Mode:      string(st.Mode),
		ProjectID: st.RecordID,
		Draft:     draftResult(st.Draft),
		Total:     sc.Total,
	}
	if sc.Notice != nil {
		out.Message = sc.Notice.Message
	}
	return out
}

func draftResult(d session.Draft) SessionDraft {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return SessionDraft{
		Name:        d.Name,
		Category:    d.Category,
		Description: d.Description,
		Tags:        tags,
		Date:        d.Date,
		Link:        d.Link,
	}
}

func activityResult(entries []activity.ActivityEntry) ActivityList {
	out := ActivityList{Entries: make([]ActivityItem, 0, len(entries))}
	for _, e := range entries {
		item := ActivityItem{
			ID:        e.ID,
			Type:      string(e.ActivityType),
			Summary:   e.Summary,
			CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
		}
		if e.ProjectID != nil {
			item.ProjectID = *e.ProjectID
		}
		out.Entries = append(out.Entries, item)
	}
	return out
}
