package mcp

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ganot/showcase/internal/domain/activity"
	"github.com/ganot/showcase/internal/domain/query"
	"github.com/ganot/showcase/internal/domain/session"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// registerTools adds every catalog tool to server.
func registerTools(server *sdkmcp.Server, cfg Config) {
	app := cfg.Catalog
	sdkmcp.AddTool(server, ListProjectsTool(), ListProjectsHandler(app))
	sdkmcp.AddTool(server, GetProjectTool(), GetProjectHandler(app))
	sdkmcp.AddTool(server, ListCategoriesTool(), ListCategoriesHandler(app))
	sdkmcp.AddTool(server, ToggleFavouriteTool(), ToggleFavouriteHandler(app))
	sdkmcp.AddTool(server, OpenAddSessionTool(), OpenAddSessionHandler(app))
	sdkmcp.AddTool(server, OpenEditSessionTool(), OpenEditSessionHandler(app))
	sdkmcp.AddTool(server, SaveSessionTool(), SaveSessionHandler(app))
	sdkmcp.AddTool(server, CancelSessionTool(), CancelSessionHandler(app))
	sdkmcp.AddTool(server, DeleteProjectTool(), DeleteProjectHandler(app))
	if cfg.Activity != nil {
		sdkmcp.AddTool(server, RecentActivityTool(), RecentActivityHandler(cfg.Activity))
	}
}

// ListProjectsTool defines the MCP tool schema for listing projects.
func ListProjectsTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "Lists projects after search, category filter, favourites filter and sort. Does not change the interactive view.",
	}
}

// ListProjectsHandler runs a one-off query against the store.
func ListProjectsHandler(app Catalog) sdkmcp.ToolHandlerFor[ListProjectsInput, ProjectList] {
	return func(_ context.Context, _ *sdkmcp.CallToolRequest, input ListProjectsInput) (*sdkmcp.CallToolResult, ProjectList, error) {
		sort, err := query.ParseSortKey(input.Sort)
		if err != nil {
			return nil, ProjectList{}, toolError(err, session.State{})
		}
		st := query.State{
			Search:         input.Search,
			Category:       input.Category,
			Sort:           sort,
			FavouritesOnly: input.FavouritesOnly,
		}
		return nil, listResult(app.View(st)), nil
	}
}

// GetProjectTool defines the MCP tool schema for reading one project.
func GetProjectTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "get_project",
		Description: "Returns one project with its long date and rendered description",
	}
}

// GetProjectHandler looks up a project by id.
func GetProjectHandler(app Catalog) sdkmcp.ToolHandlerFor[ProjectIDInput, ProjectDetail] {
	return func(_ context.Context, _ *sdkmcp.CallToolRequest, input ProjectIDInput) (*sdkmcp.CallToolResult, ProjectDetail, error) {
		d, err := app.Lookup(input.ID)
		if err != nil {
			return nil, ProjectDetail{}, toolError(err, session.State{})
		}
		return nil, detailResult(d), nil
	}
}

// ListCategoriesTool defines the MCP tool schema for listing categories.
func ListCategoriesTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "list_categories",
		Description: "Lists the distinct categories present in the catalog",
	}
}

// ListCategoriesHandler returns the collated category list.
func ListCategoriesHandler(app Catalog) sdkmcp.ToolHandlerFor[EmptyInput, CategoryList] {
	return func(context.Context, *sdkmcp.CallToolRequest, EmptyInput) (*sdkmcp.CallToolResult, CategoryList, error) {
		return nil, CategoryList{Categories: app.Categories()}, nil
	}
}

// ToggleFavouriteTool defines the MCP tool schema for starring projects.
func ToggleFavouriteTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "toggle_favourite",
		Description: "Stars or unstars a project. The change is persisted.",
	}
}

// ToggleFavouriteHandler flips favourite membership for a project.
func ToggleFavouriteHandler(app Catalog) sdkmcp.ToolHandlerFor[ProjectIDInput, FavouriteResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input ProjectIDInput) (*sdkmcp.CallToolResult, FavouriteResult, error) {
		sc, err := app.ToggleFavourite(ctx, input.ID)
		if err != nil {
			return nil, FavouriteResult{}, toolError(err, sc.Session)
		}
		out := FavouriteResult{ID: input.ID, Favourite: slices.Contains(sc.Favourites, input.ID)}
		if sc.Notice != nil {
			out.Message = sc.Notice.Message
		}
		return nil, out, nil
	}
}

// OpenAddSessionTool defines the MCP tool schema for starting an add session.
func OpenAddSessionTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "open_add_session",
		Description: "Opens an add session with an empty draft. Requires editor capability.",
	}
}

// OpenAddSessionHandler opens an add session.
func OpenAddSessionHandler(app Catalog) sdkmcp.ToolHandlerFor[EmptyInput, SessionResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ EmptyInput) (*sdkmcp.CallToolResult, SessionResult, error) {
		sc, err := app.OpenAdd(ctx)
		if err != nil {
			return nil, SessionResult{}, toolError(err, sc.Session)
		}
		return nil, sessionResult(sc), nil
	}
}

// OpenEditSessionTool defines the MCP tool schema for starting an edit session.
func OpenEditSessionTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "open_edit_session",
		Description: "Opens an edit session pre-populated from a project. Requires editor capability.",
	}
}

// OpenEditSessionHandler opens an edit session for a project.
func OpenEditSessionHandler(app Catalog) sdkmcp.ToolHandlerFor[ProjectIDInput, SessionResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input ProjectIDInput) (*sdkmcp.CallToolResult, SessionResult, error) {
		sc, err := app.OpenEdit(ctx, input.ID)
		if err != nil {
			return nil, SessionResult{}, toolError(err, sc.Session)
		}
		return nil, sessionResult(sc), nil
	}
}

// SaveSessionTool defines the MCP tool schema for committing a draft.
func SaveSessionTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "save_session",
		Description: "Commits a draft through the open session: creates in add mode, replaces every field in edit mode. Only the editor who opened the session may save.",
	}
}

// SaveSessionHandler commits the supplied draft.
func SaveSessionHandler(app Catalog) sdkmcp.ToolHandlerFor[SaveSessionInput, SessionResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input SaveSessionInput) (*sdkmcp.CallToolResult, SessionResult, error) {
		draft := session.Draft{
			Name:        input.Name,
			Category:    input.Category,
			Description: input.Description,
			Tags:        cleanTags(input.Tags),
			Date:        strings.TrimSpace(input.Date),
			Link:        strings.TrimSpace(input.Link),
		}
		sc, err := app.Save(ctx, input.SessionID, draft)
		if err != nil {
			return nil, SessionResult{}, toolError(err, sc.Session)
		}
		return nil, sessionResult(sc), nil
	}
}

// CancelSessionTool defines the MCP tool schema for discarding a draft.
func CancelSessionTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "cancel_session",
		Description: "Closes the open session without saving. Requires editor capability.",
	}
}

// CancelSessionHandler closes the open session.
func CancelSessionHandler(app Catalog) sdkmcp.ToolHandlerFor[EmptyInput, SessionResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, _ EmptyInput) (*sdkmcp.CallToolResult, SessionResult, error) {
		sc, err := app.Cancel(ctx)
		if err != nil {
			return nil, SessionResult{}, toolError(err, sc.Session)
		}
		return nil, sessionResult(sc), nil
	}
}

// DeleteProjectTool defines the MCP tool schema for deleting a project.
func DeleteProjectTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "delete_project",
		Description: "Deletes the project under the open edit session and closes it. Requires editor capability.",
	}
}

// DeleteProjectHandler deletes the edited project.
func DeleteProjectHandler(app Catalog) sdkmcp.ToolHandlerFor[DeleteProjectInput, SessionResult] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input DeleteProjectInput) (*sdkmcp.CallToolResult, SessionResult, error) {
		sc, err := app.Delete(ctx, input.SessionID)
		if err != nil {
			return nil, SessionResult{}, toolError(err, sc.Session)
		}
		return nil, sessionResult(sc), nil
	}
}

// RecentActivityTool defines the MCP tool schema for the activity log.
func RecentActivityTool() *sdkmcp.Tool {
	return &sdkmcp.Tool{
		Name:        "recent_activity",
		Description: "Lists recent catalog changes, newest first",
	}
}

// RecentActivityHandler lists activity entries.
func RecentActivityHandler(svc ActivityService) sdkmcp.ToolHandlerFor[RecentActivityInput, ActivityList] {
	return func(ctx context.Context, _ *sdkmcp.CallToolRequest, input RecentActivityInput) (*sdkmcp.CallToolResult, ActivityList, error) {
		if input.Limit < 0 {
			return nil, ActivityList{}, errors.New("limit must not be negative")
		}
		opts := activity.ListActivityOptions{Limit: input.Limit}
		if input.ProjectID != 0 {
			id := input.ProjectID
			opts.ProjectID = &id
		}
		if input.ActivityType != "" {
			typ := activity.ActivityType(input.ActivityType)
			opts.ActivityType = &typ
		}
		entries, err := svc.GetRecentActivity(ctx, opts)
		if err != nil {
			return nil, ActivityList{}, fmt.Errorf("recent activity failed: %w", err)
		}
		return nil, activityResult(entries), nil
	}
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
