package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `showcase is a catalog of projects with favourites and a single edit session.

Core concepts:
- Project: id, name, category, markdown description, tags, optional date, optional link.
- Favourite: a starred project id. Stars persist across restarts.
- Session: at most one add or edit form is open at a time and it belongs to its opener. Saving or deleting goes through it.

Workflow:
1) Browse with list_projects (search, category, sort, favourites_only) and get_project.
2) Star with toggle_favourite.
3) To add: open_add_session, then save_session with the full draft.
4) To edit: open_edit_session(id), then save_session with every field (omitted fields are cleared).
5) To delete: open_edit_session(id), then delete_project.
6) cancel_session discards an open form.

Editing requires editor capability. Over HTTP pass an editor bearer token.

Docs:
- catalog://docs/index
- catalog://projects (the interactive view as JSON)
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "catalog://docs/index",
		Name:        "docs_index",
		Title:       "showcase docs index",
		Description: "Tools, session rules and error codes.",
		Content: `# showcase: Agent Docs

## Tools

- ` + "`list_projects`" + ` runs a one-off query. It never changes the interactive view.
- ` + "`get_project`" + ` returns the long date and the description rendered as HTML.
- ` + "`list_categories`" + ` returns distinct categories in collated order.
- ` + "`toggle_favourite`" + ` flips a star. Ids are not checked against the catalog.
- ` + "`open_add_session`" + ` / ` + "`open_edit_session`" + ` open the single session.
- ` + "`save_session`" + ` commits a draft. In edit mode every field is replaced.
- ` + "`delete_project`" + ` deletes the project under the open edit session.
- ` + "`recent_activity`" + ` lists recent changes.

## Sessions

Only one session is open at a time. Opening another while one is open fails
with SESSION_OPEN. A failed validation keeps the session and its draft open.
The session belongs to the editor who opened it: only they may save or delete
through it, and only an editor may cancel it. Anyone else gets ACCESS_DENIED.
Dates are YYYY-MM-DD. Names must not be blank.

## Error codes

| Code | Meaning |
| --- | --- |
| ACCESS_DENIED | editor capability required, or the session belongs to another editor |
| PROJECT_NOT_FOUND | the id is not in the catalog |
| VALIDATION_FAILED | the draft was rejected; the message says why |
| SESSION_OPEN | finish or cancel the open session first |
| SESSION_NOT_FOUND | no matching session is open |
| NOT_EDITING | delete requires an edit session |
| INVALID_SORT | sort must be insertion, name or date |
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}

const catalogResourceURI = "catalog://projects"

// registerCatalogResource exposes the interactive screen as JSON.
func registerCatalogResource(server *sdkmcp.Server, app Catalog) {
	if app == nil {
		return
	}
	server.AddResource(&sdkmcp.Resource{
		URI:         catalogResourceURI,
		Name:        "projects",
		Title:       "Project catalog",
		Description: "The interactive view: cards, query, categories and session state.",
		MIMEType:    "application/json",
	}, func(ctx context.Context, _ *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
		sc, err := app.Render(ctx)
		if err != nil {
			return nil, fmt.Errorf("render catalog: %w", err)
		}
		payload, err := json.MarshalIndent(sc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal catalog: %w", err)
		}
		return &sdkmcp.ReadResourceResult{
			Contents: []*sdkmcp.ResourceContents{{
				URI:      catalogResourceURI,
				MIMEType: "application/json",
				Text:     string(payload),
			}},
		}, nil
	})
}
