package notion

import (
	"context"
	"fmt"

	"aeosinnotion/pkg/aeos"
	"aeosinnotion/pkg/logx"
)

const (
	taskQueryPageSize = 10
	childrenPageSize  = 100
	titleQueryLimit   = 10
)

// Workspace is the failure-absorbing facade the plugins and the poller use.
// Command-facing operations log API failures and return an empty id or a failed
// Result. The poller-facing reads return errors so "no work" and "unreachable"
// stay distinguishable.
type Workspace struct {
	client *Client
	logger *logx.Logger
}

// NewWorkspace wraps a client.
func NewWorkspace(client *Client) *Workspace {
	return &Workspace{
		client: client,
		logger: logx.NewLogger("notion"),
	}
}

// failure reports err as a failed Result. A missing page is named rather than
// surfacing the raw API envelope.
func failure(pageID string, err error) aeos.Result {
	if pageID != "" && IsNotFound(err) {
		return aeos.Result{Success: false, Message: "Page not found: " + pageID}
	}
	return aeos.Result{Success: false, Message: err.Error()}
}

func titleProperty(title string) PropertyValue {
	return PropertyValue{Title: []RichText{NewText(title, "")}}
}

// CreatePage adds a page to a database and returns its id, or "" on failure.
// The icon is normalized to its first glyph. assignee, when set, fills the Assign select.
func (w *Workspace) CreatePage(ctx context.Context, databaseID, title, icon string, children []Block, assignee string) string {
	props := map[string]PropertyValue{
		PropertyTitle: titleProperty(title),
	}
	if assignee != "" {
		props[PropertyAssign] = PropertyValue{Select: &SelectOption{Name: assignee}}
	}

	page, err := w.client.CreatePage(ctx, &CreatePageRequest{
		Parent:     Parent{DatabaseID: databaseID},
		Icon:       &Icon{Type: "emoji", Emoji: NormalizeIcon(icon)},
		Properties: props,
		Children:   children,
	})
	if err != nil {
		w.logger.Error("failed to create page %q: %v", title, err)
		return ""
	}
	w.logger.Info("Page created with ID: %s", page.ID)
	return page.ID
}

// AppendChildren appends blocks under blockID and returns the first new block's id,
// or "" on failure or an empty result.
func (w *Workspace) AppendChildren(ctx context.Context, blockID string, children []Block) string {
	list, err := w.client.AppendBlockChildren(ctx, blockID, children)
	if err != nil {
		w.logger.Error("failed to append to block %s: %v", blockID, err)
		return ""
	}
	if len(list.Results) == 0 {
		w.logger.Warn("append to block %s returned no results", blockID)
		return ""
	}
	return list.Results[0].ID
}

// RenamePage sets a page's title.
func (w *Workspace) RenamePage(ctx context.Context, pageID, title string) aeos.Result {
	_, err := w.client.UpdatePage(ctx, pageID, &UpdatePageRequest{
		Properties: map[string]PropertyValue{PropertyTitle: titleProperty(title)},
	})
	if err != nil {
		w.logger.Error("failed to rename page %s: %v", pageID, err)
		return failure(pageID, err)
	}
	return aeos.Result{Success: true}
}

// UpdatePageStatus sets a page's Status property.
func (w *Workspace) UpdatePageStatus(ctx context.Context, pageID, status string) aeos.Result {
	_, err := w.client.UpdatePage(ctx, pageID, &UpdatePageRequest{
		Properties: map[string]PropertyValue{PropertyStatus: {Status: &SelectOption{Name: status}}},
	})
	if err != nil {
		w.logger.Error("failed to set status of page %s to %s: %v", pageID, status, err)
		return failure(pageID, err)
	}
	w.logger.Debug("page %s status -> %s", pageID, status)
	return aeos.Result{Success: true}
}

// CommentOnPage posts a comment on a page.
func (w *Workspace) CommentOnPage(ctx context.Context, pageID, text string) aeos.Result {
	if _, err := w.client.CreateComment(ctx, pageID, text); err != nil {
		w.logger.Error("failed to comment on page %s: %v", pageID, err)
		return failure(pageID, err)
	}
	return aeos.Result{Success: true}
}

// ArchivePage archives a page. Notion has no hard delete.
func (w *Workspace) ArchivePage(ctx context.Context, pageID string) aeos.Result {
	archived := true
	if _, err := w.client.UpdatePage(ctx, pageID, &UpdatePageRequest{Archived: &archived}); err != nil {
		w.logger.Error("failed to archive page %s: %v", pageID, err)
		return failure(pageID, err)
	}
	return aeos.Result{Success: true}
}

// FindPageByTitle returns the id of the first page titled exactly title whose parent
// is databaseID, or "" when none matches or the query fails.
func (w *Workspace) FindPageByTitle(ctx context.Context, databaseID, title string) string {
	if databaseID == "" {
		return ""
	}
	list, err := w.client.QueryDatabase(ctx, databaseID, &QueryRequest{
		Filter:   &Filter{Property: PropertyName, Title: &Condition{Equals: title}},
		PageSize: titleQueryLimit,
	})
	if err != nil {
		w.logger.Error("failed to look up page %q: %v", title, err)
		return ""
	}
	for i := range list.Results {
		parent := list.Results[i].Parent
		if parent.Type == "database_id" && SameID(parent.DatabaseID, databaseID) {
			return list.Results[i].ID
		}
	}
	return ""
}

// QueryQueuedTasks returns Queued tasks assigned to assignee, most recently edited first.
func (w *Workspace) QueryQueuedTasks(ctx context.Context, databaseID, assignee string) ([]Page, error) {
	list, err := w.client.QueryDatabase(ctx, databaseID, &QueryRequest{
		Filter: &Filter{And: []Filter{
			{Property: PropertyAssign, Select: &Condition{Equals: assignee}},
			{Property: PropertyStatus, Status: &Condition{Equals: StatusQueued}},
		}},
		Sorts:    []Sort{{Timestamp: "last_edited_time", Direction: "descending"}},
		PageSize: taskQueryPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query queued tasks: %w", err)
	}
	return list.Results, nil
}

// ListToDos returns the page's to_do blocks in document order, following pagination.
func (w *Workspace) ListToDos(ctx context.Context, pageID string) ([]Block, error) {
	var todos []Block
	cursor := ""
	for {
		list, err := w.client.ListBlockChildren(ctx, pageID, cursor, childrenPageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to list children of %s: %w", pageID, err)
		}
		for i := range list.Results {
			if list.Results[i].Type == BlockToDo && list.Results[i].ToDo != nil {
				todos = append(todos, list.Results[i])
			}
		}
		if !list.HasMore || list.NextCursor == "" {
			return todos, nil
		}
		cursor = list.NextCursor
	}
}

// CheckToDo marks a to_do block checked.
func (w *Workspace) CheckToDo(ctx context.Context, blockID string) aeos.Result {
	if _, err := w.client.SetToDoChecked(ctx, blockID, true); err != nil {
		w.logger.Error("failed to check to-do %s: %v", blockID, err)
		return failure("", err)
	}
	return aeos.Result{Success: true}
}
