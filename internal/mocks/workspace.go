package mocks

import (
	"context"
	"fmt"
	"sync"

	"aeosinnotion/pkg/aeos"
	"aeosinnotion/pkg/notion"
)

// WorkspaceCall records one call made to MockWorkspace.
//
//nolint:govet // fieldalignment: mock struct layout optimized for readability
type WorkspaceCall struct {
	Method string
	// Target is the database, page or block id the call addressed.
	Target string
	// Text is the title, status, comment or assignee filter the call carried.
	Text     string
	Icon     string
	Assignee string
	Blocks   []notion.Block
}

// MockWorkspace implements the workspace facade used by the plugins and the poller.
// Every call is appended to Calls in order.
//
//nolint:govet // fieldalignment: mock struct layout optimized for readability
type MockWorkspace struct {
	CreatePageFunc       func(ctx context.Context, databaseID, title, icon string, children []notion.Block, assignee string) string
	AppendChildrenFunc   func(ctx context.Context, blockID string, children []notion.Block) string
	RenamePageFunc       func(ctx context.Context, pageID, title string) aeos.Result
	UpdatePageStatusFunc func(ctx context.Context, pageID, status string) aeos.Result
	CommentOnPageFunc    func(ctx context.Context, pageID, text string) aeos.Result
	ArchivePageFunc      func(ctx context.Context, pageID string) aeos.Result
	CheckToDoFunc        func(ctx context.Context, blockID string) aeos.Result
	FindPageByTitleFunc  func(ctx context.Context, databaseID, title string) string
	QueryQueuedTasksFunc func(ctx context.Context, databaseID, assignee string) ([]notion.Page, error)
	ListToDosFunc        func(ctx context.Context, pageID string) ([]notion.Block, error)

	// Calls tracks every call for verification.
	Calls []WorkspaceCall

	nextID int
	mu     sync.Mutex
}

// NewMockWorkspace creates a mock workspace with default behavior.
// Default behavior: creates and appends succeed with sequential ids, updates succeed,
// lookups find nothing.
func NewMockWorkspace() *MockWorkspace {
	m := &MockWorkspace{}
	m.CreatePageFunc = func(context.Context, string, string, string, []notion.Block, string) string {
		return m.newID("page")
	}
	m.AppendChildrenFunc = func(context.Context, string, []notion.Block) string {
		return m.newID("block")
	}
	ok := func() aeos.Result { return aeos.Ok("") }
	m.RenamePageFunc = func(context.Context, string, string) aeos.Result { return ok() }
	m.UpdatePageStatusFunc = func(context.Context, string, string) aeos.Result { return ok() }
	m.CommentOnPageFunc = func(context.Context, string, string) aeos.Result { return ok() }
	m.ArchivePageFunc = func(context.Context, string) aeos.Result { return ok() }
	m.CheckToDoFunc = func(context.Context, string) aeos.Result { return ok() }
	m.FindPageByTitleFunc = func(context.Context, string, string) string { return "" }
	m.QueryQueuedTasksFunc = func(context.Context, string, string) ([]notion.Page, error) { return nil, nil }
	m.ListToDosFunc = func(context.Context, string) ([]notion.Block, error) { return nil, nil }
	return m
}

func (m *MockWorkspace) newID(prefix string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	return fmt.Sprintf("%s-%d", prefix, m.nextID)
}

func (m *MockWorkspace) record(call WorkspaceCall) {
	m.mu.Lock()
	m.Calls = append(m.Calls, call)
	m.mu.Unlock()
}

// CreatePage implements the workspace facade.
func (m *MockWorkspace) CreatePage(ctx context.Context, databaseID, title, icon string, children []notion.Block, assignee string) string {
	m.record(WorkspaceCall{Method: "CreatePage", Target: databaseID, Text: title, Icon: icon, Assignee: assignee, Blocks: children})
	return m.CreatePageFunc(ctx, databaseID, title, icon, children, assignee)
}

// AppendChildren implements the workspace facade.
func (m *MockWorkspace) AppendChildren(ctx context.Context, blockID string, children []notion.Block) string {
	m.record(WorkspaceCall{Method: "AppendChildren", Target: blockID, Blocks: children})
	return m.AppendChildrenFunc(ctx, blockID, children)
}

// RenamePage implements the workspace facade.
func (m *MockWorkspace) RenamePage(ctx context.Context, pageID, title string) aeos.Result {
	m.record(WorkspaceCall{Method: "RenamePage", Target: pageID, Text: title})
	return m.RenamePageFunc(ctx, pageID, title)
}

// UpdatePageStatus implements the workspace facade.
func (m *MockWorkspace) UpdatePageStatus(ctx context.Context, pageID, status string) aeos.Result {
	m.record(WorkspaceCall{Method: "UpdatePageStatus", Target: pageID, Text: status})
	return m.UpdatePageStatusFunc(ctx, pageID, status)
}

// CommentOnPage implements the workspace facade.
func (m *MockWorkspace) CommentOnPage(ctx context.Context, pageID, text string) aeos.Result {
	m.record(WorkspaceCall{Method: "CommentOnPage", Target: pageID, Text: text})
	return m.CommentOnPageFunc(ctx, pageID, text)
}

// ArchivePage implements the workspace facade.
func (m *MockWorkspace) ArchivePage(ctx context.Context, pageID string) aeos.Result {
	m.record(WorkspaceCall{Method: "ArchivePage", Target: pageID})
	return m.ArchivePageFunc(ctx, pageID)
}

// CheckToDo implements the workspace facade.
func (m *MockWorkspace) CheckToDo(ctx context.Context, blockID string) aeos.Result {
	m.record(WorkspaceCall{Method: "CheckToDo", Target: blockID})
	return m.CheckToDoFunc(ctx, blockID)
}

// FindPageByTitle implements the workspace facade.
func (m *MockWorkspace) FindPageByTitle(ctx context.Context, databaseID, title string) string {
	m.record(WorkspaceCall{Method: "FindPageByTitle", Target: databaseID, Text: title})
	return m.FindPageByTitleFunc(ctx, databaseID, title)
}

// QueryQueuedTasks implements the workspace facade.
func (m *MockWorkspace) QueryQueuedTasks(ctx context.Context, databaseID, assignee string) ([]notion.Page, error) {
	m.record(WorkspaceCall{Method: "QueryQueuedTasks", Target: databaseID, Text: assignee})
	return m.QueryQueuedTasksFunc(ctx, databaseID, assignee)
}

// ListToDos implements the workspace facade.
func (m *MockWorkspace) ListToDos(ctx context.Context, pageID string) ([]notion.Block, error) {
	m.record(WorkspaceCall{Method: "ListToDos", Target: pageID})
	return m.ListToDosFunc(ctx, pageID)
}

// --- Verification methods ---

// CallsTo returns the recorded calls of one method, in order.
func (m *MockWorkspace) CallsTo(method string) []WorkspaceCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var calls []WorkspaceCall
	for _, c := range m.Calls {
		if c.Method == method {
			calls = append(calls, c)
		}
	}
	return calls
}

// Writes returns "Method target text" for every mutating call, in order.
func (m *MockWorkspace) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var writes []string
	for _, c := range m.Calls {
		switch c.Method {
		case "FindPageByTitle", "QueryQueuedTasks", "ListToDos":
			continue
		}
		writes = append(writes, fmt.Sprintf("%s %s %s", c.Method, c.Target, c.Text))
	}
	return writes
}

// Reset clears call tracking.
func (m *MockWorkspace) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
}
