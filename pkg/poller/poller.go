// Package poller watches the task board for queued tasks assigned to this worker
// and executes their checklists one command at a time.
package poller

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"aeosinnotion/pkg/aeos"
	"aeosinnotion/pkg/config"
	"aeosinnotion/pkg/logx"
	"aeosinnotion/pkg/metrics"
	"aeosinnotion/pkg/notion"
	"aeosinnotion/pkg/persistence"
)

// RelayHandlerName is the notification handler that comments on the current task.
const RelayHandlerName = "aeos-in-notion"

// Comments written to the task page.
const (
	completedComment = "Task completed successfully"
	failedCommandFmt = "Failed to complete the following command:\n%s\n\n%s"
	failedListFmt    = "Failed to read the task list:\n\n%s"
)

// State is the poller's position in its check/execute cycle.
type State int32

// Poller states.
const (
	StateIdle State = iota
	StateChecking
	StateExecuting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateChecking:
		return "checking"
	case StateExecuting:
		return "executing"
	}
	return "unknown"
}

// TaskBoard is the slice of the Notion workspace the poller uses.
type TaskBoard interface {
	QueryQueuedTasks(ctx context.Context, databaseID, assignee string) ([]notion.Page, error)
	ListToDos(ctx context.Context, pageID string) ([]notion.Block, error)
	UpdatePageStatus(ctx context.Context, pageID, status string) aeos.Result
	CheckToDo(ctx context.Context, blockID string) aeos.Result
	CommentOnPage(ctx context.Context, pageID, text string) aeos.Result
}

// Journal records executions.
type Journal interface {
	StartRun(ctx context.Context, taskID, taskTitle, worker string) (string, error)
	RecordStep(ctx context.Context, runID string, step *persistence.Step) error
	FinishRun(ctx context.Context, runID, status, message string) error
}

// Options configures a Poller.
//
//nolint:govet // fieldalignment: Logical grouping preferred over memory optimization
type Options struct {
	TasksDB      string
	Name         string
	PollInterval time.Duration
	StartDelay   time.Duration
	// Journal is optional.
	Journal  Journal
	Recorder metrics.Recorder
}

type currentTask struct {
	id    string
	title string
}

// Poller runs at most one check or execution at a time.
//
//nolint:govet // fieldalignment: Logical grouping preferred over memory optimization
type Poller struct {
	board    TaskBoard
	runner   aeos.CommandRunner
	opts     Options
	recorder metrics.Recorder
	logger   *logx.Logger

	busy  atomic.Bool
	state atomic.Int32
	wg    sync.WaitGroup

	mu             sync.RWMutex
	current        currentTask
	lastEditedTime time.Time
}

// New creates a poller. A zero poll interval or a negative start delay falls back to the default.
func New(board TaskBoard, runner aeos.CommandRunner, opts Options) *Poller {
	if opts.PollInterval <= 0 {
		opts.PollInterval = config.DefaultPollInterval
	}
	if opts.StartDelay < 0 {
		opts.StartDelay = config.DefaultStartDelay
	}
	return &Poller{
		board:    board,
		runner:   runner,
		opts:     opts,
		recorder: metrics.OrNop(opts.Recorder),
		logger:   logx.NewLogger("poller"),
	}
}

// Run waits for the start delay, then ticks every poll interval until ctx is done.
// An execution in flight when ctx is cancelled finishes before Run returns.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("🔎 Watching tasks assigned to %q (first check in %v, then every %v)",
		p.opts.Name, p.opts.StartDelay, p.opts.PollInterval)

	if p.opts.StartDelay > 0 {
		delay := time.NewTimer(p.opts.StartDelay)
		select {
		case <-ctx.Done():
			delay.Stop()
			return nil
		case <-delay.C:
		}
	}

	ticker := time.NewTicker(p.opts.PollInterval)
	defer ticker.Stop()

	p.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Shutting down, waiting for in-flight task")
			p.wg.Wait()
			return nil
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick starts a check in the background unless one is already in flight.
// It reports whether a check was started.
func (p *Poller) Tick(ctx context.Context) bool {
	if !p.busy.CompareAndSwap(false, true) {
		p.recorder.ObserveTick(metrics.TickBusy)
		return false
	}

	// Executions are never interrupted by shutdown.
	execCtx := context.WithoutCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.busy.Store(false)
		p.recorder.ObserveTick(p.check(execCtx))
	}()
	return true
}

// Wait blocks until the in-flight check, if any, has finished.
func (p *Poller) Wait() {
	p.wg.Wait()
}

// State returns the current state.
func (p *Poller) State() State {
	return State(p.state.Load())
}

// CurrentTask returns the id of the executing task, or "".
func (p *Poller) CurrentTask() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current.id
}

// LastEditedTime returns the last-edited time of the most recently selected task.
func (p *Poller) LastEditedTime() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastEditedTime
}

// CommentOnCurrentTask relays a notification as a comment on the executing task.
// It returns false when no task is executing.
func (p *Poller) CommentOnCurrentTask(ctx context.Context, title, body string) bool {
	p.mu.RLock()
	id := p.current.id
	p.mu.RUnlock()
	if id == "" {
		return false
	}
	return p.board.CommentOnPage(ctx, id, title+": "+body).Success
}

// check selects the most recently edited queued task, if any, and executes it.
// It returns the tick outcome.
func (p *Poller) check(ctx context.Context) string {
	p.state.Store(int32(StateChecking))
	defer p.state.Store(int32(StateIdle))

	tasks, err := p.board.QueryQueuedTasks(ctx, p.opts.TasksDB, p.opts.Name)
	if err != nil {
		p.logger.Warn("failed to query queued tasks: %v", err)
		return metrics.TickError
	}
	if len(tasks) == 0 {
		return metrics.TickIdle
	}

	task := &tasks[0]
	p.mu.Lock()
	if !task.LastEditedTime.IsZero() {
		p.lastEditedTime = task.LastEditedTime
	}
	p.mu.Unlock()

	if result := p.board.UpdatePageStatus(ctx, task.ID, notion.StatusRunning); !result.Success {
		p.logger.Warn("failed to mark task %s running: %s", task.ID, result.Message)
	}

	p.state.Store(int32(StateExecuting))
	if p.execute(ctx, task) {
		return metrics.TickExecuted
	}
	return metrics.TickError
}

// normalizeQuotes replaces typographic double quotes with ASCII ones.
func normalizeQuotes(s string) string {
	return strings.NewReplacer("“", `"`, "”", `"`).Replace(s)
}
