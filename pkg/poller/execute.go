package poller

import (
	"context"
	"fmt"
	"time"

	"aeosinnotion/pkg/aeos"
	"aeosinnotion/pkg/notion"
	"aeosinnotion/pkg/persistence"
)

// execute runs the unchecked to-dos of task in order. It returns false only when
// the checklist could not be read.
func (p *Poller) execute(ctx context.Context, task *notion.Page) bool {
	title := task.Title()
	p.setCurrent(currentTask{id: task.ID, title: title})
	defer p.setCurrent(currentTask{})

	p.logger.Info("▶️  Running task %q (%s)", title, task.ID)
	runID := p.startRun(ctx, task.ID, title)

	todos, err := p.board.ListToDos(ctx, task.ID)
	if err != nil {
		p.logger.Error("failed to list to-dos of %s: %v", task.ID, err)
		p.fail(ctx, task.ID, runID, fmt.Sprintf(failedListFmt, err))
		return false
	}

	final := aeos.Ok("")
	for i := range todos {
		todo := &todos[i]
		if todo.ToDo == nil || todo.ToDo.Checked {
			continue
		}

		command := normalizeQuotes(todo.Text())
		start := time.Now()
		final = p.runner.RunCommands(ctx, []string{command})
		finished := time.Now()
		p.recorder.ObserveCommand(final.Success, finished.Sub(start))
		p.recordStep(ctx, runID, &persistence.Step{
			Position:   i,
			BlockID:    todo.ID,
			Command:    command,
			Success:    final.Success,
			Message:    final.Message,
			StartedAt:  start,
			FinishedAt: finished,
		})

		if !final.Success {
			p.logger.Warn("Command %q failed: %s", command, final.Message)
			p.fail(ctx, task.ID, runID, fmt.Sprintf(failedCommandFmt, command, final.Message))
			return true
		}

		p.logger.Info("Command %q resolved successfully", command)
		if result := p.board.CheckToDo(ctx, todo.ID); !result.Success {
			p.logger.Warn("failed to check to-do %s: %s", todo.ID, result.Message)
		}
	}

	p.board.UpdatePageStatus(ctx, task.ID, notion.StatusDone)
	if final.Message != "" {
		p.board.CommentOnPage(ctx, task.ID, final.Message)
	}
	p.board.CommentOnPage(ctx, task.ID, completedComment)
	p.finishRun(ctx, runID, persistence.RunDone, final.Message)
	p.recorder.ObserveTask(notion.StatusDone)
	p.logger.Info("✅ Task %q completed", title)
	return true
}

func (p *Poller) fail(ctx context.Context, taskID, runID, comment string) {
	p.board.UpdatePageStatus(ctx, taskID, notion.StatusIssue)
	p.board.CommentOnPage(ctx, taskID, comment)
	p.finishRun(ctx, runID, persistence.RunIssue, comment)
	p.recorder.ObserveTask(notion.StatusIssue)
}

func (p *Poller) setCurrent(t currentTask) {
	p.mu.Lock()
	p.current = t
	p.mu.Unlock()
}

// Journal failures are logged and never affect the task.

func (p *Poller) startRun(ctx context.Context, taskID, title string) string {
	if p.opts.Journal == nil {
		return ""
	}
	runID, err := p.opts.Journal.StartRun(ctx, taskID, title, p.opts.Name)
	if err != nil {
		p.logger.Warn("failed to journal run for %s: %v", taskID, err)
		return ""
	}
	return runID
}

func (p *Poller) recordStep(ctx context.Context, runID string, step *persistence.Step) {
	if runID == "" {
		return
	}
	if err := p.opts.Journal.RecordStep(ctx, runID, step); err != nil {
		p.logger.Warn("failed to journal step %q: %v", step.Command, err)
	}
}

func (p *Poller) finishRun(ctx context.Context, runID, status, message string) {
	if runID == "" {
		return
	}
	if err := p.opts.Journal.FinishRun(ctx, runID, status, message); err != nil {
		p.logger.Warn("failed to journal outcome of run %s: %v", runID, err)
	}
}
