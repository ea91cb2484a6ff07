package aeos

import (
	"context"
	"fmt"
	"time"

	"aeosinnotion/pkg/logx"
)

// maxSequenceDepth bounds sequence commands that invoke other sequences.
const maxSequenceDepth = 16

// Runner executes command inputs against a registry.
type Runner struct {
	registry *Registry
	logger   *logx.Logger
}

// NewRunner creates a runner over reg.
func NewRunner(reg *Registry) *Runner {
	return &Runner{
		registry: reg,
		logger:   logx.NewLogger("runner"),
	}
}

// RunCommands runs inputs in order and returns the last result. It stops at the first failure.
func (r *Runner) RunCommands(ctx context.Context, inputs []string) Result {
	result := Ok("")
	for _, input := range inputs {
		result = r.run(ctx, input, 0)
		if !result.Success {
			return result
		}
	}
	return result
}

func (r *Runner) run(ctx context.Context, input string, depth int) Result {
	if depth > maxSequenceDepth {
		return Fail("Command nesting too deep: %s", input)
	}

	exe, ok := r.registry.Match(input)
	if !ok {
		r.logger.Warn("Command not found: %s", input)
		return Fail("Command not found: %s", input)
	}

	start := time.Now()
	var result Result
	if exe.Command.IsSequence() {
		result = r.runSteps(ctx, exe.Command.Sequence, exe.Args, depth+1)
	} else {
		result = r.call(ctx, exe)
	}
	r.logger.Debug("%q -> success=%t in %s", input, result.Success, time.Since(start).Round(time.Millisecond))
	return result
}

// call runs a function command, converting a panic into a failed result.
func (r *Runner) call(ctx context.Context, exe *Executable) (result Result) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("command %q panicked: %v", exe.Command.Format, p)
			result = Fail("Command %s failed: %v", exe.Command.Format, p)
		}
	}()
	return exe.Command.Function(ctx, exe.Args)
}

func (r *Runner) runSteps(ctx context.Context, steps []Step, args Args, depth int) Result {
	result := Ok("")
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return Fail("%v", fmt.Errorf("sequence interrupted: %w", err))
		}
		if step.Run != "" {
			result = r.run(ctx, Substitute(step.Run, args), depth)
			if !result.Success {
				return result
			}
		}
		if len(step.Steps) > 0 {
			result = r.runSteps(ctx, step.Steps, args, depth)
			if !result.Success {
				return result
			}
		}
	}
	return result
}
