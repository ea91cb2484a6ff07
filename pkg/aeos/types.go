// Package aeos is the in-process command framework the bridge dispatches checklist
// items through: a registry of command formats, a runner for function and sequence
// commands, a planner that rewrites free text into catalog commands, and a notifier.
package aeos

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Result is the outcome of running a command.
type Result struct {
	Success bool
	Message string
}

// Ok returns a successful result with an optional message.
func Ok(message string) Result {
	return Result{Success: true, Message: message}
}

// Fail returns a failed result with a formatted message.
func Fail(format string, args ...any) Result {
	return Result{Success: false, Message: fmt.Sprintf(format, args...)}
}

// Args are the placeholder values captured from a command input.
type Args map[string]string

// Function implements a built-in command.
type Function func(ctx context.Context, args Args) Result

// Step is one action of a sequence command. Run is a command input that may reference
// the parent's ${placeholders}; Steps run after it, in order.
type Step struct {
	Run   string `yaml:"run"`
	Steps []Step `yaml:"steps,omitempty"`
}

// UnmarshalYAML accepts either a bare string or a {run, steps} mapping.
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		s.Run = node.Value
		return nil
	}
	type plain Step
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = Step(p)
	return nil
}

// Command is a registered command definition. Exactly one of Function or Sequence is set.
//
//nolint:govet // fieldalignment: Logical grouping preferred over memory optimization
type Command struct {
	Format              string
	Description         string
	RequiresApplication string
	RequiresExactMatch  bool
	Function            Function
	Sequence            []Step
}

// IsSequence reports whether the command runs an action sequence.
func (c *Command) IsSequence() bool {
	return c.Function == nil && len(c.Sequence) > 0
}

// Plugin contributes a named group of commands.
type Plugin interface {
	Name() string
	Description() string
	Version() string
	Commands() []Command
	Enabled() bool
}

// Executable is a command matched against an input, with its captured arguments.
type Executable struct {
	Command *Command
	Args    Args
	Input   string
}

// CommandRunner runs textual command inputs.
type CommandRunner interface {
	RunCommands(ctx context.Context, inputs []string) Result
}

// TextGenerator produces a completion for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}
