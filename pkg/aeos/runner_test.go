package aeos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects the inputs its commands receive.
type recorder struct {
	calls []string
}

func (r *recorder) command(format string, result Result) Command {
	return Command{
		Format: format,
		Function: func(_ context.Context, args Args) Result {
			r.calls = append(r.calls, Substitute(format, args))
			return result
		},
	}
}

func TestRunCommands(t *testing.T) {
	rec := &recorder{}
	reg := NewRegistry()
	require.NoError(t, reg.Register(rec.command("say ${text}", Ok("said"))))
	require.NoError(t, reg.Register(rec.command("fail ${why}", Fail("it broke"))))
	runner := NewRunner(reg)
	ctx := context.Background()

	t.Run("last result wins", func(t *testing.T) {
		rec.calls = nil
		result := runner.RunCommands(ctx, []string{"say a", "say b"})
		assert.Equal(t, Ok("said"), result)
		assert.Equal(t, []string{"say a", "say b"}, rec.calls)
	})

	t.Run("stops at first failure", func(t *testing.T) {
		rec.calls = nil
		result := runner.RunCommands(ctx, []string{"say a", "fail now", "say c"})
		assert.False(t, result.Success)
		assert.Equal(t, "it broke", result.Message)
		assert.Equal(t, []string{"say a", "fail now"}, rec.calls)
	})

	t.Run("unknown command", func(t *testing.T) {
		result := runner.RunCommands(ctx, []string{"juggle"})
		assert.Equal(t, Fail("Command not found: juggle"), result)
	})

	t.Run("no inputs", func(t *testing.T) {
		assert.True(t, runner.RunCommands(ctx, nil).Success)
	})
}

func TestRunSequence(t *testing.T) {
	rec := &recorder{}
	reg := NewRegistry()
	require.NoError(t, reg.Register(rec.command("say ${text}", Ok(""))))
	require.NoError(t, reg.Register(Command{
		Format: "greet ${name}",
		Sequence: []Step{
			{Run: "say hello ${name}", Steps: []Step{
				{Run: "say nested ${name}"},
			}},
			{Run: "say bye ${name}"},
		},
	}))
	require.NoError(t, reg.Register(Command{
		Format:   "greet twice ${name}",
		Sequence: []Step{{Run: "greet ${name}"}, {Run: "greet ${name}"}},
	}))

	result := NewRunner(reg).RunCommands(context.Background(), []string{"greet twice Ada"})
	require.True(t, result.Success)
	assert.Equal(t, []string{
		"say hello Ada", "say nested Ada", "say bye Ada",
		"say hello Ada", "say nested Ada", "say bye Ada",
	}, rec.calls)
}

func TestRunSequenceStopsOnFailure(t *testing.T) {
	rec := &recorder{}
	reg := NewRegistry()
	require.NoError(t, reg.Register(rec.command("say ${text}", Ok(""))))
	require.NoError(t, reg.Register(Command{
		Format:   "broken",
		Sequence: []Step{{Run: "say first"}, {Run: "missing step"}, {Run: "say never"}},
	}))

	result := NewRunner(reg).RunCommands(context.Background(), []string{"broken"})
	assert.Equal(t, Fail("Command not found: missing step"), result)
	assert.Equal(t, []string{"say first"}, rec.calls)
}

func TestRunRecursiveSequence(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Command{Format: "loop", Sequence: []Step{{Run: "loop"}}}))

	result := NewRunner(reg).RunCommands(context.Background(), []string{"loop"})
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "nesting too deep")
}

func TestRunRecoversPanic(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Command{Format: "explode", Function: func(context.Context, Args) Result {
		panic("kaboom")
	}}))

	result := NewRunner(reg).RunCommands(context.Background(), []string{"explode"})
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "kaboom")
}
