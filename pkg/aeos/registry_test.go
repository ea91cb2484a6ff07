package aeos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context, Args) Result { return Ok("") }

func newTestRegistry(t *testing.T, formats ...string) *Registry {
	t.Helper()
	reg := NewRegistry()
	for _, f := range formats {
		require.NoError(t, reg.Register(Command{Format: f, Function: noop}))
	}
	return reg
}

func TestRegisterValidation(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Command{Format: "say ${text}", Function: noop}))

	assert.Error(t, reg.Register(Command{Format: "say ${text}", Function: noop}), "duplicate format")
	assert.Error(t, reg.Register(Command{Format: "  ", Function: noop}), "empty format")
	assert.Error(t, reg.Register(Command{Format: "bare"}), "no implementation")
}

func TestLookupAndFormats(t *testing.T) {
	reg := newTestRegistry(t, "b ${x}", "a ${y}", "c")

	assert.Equal(t, []string{"b ${x}", "a ${y}", "c"}, reg.Formats())

	cmd, ok := reg.Lookup("a ${y}")
	require.True(t, ok)
	assert.Equal(t, "a ${y}", cmd.Format)

	_, ok = reg.Lookup("a")
	assert.False(t, ok)
}

func TestMatch(t *testing.T) {
	reg := newTestRegistry(t,
		"say ${text}",
		"aeos-in-notion:create task with ${title} ${description} ${tasks}",
		"notify ${title}: ${body}",
		"rename page ${id} to ${title}",
	)
	require.NoError(t, reg.Register(Command{Format: "delete page with id ${id}", RequiresExactMatch: true, Function: noop}))

	tests := []struct {
		name   string
		input  string
		format string
		args   Args
	}{
		{"simple", "say hello world", "say ${text}", Args{"text": "hello world"}},
		{"case and spacing", "  SAY   hello\tthere ", "say ${text}", Args{"text": "hello there"}},
		{"quoted value stripped", `say "hi there"`, "say ${text}", Args{"text": "hi there"}},
		{
			"quoted multi placeholder",
			`aeos-in-notion:create task with "Weekly report" 'Summarize the week' say hi; notify a: b`,
			"aeos-in-notion:create task with ${title} ${description} ${tasks}",
			Args{"title": "Weekly report", "description": "Summarize the week", "tasks": "say hi; notify a: b"},
		},
		{"literal separator", "notify Build: finished in 3s", "notify ${title}: ${body}", Args{"title": "Build", "body": "finished in 3s"}},
		{"inner literal", "rename page abc-123 to Quarterly plan", "rename page ${id} to ${title}", Args{"id": "abc-123", "title": "Quarterly plan"}},
		{"exact match", "delete page with id abc", "delete page with id ${id}", Args{"id": "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exe, ok := reg.Match(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.format, exe.Command.Format)
			assert.Equal(t, tt.args, exe.Args)
			assert.Equal(t, tt.input, exe.Input)
		})
	}
}

func TestMatchExactIsCaseSensitive(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Command{Format: "delete page with id ${id}", RequiresExactMatch: true, Function: noop}))

	_, ok := reg.Match("Delete page with id abc")
	assert.False(t, ok)
	_, ok = reg.Match("delete  page with id abc")
	assert.False(t, ok)
}

func TestMatchPrefersMostSpecific(t *testing.T) {
	reg := newTestRegistry(t, "${anything}", "say ${text}", "say hello to ${name}")

	exe, ok := reg.Match("say hello to Ada")
	require.True(t, ok)
	assert.Equal(t, "say hello to ${name}", exe.Command.Format)

	exe, ok = reg.Match("say goodbye")
	require.True(t, ok)
	assert.Equal(t, "say ${text}", exe.Command.Format)

	exe, ok = reg.Match("dance")
	require.True(t, ok)
	assert.Equal(t, "${anything}", exe.Command.Format)
}

func TestParse(t *testing.T) {
	reg := newTestRegistry(t, "say ${text}", "notify ${title}: ${body}")

	exes, err := reg.Parse("say one\n- say two; notify T: \"a; b\"\n\n1. say three")
	require.NoError(t, err)
	require.Len(t, exes, 4)
	assert.Equal(t, "one", exes[0].Args["text"])
	assert.Equal(t, "two", exes[1].Args["text"])
	assert.Equal(t, "a; b", exes[2].Args["body"])
	assert.Equal(t, "three", exes[3].Args["text"])

	_, err = reg.Parse("say one\nfly to the moon")
	var unknown *UnknownCommandError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "fly to the moon", unknown.Input)
	assert.Equal(t, "Command not found: fly to the moon", err.Error())

	_, err = reg.Parse(" \n ; ")
	assert.ErrorIs(t, err, ErrNoCommands)
}

func TestInputString(t *testing.T) {
	reg := newTestRegistry(t, "say ${text}", "rename page ${id} to ${title}", "create ${title} ${body}")

	for _, input := range []string{"say  hello   world", "rename page abc to New name", `create "Two words" rest of it`} {
		exe, ok := reg.Match(input)
		require.True(t, ok, input)

		rendered := InputString(exe)
		again, ok := reg.Match(rendered)
		require.True(t, ok, rendered)
		assert.Equal(t, exe.Args, again.Args, "rendered %q", rendered)
	}

	exe, _ := reg.Match("say  hello   world")
	assert.Equal(t, "say hello world", InputString(exe))
}

func TestSubstitute(t *testing.T) {
	assert.Equal(t, "hello Ada, ${missing}", Substitute("hello ${name}, ${missing}", Args{"name": "Ada"}))
}

type testPlugin struct {
	enabled  bool
	commands []Command
}

func (p *testPlugin) Name() string        { return "test" }
func (p *testPlugin) Description() string { return "test plugin" }
func (p *testPlugin) Version() string     { return "0.0.1" }
func (p *testPlugin) Commands() []Command { return p.commands }
func (p *testPlugin) Enabled() bool       { return p.enabled }

func TestRegisterPlugin(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.RegisterPlugin(&testPlugin{enabled: false, commands: []Command{{Format: "off", Function: noop}}}))
	assert.Empty(t, reg.Formats())
	assert.Empty(t, reg.Plugins())

	require.NoError(t, reg.RegisterPlugin(&testPlugin{enabled: true, commands: []Command{{Format: "on", Function: noop}}}))
	assert.Equal(t, []string{"on"}, reg.Formats())
	assert.Len(t, reg.Plugins(), 1)
}
