package aeosinnotion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aeosinnotion/internal/mocks"
	"aeosinnotion/pkg/aeos"
	"aeosinnotion/pkg/notion"
)

func noop(context.Context, aeos.Args) aeos.Result { return aeos.Ok("") }

type fixture struct {
	ws     *mocks.MockWorkspace
	gen    *mocks.MockTextGenerator
	reg    *aeos.Registry
	runner *aeos.Runner
}

func newFixture(t *testing.T, gen *mocks.MockTextGenerator) *fixture {
	t.Helper()
	f := &fixture{ws: mocks.NewMockWorkspace(), gen: gen, reg: aeos.NewRegistry()}
	require.NoError(t, f.reg.Register(aeos.Command{Format: "say ${text}", Function: noop}))
	require.NoError(t, f.reg.Register(aeos.Command{Format: "notify ${title}: ${body}", Function: noop}))

	var generator aeos.TextGenerator
	if gen != nil {
		generator = gen
	}
	p := New(f.ws, f.reg, aeos.NewPlanner(f.reg, nil), generator, Options{
		TasksDB:    "tasks-db",
		CommandsDB: "commands-db",
		Name:       "aeos",
	})
	require.NoError(t, f.reg.RegisterPlugin(p))
	f.runner = aeos.NewRunner(f.reg)
	return f
}

func (f *fixture) run(input string) aeos.Result {
	return f.runner.RunCommands(context.Background(), []string{input})
}

func texts(blocks []notion.Block) []string {
	out := make([]string, len(blocks))
	for i := range blocks {
		out[i] = blocks[i].Text()
	}
	return out
}

func TestPluginMetadata(t *testing.T) {
	p := New(nil, nil, nil, nil, Options{})
	assert.Equal(t, "aeos-in-notion", p.Name())
	assert.Equal(t, "0.0.1", p.Version())
	assert.True(t, p.Enabled())
	assert.Len(t, p.Commands(), 5)
}

func TestCreateTask(t *testing.T) {
	f := newFixture(t, nil)
	f.ws.FindPageByTitleFunc = func(_ context.Context, _, title string) string {
		if title == "say ${text}" {
			return "aaaa-bbbb"
		}
		return ""
	}

	result := f.run(`aeos-in-notion:create task with "Weekly report" "Sum it up\nfor the week" say hi; notify Done: yes`)
	require.True(t, result.Success, result.Message)
	assert.Equal(t, "Task created: https://www.notion.so/page-1", result.Message)

	calls := f.ws.CallsTo("CreatePage")
	require.Len(t, calls, 1)
	call := calls[0]
	assert.Equal(t, "tasks-db", call.Target)
	assert.Equal(t, "Weekly report", call.Text)
	assert.Equal(t, notion.DefaultIcon, call.Icon)
	assert.Equal(t, "aeos", call.Assignee)
	assert.Equal(t, []string{"Description", "Sum it up\nfor the week", "Task List", "say hi", "notify Done: yes"}, texts(call.Blocks))

	todo := call.Blocks[3].ToDo
	require.NotNil(t, todo)
	require.Len(t, todo.RichText, 1)
	require.NotNil(t, todo.RichText[0].Text.Link)
	assert.Equal(t, "https://www.notion.so/aaaabbbb", todo.RichText[0].Text.Link.URL)
	assert.Nil(t, call.Blocks[4].ToDo.RichText[0].Text.Link)

	for _, lookup := range f.ws.CallsTo("FindPageByTitle") {
		assert.Equal(t, "commands-db", lookup.Target)
	}
}

func TestCreateTaskWithIcon(t *testing.T) {
	f := newFixture(t, nil)

	result := f.run(`aeos-in-notion:create task with icon 🧑‍🚀 Launch "Go to space" say liftoff`)
	require.True(t, result.Success, result.Message)

	call := f.ws.CallsTo("CreatePage")[0]
	assert.Equal(t, "Launch", call.Text)
	assert.Equal(t, "🧑‍🚀", call.Icon)
	assert.Equal(t, []string{"Description", "Go to space", "Task List", "say liftoff"}, texts(call.Blocks))
}

func TestCreateTaskFallback(t *testing.T) {
	f := newFixture(t, nil)

	result := f.run(`aeos-in-notion:create task with Chores "Tidy up" dance wildly`)
	require.True(t, result.Success, result.Message)

	assert.Equal(t, []string{
		"CreatePage tasks-db Chores",
		"CommentOnPage page-1 Wasn't sure what tasks to list for this one!",
	}, f.ws.Writes())

	blocks := f.ws.CallsTo("CreatePage")[0].Blocks
	require.Len(t, blocks, 4)
	require.NotNil(t, blocks[3].ToDo)
	assert.Empty(t, blocks[3].ToDo.RichText)
}

func TestCreateTaskFallbackCreateFails(t *testing.T) {
	f := newFixture(t, nil)
	f.ws.CreatePageFunc = func(context.Context, string, string, string, []notion.Block, string) string { return "" }

	result := f.run(`aeos-in-notion:create task with Chores "Tidy up" dance wildly`)
	assert.Equal(t, aeos.Fail("Failed to create task"), result)
	assert.Empty(t, f.ws.CallsTo("CommentOnPage"))
}

func TestCreateTaskValidation(t *testing.T) {
	f := newFixture(t, nil)
	p := New(f.ws, f.reg, aeos.NewPlanner(f.reg, nil), nil, Options{})

	tests := []struct {
		args aeos.Args
		want string
	}{
		{aeos.Args{"description": "d", "tasks": "say hi"}, "No title provided"},
		{aeos.Args{"title": "t", "tasks": "say hi"}, "No description provided"},
		{aeos.Args{"title": "t", "description": "d"}, "No tasks provided"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, aeos.Fail("%s", tt.want), p.createTask(context.Background(), tt.args))
		})
	}
	assert.Empty(t, f.ws.Calls)
}

func TestCreateTaskFromPrompt(t *testing.T) {
	gen := mocks.NewMockTextGenerator(`  "Greet the team" `, "👋🏽 wave", " Say hello to everyone. ")
	f := newFixture(t, gen)

	result := f.run("aeos-in-notion:create task to say hello team")
	require.True(t, result.Success, result.Message)

	require.Len(t, gen.Calls, 3)
	assert.Equal(t, mocks.GenerateCall{Prompt: "Provide a very short title for the task: say hello team", MaxTokens: 20, Temperature: 0.2}, gen.Calls[0])
	assert.Equal(t, mocks.GenerateCall{Prompt: "Provide a single emoji for the task: Greet the team", MaxTokens: 10, Temperature: 0.5}, gen.Calls[1])
	assert.Equal(t, mocks.GenerateCall{Prompt: "Provide a 1-2 sentence description for the task: say hello team", MaxTokens: 40, Temperature: 0.4}, gen.Calls[2])

	call := f.ws.CallsTo("CreatePage")[0]
	assert.Equal(t, "Greet the team", call.Text)
	assert.Equal(t, "👋🏽", call.Icon)
	assert.Equal(t, []string{"Description", "Say hello to everyone.", "Task List", "say hello team"}, texts(call.Blocks))
}

func TestCreateTaskFromPromptFailures(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, aeos.Fail("Text generation is not configured"), f.run("aeos-in-notion:create task to say hi"))

	p := New(f.ws, f.reg, aeos.NewPlanner(f.reg, nil), mocks.NewMockTextGenerator(), Options{})
	assert.Equal(t, aeos.Fail("No prompt provided"), p.createTaskFromPrompt(context.Background(), aeos.Args{}))

	gen := mocks.NewMockTextGenerator()
	gen.GenerateFunc = func(context.Context, string, int, float64) (string, error) { return "", errors.New("quota") }
	p = New(f.ws, f.reg, aeos.NewPlanner(f.reg, nil), gen, Options{})
	result := p.createTaskFromPrompt(context.Background(), aeos.Args{"prompt": "say hi"})
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "quota")
	assert.Empty(t, f.ws.CallsTo("CreatePage"))
}
