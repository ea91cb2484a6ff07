package aeos

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string, _ int, _ float64) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

func TestPlannerParsesDirectly(t *testing.T) {
	gen := &fakeGenerator{}
	planner := NewPlanner(newTestRegistry(t, "say ${text}"), gen)

	exes, err := planner.Plan(context.Background(), "say hi\nsay bye")
	require.NoError(t, err)
	assert.Len(t, exes, 2)
	assert.Empty(t, gen.prompts, "generator must not be consulted when the text parses")
}

func TestPlannerRewritesFreeText(t *testing.T) {
	gen := &fakeGenerator{reply: "- say good morning\n- notify Done: greeted"}
	planner := NewPlanner(newTestRegistry(t, "say ${text}", "notify ${title}: ${body}"), gen)

	exes, err := planner.Plan(context.Background(), "greet the team")
	require.NoError(t, err)
	require.Len(t, exes, 2)
	assert.Equal(t, "good morning", exes[0].Args["text"])
	assert.Equal(t, "notify ${title}: ${body}", exes[1].Command.Format)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "say ${text}")
	assert.Contains(t, gen.prompts[0], "Goal: greet the team")
}

func TestPlannerFailures(t *testing.T) {
	reg := newTestRegistry(t, "say ${text}")

	_, err := NewPlanner(reg, nil).Plan(context.Background(), "greet the team")
	var unknown *UnknownCommandError
	assert.ErrorAs(t, err, &unknown)

	_, err = NewPlanner(reg, &fakeGenerator{err: errors.New("quota")}).Plan(context.Background(), "greet")
	assert.ErrorContains(t, err, "quota")

	_, err = NewPlanner(reg, &fakeGenerator{reply: "dance wildly"}).Plan(context.Background(), "greet")
	assert.ErrorContains(t, err, "do not parse")

	gen := &fakeGenerator{}
	_, err = NewPlanner(reg, gen).Plan(context.Background(), "")
	assert.ErrorIs(t, err, ErrNoCommands)
	assert.Empty(t, gen.prompts)
}
