package aeos

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"aeosinnotion/pkg/logx"
)

const (
	planMaxTokens   = 200
	planTemperature = 0.2
)

// Planner turns a checklist text into executables, asking a text generator to rewrite
// free-text goals into catalog commands when the text does not parse as-is.
type Planner struct {
	registry  *Registry
	generator TextGenerator
	logger    *logx.Logger
}

// NewPlanner creates a planner. A nil generator limits planning to strict parsing.
func NewPlanner(reg *Registry, gen TextGenerator) *Planner {
	return &Planner{
		registry:  reg,
		generator: gen,
		logger:    logx.NewLogger("planner"),
	}
}

// Plan returns the executables for text.
func (p *Planner) Plan(ctx context.Context, text string) ([]Executable, error) {
	executables, err := p.registry.Parse(text)
	if err == nil {
		return executables, nil
	}
	if p.generator == nil {
		return nil, err
	}

	var unknown *UnknownCommandError
	if !errors.As(err, &unknown) {
		return nil, err
	}

	p.logger.Debug("checklist does not parse (%v), asking generator to plan", err)
	rewritten, genErr := p.generator.Generate(ctx, p.prompt(text), planMaxTokens, planTemperature)
	if genErr != nil {
		return nil, fmt.Errorf("failed to plan commands: %w", genErr)
	}

	executables, err = p.registry.Parse(rewritten)
	if err != nil {
		return nil, fmt.Errorf("planned commands do not parse: %w", err)
	}
	return executables, nil
}

func (p *Planner) prompt(goal string) string {
	var sb strings.Builder
	sb.WriteString("Rewrite the goal below as a list of commands, one per line, using only these command formats. ")
	sb.WriteString("Replace each ${placeholder} with a value and output nothing else.\n\nFormats:\n")
	for _, format := range p.registry.Formats() {
		sb.WriteString(format)
		sb.WriteString("\n")
	}
	sb.WriteString("\nGoal: ")
	sb.WriteString(goal)
	return sb.String()
}
