package aeos

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// commandsFile is the on-disk shape of a sequence command catalog.
type commandsFile struct {
	Commands []commandDef `yaml:"commands"`
}

type commandDef struct {
	Format              string `yaml:"format"`
	Description         string `yaml:"description"`
	RequiresApplication string `yaml:"requires_application"`
	RequiresExactMatch  bool   `yaml:"requires_exact_match"`
	Sequence            []Step `yaml:"sequence"`
}

// ParseCommands decodes sequence commands from YAML:
//
//	commands:
//	  - format: "greet ${name}"
//	    description: Say hello
//	    sequence:
//	      - "notify Hello: ${name}"
//	      - run: "notify Checklist: ${name}"
//	        steps:
//	          - "notify Step: one"
func ParseCommands(data []byte) ([]Command, error) {
	var file commandsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse commands: %w", err)
	}

	commands := make([]Command, 0, len(file.Commands))
	for i, def := range file.Commands {
		if def.Format == "" {
			return nil, fmt.Errorf("command %d: format is required", i+1)
		}
		if len(def.Sequence) == 0 {
			return nil, fmt.Errorf("command %q: sequence is required", def.Format)
		}
		if err := validateSteps(def.Sequence); err != nil {
			return nil, fmt.Errorf("command %q: %w", def.Format, err)
		}
		commands = append(commands, Command{
			Format:              def.Format,
			Description:         def.Description,
			RequiresApplication: def.RequiresApplication,
			RequiresExactMatch:  def.RequiresExactMatch,
			Sequence:            def.Sequence,
		})
	}
	return commands, nil
}

func validateSteps(steps []Step) error {
	for _, step := range steps {
		if step.Run == "" {
			return fmt.Errorf("every step needs a run command")
		}
		if err := validateSteps(step.Steps); err != nil {
			return err
		}
	}
	return nil
}

// LoadCommandsFile reads a YAML command catalog from path.
func LoadCommandsFile(path string) ([]Command, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read commands file %s: %w", path, err)
	}
	commands, err := ParseCommands(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return commands, nil
}

// RegisterAll registers commands in order, stopping at the first error.
func (r *Registry) RegisterAll(commands []Command) error {
	for _, cmd := range commands {
		if err := r.Register(cmd); err != nil {
			return err
		}
	}
	return nil
}
