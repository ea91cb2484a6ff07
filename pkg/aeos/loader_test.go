package aeos

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCommands = `
commands:
  - format: "morning routine for ${name}"
    description: Start the day
    requires_application: Slack
    sequence:
      - "notify Morning: ${name}"
      - run: "notify Checklist: ${name}"
        steps:
          - "notify Step: coffee"
          - run: "notify Step: email"
  - format: "wipe ${id}"
    requires_exact_match: true
    sequence:
      - "notion:delete page with id ${id}"
`

func TestParseCommands(t *testing.T) {
	commands, err := ParseCommands([]byte(sampleCommands))
	require.NoError(t, err)
	require.Len(t, commands, 2)

	routine := commands[0]
	assert.Equal(t, "morning routine for ${name}", routine.Format)
	assert.Equal(t, "Start the day", routine.Description)
	assert.Equal(t, "Slack", routine.RequiresApplication)
	assert.True(t, routine.IsSequence())
	require.Len(t, routine.Sequence, 2)
	assert.Equal(t, "notify Morning: ${name}", routine.Sequence[0].Run)
	require.Len(t, routine.Sequence[1].Steps, 2)
	assert.Equal(t, "notify Step: email", routine.Sequence[1].Steps[1].Run)

	assert.True(t, commands[1].RequiresExactMatch)
}

func TestParseCommandsErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing format", "commands:\n  - sequence: [\"say hi\"]\n"},
		{"missing sequence", "commands:\n  - format: x\n"},
		{"empty step", "commands:\n  - format: x\n    sequence:\n      - steps: [\"say hi\"]\n"},
		{"malformed", "commands: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCommands([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadCommandsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleCommands), 0644))

	commands, err := LoadCommandsFile(path)
	require.NoError(t, err)

	reg := NewRegistry()
	require.NoError(t, reg.RegisterAll(commands))
	assert.Equal(t, []string{"morning routine for ${name}", "wipe ${id}"}, reg.Formats())

	_, err = LoadCommandsFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
