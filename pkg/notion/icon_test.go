package notion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstGlyph(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"single emoji", "🚀", "🚀"},
		{"emoji then text", "🚀 launch", "🚀"},
		{"zwj family", "👨‍👩‍👧‍👦 family", "👨‍👩‍👧‍👦"},
		{"zwj technologist", "🧑‍💻", "🧑‍💻"},
		{"skin tone", "👍🏽👍", "👍🏽"},
		{"flag", "🇯🇵🇫🇷", "🇯🇵"},
		{"leading whitespace", "  \n✅ done", "✅"},
		{"plain text", "hello", "h"},
		{"empty", "", ""},
		{"blank", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FirstGlyph(tt.input))
		})
	}
}

func TestNormalizeIcon(t *testing.T) {
	assert.Equal(t, DefaultIcon, NormalizeIcon(""))
	assert.Equal(t, DefaultIcon, NormalizeIcon("  \t"))
	assert.Equal(t, "🧑‍💻", NormalizeIcon("🧑‍💻🧑‍💻"))
}
