package notion

import (
	"strings"

	"github.com/rivo/uniseg"
)

// DefaultIcon is used for pages created without an icon.
const DefaultIcon = "📝"

// CommandIcon marks imported command catalog pages.
const CommandIcon = "🧑‍💻"

// FirstGlyph returns the first user-perceived character of s after trimming,
// keeping multi-codepoint emoji (ZWJ sequences, skin tones, flags) intact.
func FirstGlyph(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(s, -1)
	return cluster
}

// NormalizeIcon returns the first glyph of icon, or DefaultIcon when icon is blank.
func NormalizeIcon(icon string) string {
	if glyph := FirstGlyph(icon); glyph != "" {
		return glyph
	}
	return DefaultIcon
}
