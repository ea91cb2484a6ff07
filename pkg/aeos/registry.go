package aeos

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"aeosinnotion/pkg/logx"
)

// ErrNoCommands is returned by Parse when the text holds no command inputs.
var ErrNoCommands = errors.New("no commands found")

// UnknownCommandError reports an input that matches no registered format.
type UnknownCommandError struct {
	Input string
}

func (e *UnknownCommandError) Error() string {
	return "Command not found: " + e.Input
}

var placeholderRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// captureGroup prefers a quoted value, then the shortest run of characters.
const captureGroup = `("[^"]*"|'[^']*'|.+?)`

// entry is a registered command with its compiled matcher.
type entry struct {
	cmd     Command
	pattern *regexp.Regexp
	names   []string
	literal int // Count of non-placeholder characters, used to rank overlapping matches
}

// Registry holds registered commands in registration order.
type Registry struct {
	mu       sync.RWMutex
	entries  []*entry
	byFormat map[string]*entry
	plugins  []Plugin
	logger   *logx.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byFormat: make(map[string]*entry),
		logger:   logx.NewLogger("aeos"),
	}
}

// compile turns a format into an anchored pattern. ${name} placeholders become lazy captures.
// Formats that require an exact match are case-sensitive and whitespace-exact.
func compile(cmd *Command) (*entry, error) {
	var sb strings.Builder
	if !cmd.RequiresExactMatch {
		sb.WriteString("(?is)")
	} else {
		sb.WriteString("(?s)")
	}
	sb.WriteString("^")

	e := &entry{cmd: *cmd}
	last := 0
	for _, loc := range placeholderRegex.FindAllStringSubmatchIndex(cmd.Format, -1) {
		sb.WriteString(literalPattern(cmd.Format[last:loc[0]], cmd.RequiresExactMatch))
		e.literal += len(strings.TrimSpace(cmd.Format[last:loc[0]]))
		sb.WriteString(captureGroup)
		e.names = append(e.names, cmd.Format[loc[2]:loc[3]])
		last = loc[1]
	}
	sb.WriteString(literalPattern(cmd.Format[last:], cmd.RequiresExactMatch))
	e.literal += len(strings.TrimSpace(cmd.Format[last:]))
	sb.WriteString("$")

	pattern, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, fmt.Errorf("failed to compile format %q: %w", cmd.Format, err)
	}
	e.pattern = pattern
	return e, nil
}

func literalPattern(s string, exact bool) string {
	if exact {
		return regexp.QuoteMeta(s)
	}
	fields := strings.Fields(s)
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = regexp.QuoteMeta(f)
	}
	out := strings.Join(quoted, `\s+`)
	if len(fields) > 0 {
		if s[0] == ' ' || s[0] == '\t' {
			out = `\s+` + out
		}
		if end := s[len(s)-1]; end == ' ' || end == '\t' {
			out += `\s+`
		}
	} else if s != "" {
		out = `\s+`
	}
	return out
}

// Register adds a command. Formats must be unique and carry an implementation.
func (r *Registry) Register(cmd Command) error {
	if strings.TrimSpace(cmd.Format) == "" {
		return fmt.Errorf("command format cannot be empty")
	}
	if cmd.Function == nil && len(cmd.Sequence) == 0 {
		return fmt.Errorf("command %q has neither a function nor a sequence", cmd.Format)
	}

	e, err := compile(&cmd)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byFormat[cmd.Format]; exists {
		return fmt.Errorf("command %q already registered", cmd.Format)
	}
	r.entries = append(r.entries, e)
	r.byFormat[cmd.Format] = e
	return nil
}

// RegisterPlugin registers every command of an enabled plugin. Disabled plugins are skipped.
func (r *Registry) RegisterPlugin(p Plugin) error {
	if !p.Enabled() {
		r.logger.Info("Plugin %s is disabled, skipping", p.Name())
		return nil
	}
	for _, cmd := range p.Commands() {
		if err := r.Register(cmd); err != nil {
			return fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
	}

	r.mu.Lock()
	r.plugins = append(r.plugins, p)
	r.mu.Unlock()

	r.logger.Info("Loaded plugin %s v%s (%d commands)", p.Name(), p.Version(), len(p.Commands()))
	return nil
}

// Plugins returns the registered plugins.
func (r *Registry) Plugins() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Plugin(nil), r.plugins...)
}

// Lookup returns the command registered with exactly this format.
func (r *Registry) Lookup(format string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byFormat[format]
	if !ok {
		return nil, false
	}
	cmd := e.cmd
	return &cmd, true
}

// Formats returns every registered format in registration order.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	formats := make([]string, len(r.entries))
	for i, e := range r.entries {
		formats[i] = e.cmd.Format
	}
	return formats
}

// Match finds the command an input invokes. When several formats match, the one with
// the most literal text wins, then the earliest registered.
func (r *Registry) Match(input string) (*Executable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *entry
	var bestArgs Args
	for _, e := range r.entries {
		candidate := input
		if !e.cmd.RequiresExactMatch {
			candidate = strings.Join(strings.Fields(input), " ")
		}
		m := e.pattern.FindStringSubmatch(candidate)
		if m == nil {
			continue
		}
		if best != nil && e.literal <= best.literal {
			continue
		}
		args := make(Args, len(e.names))
		for i, name := range e.names {
			value := m[i+1]
			if !e.cmd.RequiresExactMatch {
				value = unquote(strings.TrimSpace(value))
			}
			args[name] = value
		}
		best, bestArgs = e, args
	}

	if best == nil {
		return nil, false
	}
	cmd := best.cmd
	return &Executable{Command: &cmd, Args: bestArgs, Input: input}, true
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// Parse splits text into command inputs (one per line or separated by ';' outside
// quotes) and matches each. Any unmatched input fails the whole parse.
func (r *Registry) Parse(text string) ([]Executable, error) {
	inputs := SplitInputs(text)
	if len(inputs) == 0 {
		return nil, ErrNoCommands
	}

	executables := make([]Executable, 0, len(inputs))
	for _, input := range inputs {
		exe, ok := r.Match(input)
		if !ok {
			return nil, &UnknownCommandError{Input: input}
		}
		executables = append(executables, *exe)
	}
	return executables, nil
}

var listPrefixRegex = regexp.MustCompile(`^(?:[-*•]\s+|\d+[.)]\s+)`)

// SplitInputs breaks text into trimmed inputs, dropping blank entries and list markers.
func SplitInputs(text string) []string {
	var inputs []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		for _, part := range splitOutsideQuotes(line, ';') {
			part = strings.TrimSpace(listPrefixRegex.ReplaceAllString(strings.TrimSpace(part), ""))
			if part != "" {
				inputs = append(inputs, part)
			}
		}
	}
	return inputs
}

func splitOutsideQuotes(s string, sep rune) []string {
	var parts []string
	var sb strings.Builder
	var quote rune
	for _, c := range s {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == sep:
			parts = append(parts, sb.String())
			sb.Reset()
			continue
		}
		sb.WriteRune(c)
	}
	return append(parts, sb.String())
}

// InputString renders an executable back to a command input by substituting its
// arguments into the format. Values with spaces are quoted unless they fill the
// final placeholder.
func InputString(exe *Executable) string {
	format := exe.Command.Format
	locs := placeholderRegex.FindAllStringSubmatchIndex(format, -1)

	var sb strings.Builder
	last := 0
	for i, loc := range locs {
		sb.WriteString(format[last:loc[0]])
		value := exe.Args[format[loc[2]:loc[3]]]
		finalPlaceholder := i == len(locs)-1 && strings.TrimSpace(format[loc[1]:]) == ""
		if !finalPlaceholder && strings.ContainsAny(value, " \t\n") && !strings.Contains(value, `"`) {
			value = `"` + value + `"`
		}
		sb.WriteString(value)
		last = loc[1]
	}
	sb.WriteString(format[last:])
	return sb.String()
}

// Substitute replaces ${name} references in s with values from args, leaving unknown names intact.
func Substitute(s string, args Args) string {
	return placeholderRegex.ReplaceAllStringFunc(s, func(match string) string {
		if value, ok := args[match[2:len(match)-1]]; ok {
			return value
		}
		return match
	})
}
