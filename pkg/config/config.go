// Package config provides configuration loading, validation, and access for the bridge.
// Values are layered: defaults, optional JSON file, .env file, environment, command-line flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"aeosinnotion/pkg/logx"
)

// Global config instance with mutex protection.
//
//nolint:gochecknoglobals // Intentional singleton pattern for config management
var (
	config *Config
	logger *logx.Logger
	mu     sync.RWMutex
)

// getLogger returns the config logger, initializing it if needed.
func getLogger() *logx.Logger {
	if logger == nil {
		logger = logx.NewLogger("config")
	}
	return logger
}

// LogInfo logs an info message using the config logger.
func LogInfo(format string, args ...interface{}) {
	getLogger().Info(format, args...)
}

const (
	// Worker defaults.
	DefaultName           = "aeos"
	DefaultPollInterval   = time.Second
	DefaultStartDelay     = 10 * time.Second
	DefaultRequestSpacing = 500 * time.Millisecond

	// Notion API defaults.
	DefaultNotionBaseURL = "https://api.notion.com/v1"
	NotionAPIVersion     = "2022-06-28"

	// Local files.
	DefaultCommandsFile = "commands.yaml"
	DefaultEnvFile      = ".env"
	ProjectConfigDir    = ".aeos-in-notion"
	DatabaseFilename    = "journal.db"

	// Text generation providers.
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGoogle    = "google"
	ProviderOllama    = "ollama"
	ProviderNone      = "none"

	// Default models per provider.
	ModelClaudeHaiku    = "claude-3-5-haiku-latest"
	ModelGPT4oMini      = "gpt-4o-mini"
	ModelGeminiFlash    = "gemini-2.0-flash"
	ModelOllamaDefault  = "llama3.1:8b"
	DefaultOllamaHost   = "http://localhost:11434"
	DefaultMetricsRoute = "/metrics"
)

// Environment variable names.
const (
	EnvConfigFile     = "AEOS_IN_NOTION_CONFIG"
	EnvName           = "AEOS_IN_NOTION_NAME"
	EnvCommandsDB     = "AEOS_IN_NOTION_COMMANDS_DB"
	EnvTasksDB        = "AEOS_IN_NOTION_TASKS_DB"
	EnvPollInterval   = "AEOS_IN_NOTION_POLL_INTERVAL"
	EnvStartDelay     = "AEOS_IN_NOTION_START_DELAY"
	EnvRequestSpacing = "AEOS_IN_NOTION_REQUEST_SPACING"
	EnvCommandsFile   = "AEOS_IN_NOTION_COMMANDS_FILE"
	EnvJournal        = "AEOS_IN_NOTION_JOURNAL"
	EnvMetricsAddr    = "AEOS_IN_NOTION_METRICS_ADDR"
	EnvLogDir         = "AEOS_IN_NOTION_LOG_DIR"
	EnvPassword       = "AEOS_IN_NOTION_PASSWORD"
	EnvTextGenProv    = "AEOS_IN_NOTION_TEXTGEN_PROVIDER"
	EnvTextGenModel   = "AEOS_IN_NOTION_TEXTGEN_MODEL"

	EnvNotionAPIKey     = "NOTION_API_KEY"
	EnvNotionBaseURL    = "NOTION_BASE_URL"
	EnvNotionDatabaseID = "NOTION_DATABASE_ID"

	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvGoogleAPIKey    = "GOOGLE_GENAI_API_KEY"
	EnvOllamaHost      = "OLLAMA_HOST"
)

var (
	// ErrMissingTasksDB is returned when no task board database is configured.
	ErrMissingTasksDB = errors.New("task board database id not configured (-t or " + EnvTasksDB + ")")
	// ErrMissingAPIKey is returned when no Notion credential is available.
	ErrMissingAPIKey = errors.New("notion API key not configured (" + EnvNotionAPIKey + ")")
)

// Duration is a time.Duration that reads "1s"-style strings from JSON.
type Duration time.Duration

// UnmarshalJSON accepts a duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid duration %s", string(b))
	}
	*d = Duration(n)
	return nil
}

// MarshalJSON writes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// NotionConfig holds the workspace connection settings.
type NotionConfig struct {
	APIKey         string   `json:"-"`
	BaseURL        string   `json:"base_url"`
	TasksDB        string   `json:"tasks_db"`
	CommandsDB     string   `json:"commands_db"`
	PagesDB        string   `json:"pages_db"` // Target of the notion:* page commands
	RequestSpacing Duration `json:"request_spacing"`
}

// WorkerConfig controls the poll loop.
type WorkerConfig struct {
	Name         string   `json:"name"`
	PollInterval Duration `json:"poll_interval"`
	StartDelay   Duration `json:"start_delay"`
}

// TextGenConfig selects the text-generation backend used by create-task-from-prompt.
type TextGenConfig struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	APIKey   string `json:"-"`
	Host     string `json:"host,omitempty"` // Ollama only
}

// LogsConfig controls debug and file logging.
type LogsConfig struct {
	Debug bool   `json:"debug"`
	File  bool   `json:"file"`
	Dir   string `json:"dir"`
}

// Config represents the main configuration.
type Config struct {
	Notion       NotionConfig  `json:"notion"`
	Worker       WorkerConfig  `json:"worker"`
	TextGen      TextGenConfig `json:"textgen"`
	Logs         LogsConfig    `json:"logs"`
	CommandsFile string        `json:"commands_file"`
	JournalPath  string        `json:"journal_path"`
	MetricsAddr  string        `json:"metrics_addr"`
}

// Overrides carries command-line values; empty/false fields leave lower layers untouched.
type Overrides struct {
	TasksDB    string
	CommandsDB string
	Name       string
	Debug      bool
	LogToFile  bool
}

// LoadOptions locates the optional inputs of Load.
type LoadOptions struct {
	ConfigFile string // JSON config; falls back to $AEOS_IN_NOTION_CONFIG
	EnvFile    string // dotenv file; defaults to ./.env, missing file is ignored
	Overrides  Overrides
}

// Default returns a config populated with defaults only.
func Default() *Config {
	return &Config{
		Notion: NotionConfig{
			BaseURL:        DefaultNotionBaseURL,
			RequestSpacing: Duration(DefaultRequestSpacing),
		},
		Worker: WorkerConfig{
			Name:         DefaultName,
			PollInterval: Duration(DefaultPollInterval),
			StartDelay:   Duration(DefaultStartDelay),
		},
		Logs: LogsConfig{
			Dir: logx.DefaultLogDir(),
		},
		CommandsFile: DefaultCommandsFile,
	}
}

// GetConfig returns the current global config BY VALUE (copy, not reference).
// Must call Load first to initialize the global config.
func GetConfig() (Config, error) {
	mu.RLock()
	defer mu.RUnlock()
	if config == nil {
		return Config{}, fmt.Errorf("config not initialized - call Load first")
	}
	return *config, nil
}

// SetConfigForTesting sets the global config for testing purposes. Pass nil to reset.
func SetConfigForTesting(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	config = cfg
}

// Load builds the configuration from every layer, validates it and stores it globally.
func Load(opts LoadOptions) error {
	cfg, err := Build(opts)
	if err != nil {
		return err
	}
	if err := Validate(cfg); err != nil {
		return err
	}

	mu.Lock()
	config = cfg
	mu.Unlock()

	getLogger().Info("✅ Config loaded (worker: %s, tasks db: %s)", cfg.Worker.Name, cfg.Notion.TasksDB)
	return nil
}

// Build layers defaults, config file, .env, environment and overrides without validating.
func Build(opts LoadOptions) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if _, err := os.Stat(envFile); err == nil {
		// godotenv.Load never overrides variables that are already set.
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := Default()

	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = os.Getenv(EnvConfigFile)
	}
	if configFile != "" {
		if err := loadConfigFile(configFile, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyOverrides(cfg, &opts.Overrides)
	resolveTextGen(cfg)

	return cfg, nil
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// loadConfigFile reads a JSON config with ${ENV} placeholder substitution onto cfg.
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	dataStr := envVarRegex.ReplaceAllStringFunc(string(data), func(match string) string {
		envVar := match[2 : len(match)-1]
		if value := os.Getenv(envVar); value != "" {
			return value
		}
		return match
	})

	if err := json.Unmarshal([]byte(dataStr), cfg); err != nil {
		return fmt.Errorf("failed to parse config JSON %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Worker.Name, EnvName)
	setString(&cfg.Notion.TasksDB, EnvTasksDB)
	setString(&cfg.Notion.CommandsDB, EnvCommandsDB)
	setString(&cfg.Notion.PagesDB, EnvNotionDatabaseID)
	setString(&cfg.Notion.BaseURL, EnvNotionBaseURL)
	setString(&cfg.CommandsFile, EnvCommandsFile)
	setString(&cfg.JournalPath, EnvJournal)
	setString(&cfg.MetricsAddr, EnvMetricsAddr)
	setString(&cfg.Logs.Dir, EnvLogDir)
	setString(&cfg.TextGen.Provider, EnvTextGenProv)
	setString(&cfg.TextGen.Model, EnvTextGenModel)

	if key, err := GetSecret(EnvNotionAPIKey); err == nil {
		cfg.Notion.APIKey = key
	}

	durations := []struct {
		target *Duration
		env    string
	}{
		{&cfg.Worker.PollInterval, EnvPollInterval},
		{&cfg.Worker.StartDelay, EnvStartDelay},
		{&cfg.Notion.RequestSpacing, EnvRequestSpacing},
	}
	for _, d := range durations {
		raw := os.Getenv(d.env)
		if raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", d.env, raw, err)
		}
		*d.target = Duration(parsed)
	}
	return nil
}

func setString(target *string, env string) {
	if value := strings.TrimSpace(os.Getenv(env)); value != "" {
		*target = value
	}
}

func applyOverrides(cfg *Config, o *Overrides) {
	if o.Name != "" {
		cfg.Worker.Name = o.Name
	}
	if o.TasksDB != "" {
		cfg.Notion.TasksDB = o.TasksDB
	}
	if o.CommandsDB != "" {
		cfg.Notion.CommandsDB = o.CommandsDB
	}
	if o.Debug {
		cfg.Logs.Debug = true
	}
	if o.LogToFile {
		cfg.Logs.File = true
	}
}

// resolveTextGen picks a provider when none is configured and fills model and credential.
func resolveTextGen(cfg *Config) {
	tg := &cfg.TextGen
	if tg.Provider == "" {
		tg.Provider = detectProvider()
	}

	switch tg.Provider {
	case ProviderAnthropic:
		tg.APIKey, _ = GetSecret(EnvAnthropicAPIKey)
		defaultString(&tg.Model, ModelClaudeHaiku)
	case ProviderOpenAI:
		tg.APIKey, _ = GetSecret(EnvOpenAIAPIKey)
		defaultString(&tg.Model, ModelGPT4oMini)
	case ProviderGoogle:
		tg.APIKey, _ = GetSecret(EnvGoogleAPIKey)
		defaultString(&tg.Model, ModelGeminiFlash)
	case ProviderOllama:
		setString(&tg.Host, EnvOllamaHost)
		defaultString(&tg.Host, DefaultOllamaHost)
		defaultString(&tg.Model, ModelOllamaDefault)
	}
}

func detectProvider() string {
	for _, candidate := range []struct{ provider, env string }{
		{ProviderAnthropic, EnvAnthropicAPIKey},
		{ProviderOpenAI, EnvOpenAIAPIKey},
		{ProviderGoogle, EnvGoogleAPIKey},
		{ProviderOllama, EnvOllamaHost},
	} {
		if value, err := GetSecret(candidate.env); err == nil && value != "" {
			return candidate.provider
		}
	}
	return ProviderNone
}

func defaultString(target *string, value string) {
	if *target == "" {
		*target = value
	}
}

// Validate checks the fields the process cannot start without.
func Validate(cfg *Config) error {
	if cfg.Notion.TasksDB == "" {
		return ErrMissingTasksDB
	}
	if cfg.Notion.APIKey == "" {
		return ErrMissingAPIKey
	}
	if cfg.Worker.Name == "" {
		return fmt.Errorf("worker name cannot be empty")
	}
	if cfg.Worker.PollInterval.Std() <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", cfg.Worker.PollInterval.Std())
	}
	if cfg.Notion.RequestSpacing.Std() < 0 {
		return fmt.Errorf("request spacing cannot be negative")
	}
	switch cfg.TextGen.Provider {
	case ProviderAnthropic, ProviderOpenAI, ProviderGoogle, ProviderOllama, ProviderNone:
	default:
		return fmt.Errorf("unknown text generation provider: %s", cfg.TextGen.Provider)
	}
	if cfg.Notion.CommandsDB == "" {
		getLogger().Warn("⚠️  Commands database not configured - command import and catalog links are disabled")
	}
	return nil
}
