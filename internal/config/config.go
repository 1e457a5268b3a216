package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete podium configuration
type Config struct {
	Debate     DebateConfig     `mapstructure:"debate"`
	Autoplay   AutoplayConfig   `mapstructure:"autoplay"`
	Generator  GeneratorConfig  `mapstructure:"generator"`
	Arena      ArenaConfig      `mapstructure:"arena"`
	TUI        TUIConfig        `mapstructure:"tui"`
	Transcript TranscriptConfig `mapstructure:"transcript"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// DebateConfig holds the defaults for a new debate. Command-line flags
// override these per run.
type DebateConfig struct {
	// Format is one of "default", "public_forum", "lincoln_douglas"
	Format string `mapstructure:"format"`
	// Mode is one of "both_automated", "human_vs_automated", "human_vs_human"
	Mode string `mapstructure:"mode"`
	// HumanSide is the side the human takes in human_vs_automated mode
	HumanSide string `mapstructure:"human_side"`
	// SpeakingOrder is "a_first" or "b_first"; only Public Forum uses it
	SpeakingOrder string `mapstructure:"speaking_order"`
	// SideAName and SideBName override the displayed participant names
	SideAName string `mapstructure:"side_a_name"`
	SideBName string `mapstructure:"side_b_name"`
}

// AutoplayConfig controls automatic advancement of fully automated debates
type AutoplayConfig struct {
	// Enabled starts autoplay as soon as a both_automated debate opens (default: false)
	Enabled bool `mapstructure:"enabled"`
	// DelayMs is the pause between one speech landing and the next request (default: 3000)
	DelayMs int `mapstructure:"delay_ms"`
}

// Delay returns the autoplay delay as a time.Duration
func (c *AutoplayConfig) Delay() time.Duration {
	return time.Duration(c.DelayMs) * time.Millisecond
}

// GeneratorConfig selects and tunes the speech text generator
type GeneratorConfig struct {
	// Backend is one of "echo", "ollama", "openrouter" (default: "echo")
	Backend string `mapstructure:"backend"`
	// Model is the model identifier passed to the backend
	Model string `mapstructure:"model"`
	// SideAModel and SideBModel pit two models against each other. Empty
	// values fall back to Model.
	SideAModel string `mapstructure:"side_a_model"`
	SideBModel string `mapstructure:"side_b_model"`
	// BaseURL overrides the backend endpoint. Empty uses the backend default.
	BaseURL string `mapstructure:"base_url"`
	// APIKeyEnv names the environment variable holding the API key
	APIKeyEnv string `mapstructure:"api_key_env"`
	// TimeoutSeconds bounds one generation request (default: 120)
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	// Temperature is the sampling temperature (default: 0.7)
	Temperature float64 `mapstructure:"temperature"`
	// MaxTokens caps the response length for backends that accept it (default: 2048)
	MaxTokens int `mapstructure:"max_tokens"`
	// WordScale multiplies the word budgets quoted in prompts (default: 1.0)
	WordScale float64 `mapstructure:"word_scale"`
	// EchoLatencyMs makes the echo backend wait before answering (default: 0)
	EchoLatencyMs int `mapstructure:"echo_latency_ms"`
}

// Timeout returns the request timeout as a time.Duration
func (c *GeneratorConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// APIKey reads the API key from the configured environment variable
func (c *GeneratorConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(c.APIKeyEnv))
}

// ModelFor returns the model for side ("side_a" or "side_b")
func (c *GeneratorConfig) ModelFor(side string) string {
	switch side {
	case "side_a":
		if c.SideAModel != "" {
			return c.SideAModel
		}
	case "side_b":
		if c.SideBModel != "" {
			return c.SideBModel
		}
	}
	return c.Model
}

// ArenaConfig controls the websocket server used for human_vs_human debates
type ArenaConfig struct {
	// Address is the listen address (default: ":8080")
	Address string `mapstructure:"address"`
	// MaxRooms limits concurrently open debates (default: 100)
	MaxRooms int `mapstructure:"max_rooms"`
	// MaxSpeechBytes limits a single submitted speech (default: 32768)
	MaxSpeechBytes int `mapstructure:"max_speech_bytes"`
}

// TUIConfig controls the terminal UI behavior
type TUIConfig struct {
	// ShowBudgets shows word and time budgets next to speech labels (default: true)
	ShowBudgets bool `mapstructure:"show_budgets"`
	// InputHeight is the height of the speech input box in lines (default: 6, min: 3, max: 20)
	InputHeight int `mapstructure:"input_height"`
}

// TranscriptConfig controls transcript export
type TranscriptConfig struct {
	// Format is the default export format: "json", "yaml" or "markdown" (default: "markdown")
	Format string `mapstructure:"format"`
	// Dir, when set, receives a transcript for every finished debate
	Dir string `mapstructure:"dir"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether logging is active (default: true)
	Enabled bool `mapstructure:"enabled"`
	// Level is the minimum log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// Dir is where debug.log is written. Empty uses the state directory.
	Dir string `mapstructure:"dir"`
	// MaxSizeMB is the size at which debug.log rotates (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is how many rotated files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
}

// ResolveDir returns the log directory, defaulting to StateDir()/logs
func (c *LoggingConfig) ResolveDir() string {
	if c.Dir == "" {
		return filepath.Join(StateDir(), "logs")
	}
	return expandHome(c.Dir)
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Debate: DebateConfig{
			Format:        "default",
			Mode:          "both_automated",
			HumanSide:     "side_a",
			SpeakingOrder: "a_first",
		},
		Autoplay: AutoplayConfig{
			Enabled: false,
			DelayMs: 3000,
		},
		Generator: GeneratorConfig{
			Backend:        "echo",
			Model:          "",
			APIKeyEnv:      "OPENROUTER_API_KEY",
			TimeoutSeconds: 120,
			Temperature:    0.7,
			MaxTokens:      2048,
			WordScale:      1.0,
		},
		Arena: ArenaConfig{
			Address:        ":8080",
			MaxRooms:       100,
			MaxSpeechBytes: 32768,
		},
		TUI: TUIConfig{
			ShowBudgets: true,
			InputHeight: 6,
		},
		Transcript: TranscriptConfig{
			Format: "markdown",
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("debate.format", defaults.Debate.Format)
	viper.SetDefault("debate.mode", defaults.Debate.Mode)
	viper.SetDefault("debate.human_side", defaults.Debate.HumanSide)
	viper.SetDefault("debate.speaking_order", defaults.Debate.SpeakingOrder)
	viper.SetDefault("debate.side_a_name", defaults.Debate.SideAName)
	viper.SetDefault("debate.side_b_name", defaults.Debate.SideBName)

	viper.SetDefault("autoplay.enabled", defaults.Autoplay.Enabled)
	viper.SetDefault("autoplay.delay_ms", defaults.Autoplay.DelayMs)

	viper.SetDefault("generator.backend", defaults.Generator.Backend)
	viper.SetDefault("generator.model", defaults.Generator.Model)
	viper.SetDefault("generator.side_a_model", defaults.Generator.SideAModel)
	viper.SetDefault("generator.side_b_model", defaults.Generator.SideBModel)
	viper.SetDefault("generator.base_url", defaults.Generator.BaseURL)
	viper.SetDefault("generator.api_key_env", defaults.Generator.APIKeyEnv)
	viper.SetDefault("generator.timeout_seconds", defaults.Generator.TimeoutSeconds)
	viper.SetDefault("generator.temperature", defaults.Generator.Temperature)
	viper.SetDefault("generator.max_tokens", defaults.Generator.MaxTokens)
	viper.SetDefault("generator.word_scale", defaults.Generator.WordScale)
	viper.SetDefault("generator.echo_latency_ms", defaults.Generator.EchoLatencyMs)

	viper.SetDefault("arena.address", defaults.Arena.Address)
	viper.SetDefault("arena.max_rooms", defaults.Arena.MaxRooms)
	viper.SetDefault("arena.max_speech_bytes", defaults.Arena.MaxSpeechBytes)

	viper.SetDefault("tui.show_budgets", defaults.TUI.ShowBudgets)
	viper.SetDefault("tui.input_height", defaults.TUI.InputHeight)

	viper.SetDefault("transcript.format", defaults.Transcript.Format)
	viper.SetDefault("transcript.dir", defaults.Transcript.Dir)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults when the
// loaded configuration does not validate
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "podium")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".podium"
	}
	return filepath.Join(home, ".config", "podium")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// StateDir returns the directory for logs and saved transcripts
func StateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "podium")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".podium"
	}
	return filepath.Join(home, ".local", "state", "podium")
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}
