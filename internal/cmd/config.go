package cmd

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/podium/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify Podium configuration",
	Long: `View or modify Podium configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  podium config set debate.format lincoln_douglas
  podium config set autoplay.delay_ms 1500
  podium config set generator.backend ollama

Run 'podium config show' to list every key.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/podium/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Config file: %s\n\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Config file: (none - using defaults)\n\n")
	}

	settings := viper.AllSettings()
	delete(settings, "config")
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	fmt.Fprint(out, string(data))

	if _, err := config.Load(); err != nil {
		fmt.Fprintf(out, "\nWarning: %v\nDefaults are used until this is fixed.\n", err)
	}
	return nil
}

// settableKeys returns every configuration key with a registered default.
func settableKeys() []string {
	var keys []string
	for _, k := range viper.AllKeys() {
		if k != "config" {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// typedValue converts value to the type of key's current setting.
func typedValue(key, value string) (any, error) {
	switch viper.Get(key).(type) {
	case bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		return b, nil
	case int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		return n, nil
	case float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected number", key)
		}
		return f, nil
	default:
		return value, nil
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := strings.ToLower(args[0])
	value := args[1]

	if !slices.Contains(settableKeys(), key) {
		return fmt.Errorf("unknown configuration key: %s\nValid keys:\n  %s", key, strings.Join(settableKeys(), "\n  "))
	}
	typed, err := typedValue(key, value)
	if err != nil {
		return err
	}

	// Validate the whole configuration with the new value before writing it
	previous := viper.Get(key)
	viper.Set(key, typed)
	if _, err := config.Load(); err != nil {
		viper.Set(key, previous)
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	// Ensure config directory exists
	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = config.ConfigFile()
	}
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", key, typed)
	fmt.Fprintf(cmd.OutOrStdout(), "Config saved to %s\n", configFile)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'podium config set' to modify values", configFile)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configFile, []byte(defaultConfigFile), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", configFile)
	fmt.Fprintln(cmd.OutOrStdout(), "Edit this file to customize Podium's behavior.")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", config.ConfigFile())
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", config.ConfigFile())
	fmt.Fprintf(out, "  2. ./config.yaml (current directory)\n")
	fmt.Fprintln(out, "\nEnvironment variables: PODIUM_* (e.g., PODIUM_AUTOPLAY_DELAY_MS for autoplay.delay_ms)")
	fmt.Fprintln(out, "A .env file in the working directory is loaded first.")
	return nil
}

const defaultConfigFile = `# Podium Configuration

# Defaults for new debates; command-line flags override them per run
debate:
  # default, public_forum, lincoln_douglas
  format: default
  # both_automated, human_vs_automated, human_vs_human
  mode: both_automated
  # The human's side in human_vs_automated mode: side_a or side_b
  human_side: side_a
  # a_first or b_first (Public Forum only)
  speaking_order: a_first
  # Display names; empty uses the format's side names
  side_a_name: ""
  side_b_name: ""

# Automatic advancement of both_automated debates
autoplay:
  enabled: false
  # Pause between one speech landing and the next request
  delay_ms: 3000

# Speech text generation
generator:
  # echo, ollama, openrouter
  backend: echo
  model: ""
  # Pit two models against each other; empty falls back to model
  side_a_model: ""
  side_b_model: ""
  # Empty uses the backend default endpoint
  base_url: ""
  # Environment variable holding the API key (openrouter)
  api_key_env: OPENROUTER_API_KEY
  timeout_seconds: 120
  temperature: 0.7
  max_tokens: 2048
  # Multiplies the word budgets quoted to the model
  word_scale: 1.0
  echo_latency_ms: 0

# Websocket server for human_vs_human debates (podium serve)
arena:
  address: ":8080"
  max_rooms: 100
  max_speech_bytes: 32768

# Terminal UI
tui:
  show_budgets: true
  input_height: 6

# Transcript export
transcript:
  # markdown, json or yaml
  format: markdown
  # When set, every debate is saved here when it ends
  dir: ""

# Debug logging
logging:
  enabled: true
  # debug, info, warn, error
  level: info
  # Empty uses ~/.local/state/podium/logs
  dir: ""
  max_size_mb: 10
  max_backups: 3
`
