package cmd

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/podium/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "podium",
	Short: "Formal debates between language models and people",
	Long: `Podium runs formal debates (Default, Public Forum, Lincoln-Douglas)
between two automated speakers, a human and a model, or two humans.

Speeches follow the selected format's order, labels and budgets. Fully
automated debates can autoplay with a pause between speeches, and every
debate can be exported as Markdown, JSON or YAML.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/podium/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	// API keys commonly live in a .env file next to the project
	_ = godotenv.Load()

	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("PODIUM")
	// Replace dots with underscores for nested keys in env vars
	// e.g., PODIUM_AUTOPLAY_DELAY_MS for autoplay.delay_ms
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
