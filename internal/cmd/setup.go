package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/podium/internal/config"
	"github.com/Iron-Ham/podium/internal/debate"
	"github.com/Iron-Ham/podium/internal/event"
	"github.com/Iron-Ham/podium/internal/logging"
)

// debateFlags are the per-run overrides shared by commands that open a
// debate. Flags the user did not set leave the configured value alone.
type debateFlags struct {
	format    string
	mode      string
	humanSide string
	order     string
	sideAName string
	sideBName string
	backend   string
	model     string
	modelA    string
	modelB    string
}

func addDebateFlags(cmd *cobra.Command, f *debateFlags) {
	flags := cmd.Flags()
	flags.StringVarP(&f.format, "format", "f", "", "debate format: default, public_forum (pf), lincoln_douglas (ld)")
	flags.StringVarP(&f.mode, "mode", "m", "", "debate mode: both_automated, human_vs_automated, human_vs_human")
	flags.StringVar(&f.humanSide, "side", "", "side the human takes in human_vs_automated mode (side_a, side_b)")
	flags.StringVar(&f.order, "order", "", "speaking order for Public Forum: a_first, b_first")
	flags.StringVar(&f.sideAName, "side-a-name", "", "display name of the side A speaker")
	flags.StringVar(&f.sideBName, "side-b-name", "", "display name of the side B speaker")
	flags.StringVar(&f.backend, "backend", "", "generator backend: echo, ollama, openrouter")
	flags.StringVar(&f.model, "model", "", "model for both automated sides")
	flags.StringVar(&f.modelA, "model-a", "", "model for side A (overrides --model)")
	flags.StringVar(&f.modelB, "model-b", "", "model for side B (overrides --model)")
}

// apply overlays the flags the user set onto cfg.
func (f *debateFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	set := func(name string, dst *string, val string) {
		if cmd.Flags().Changed(name) {
			*dst = val
		}
	}
	set("format", &cfg.Debate.Format, f.format)
	set("mode", &cfg.Debate.Mode, f.mode)
	set("side", &cfg.Debate.HumanSide, f.humanSide)
	set("order", &cfg.Debate.SpeakingOrder, f.order)
	set("side-a-name", &cfg.Debate.SideAName, f.sideAName)
	set("side-b-name", &cfg.Debate.SideBName, f.sideBName)
	set("backend", &cfg.Generator.Backend, f.backend)
	set("model", &cfg.Generator.Model, f.model)
	set("model-a", &cfg.Generator.SideAModel, f.modelA)
	set("model-b", &cfg.Generator.SideBModel, f.modelB)
}

// loadConfig reads the effective configuration and applies the flags.
func loadConfig(cmd *cobra.Command, f *debateFlags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if f != nil {
		f.apply(cmd, cfg)
		if errs := cfg.Validate(); len(errs) > 0 {
			return nil, fmt.Errorf("invalid options: %w", config.ValidationErrors(errs))
		}
	}
	return cfg, nil
}

// debateConfig translates the configured debate defaults into a session
// configuration for topic.
func debateConfig(cfg *config.Config, topic string) (debate.Config, error) {
	format, err := debate.ParseFormat(cfg.Debate.Format)
	if err != nil {
		return debate.Config{}, err
	}
	mode, err := debate.ParseMode(cfg.Debate.Mode)
	if err != nil {
		return debate.Config{}, err
	}
	order, err := debate.ParseSpeakingOrder(cfg.Debate.SpeakingOrder)
	if err != nil {
		return debate.Config{}, err
	}

	dc := debate.Config{
		Topic:  topic,
		Format: format,
		Mode:   mode,
		Order:  order,
		Participants: map[debate.Side]string{
			debate.SideA: cfg.Debate.SideAName,
			debate.SideB: cfg.Debate.SideBName,
		},
	}
	if mode == debate.ModeHumanVsAutomated {
		side, err := debate.ParseSide(cfg.Debate.HumanSide)
		if err != nil {
			return debate.Config{}, err
		}
		dc.HumanSide = side
	}
	return dc, nil
}

// newSession opens a debate on topic, publishing to bus.
func newSession(cfg *config.Config, topic string, bus *event.Bus) (*debate.Session, error) {
	dc, err := debateConfig(cfg, topic)
	if err != nil {
		return nil, err
	}
	return debate.NewSession(dc, debate.WithBus(bus))
}

// topicFrom joins the positional arguments into a resolution.
func topicFrom(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// CreateLogger creates a logger based on configuration settings.
// Returns a NopLogger if logging is disabled or if creation fails.
func CreateLogger(cfg *config.Config) *logging.Logger {
	if !cfg.Logging.Enabled {
		return logging.NopLogger()
	}

	rotationConfig := logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	}

	logger, err := logging.NewLoggerWithRotation(cfg.Logging.ResolveDir(), cfg.Logging.Level, rotationConfig)
	if err != nil {
		// Log creation failure shouldn't prevent the application from starting
		fmt.Fprintf(os.Stderr, "Warning: failed to create logger: %v\n", err)
		return logging.NopLogger()
	}
	return logger
}
