package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Iron-Ham/podium/internal/autoplay"
	"github.com/Iron-Ham/podium/internal/config"
	"github.com/Iron-Ham/podium/internal/debate"
	"github.com/Iron-Ham/podium/internal/event"
	"github.com/Iron-Ham/podium/internal/generate"
	"github.com/Iron-Ham/podium/internal/moderator"
	"github.com/Iron-Ham/podium/internal/transcript"
	"github.com/Iron-Ham/podium/internal/tui"
)

// Minimum terminal size the debate screen can lay out in.
const (
	minTermWidth  = 60
	minTermHeight = 20
)

var debateOpts struct {
	flags    debateFlags
	autoplay bool
	delayMs  int
}

var debateCmd = &cobra.Command{
	Use:   "debate <topic...>",
	Short: "Open a debate in the terminal UI",
	Long: `Open a debate on the given resolution in the interactive terminal UI.

Automated sides speak on request (ctrl+n) or, in both_automated mode, on
autoplay (ctrl+a). Human speeches are typed in the input box and delivered
with ctrl+s. When stdout is not a terminal the debate runs headless, as
with 'podium run'.`,
	Example: `  podium debate "Social media does more harm than good"
  podium debate -f ld -m human_vs_automated --side side_b "Justice requires civil disobedience"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDebate,
}

func init() {
	rootCmd.AddCommand(debateCmd)
	addDebateFlags(debateCmd, &debateOpts.flags)
	debateCmd.Flags().BoolVar(&debateOpts.autoplay, "autoplay", false, "start autoplay when the debate opens (both_automated only)")
	debateCmd.Flags().IntVar(&debateOpts.delayMs, "delay", 0, "autoplay delay between speeches in milliseconds")
}

func runDebate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, &debateOpts.flags)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("autoplay") {
		cfg.Autoplay.Enabled = debateOpts.autoplay
	}
	if cmd.Flags().Changed("delay") {
		cfg.Autoplay.DelayMs = debateOpts.delayMs
	}

	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return runHeadless(cmd, cfg, topicFrom(args), headlessOptions{})
	}
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && (w < minTermWidth || h < minTermHeight) {
		return fmt.Errorf("terminal is %dx%d; the debate screen needs at least %dx%d", w, h, minTermWidth, minTermHeight)
	}

	logger := CreateLogger(cfg)
	defer func() { _ = logger.Close() }()

	gen, err := generate.NewFromConfig(&cfg.Generator)
	if err != nil {
		return err
	}
	bus := event.NewBus()
	session, err := newSession(cfg, topicFrom(args), bus)
	if err != nil {
		return err
	}
	mod := moderator.New(session, gen,
		moderator.WithLogger(logger),
		moderator.WithAutoplay(autoplay.WithDelay(cfg.Autoplay.Delay())),
	)
	logger.Info("debate opened", "session_id", session.ID(), "format", session.Format(), "mode", session.Mode(), "generator", generate.NameOf(gen))

	app := tui.New(mod, tui.Options{
		ShowBudgets: cfg.TUI.ShowBudgets,
		InputHeight: cfg.TUI.InputHeight,
		Autoplay:    cfg.Autoplay.Enabled,
		ExportDir:   exportDir(cfg),
	})
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	if path, err := autoSave(cfg, session.Snapshot()); err != nil {
		logger.Warn("failed to save transcript", "error", err)
	} else if path != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Transcript saved to %s\n", path)
	}
	return nil
}

// exportDir is where on-demand exports land: the configured transcript
// directory, or the working directory.
func exportDir(cfg *config.Config) string {
	if cfg.Transcript.Dir != "" {
		return cfg.Transcript.Dir
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// autoSave writes t to the configured transcript directory when one is set
// and the debate has at least one speech. It returns the written path.
func autoSave(cfg *config.Config, t debate.Transcript) (string, error) {
	if cfg.Transcript.Dir == "" || len(t.Speeches) == 0 {
		return "", nil
	}
	format, err := transcript.ParseFormat(cfg.Transcript.Format)
	if err != nil {
		return "", err
	}
	path := filepath.Join(cfg.Transcript.Dir, fmt.Sprintf("%s.%s", t.ID, format.Extension()))
	return path, transcript.Save(path, t)
}
