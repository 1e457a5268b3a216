package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/charmbracelet/x/ansi"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Iron-Ham/podium/internal/autoplay"
	"github.com/Iron-Ham/podium/internal/config"
	"github.com/Iron-Ham/podium/internal/debate"
	"github.com/Iron-Ham/podium/internal/event"
	"github.com/Iron-Ham/podium/internal/generate"
	"github.com/Iron-Ham/podium/internal/moderator"
	"github.com/Iron-Ham/podium/internal/transcript"
)

var runOpts struct {
	flags   debateFlags
	delayMs int
	out     string
	quiet   bool
}

var runCmd = &cobra.Command{
	Use:   "run <topic...>",
	Short: "Run a fully automated debate to completion",
	Long: `Run a both_automated debate without the terminal UI. Autoplay drives
the debate from the first speech to the last, printing each speech as it
lands. Press ctrl+c to stop early; the partial transcript is still saved.`,
	Example: `  podium run --delay 0 -o debate.md "Remote work is better than office work"
  podium run -f pf --order b_first --backend ollama --model llama3.1 "Nuclear power should be expanded"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addDebateFlags(runCmd, &runOpts.flags)
	runCmd.Flags().IntVar(&runOpts.delayMs, "delay", 0, "delay between speeches in milliseconds (default from autoplay.delay_ms)")
	runCmd.Flags().StringVarP(&runOpts.out, "out", "o", "", "write the transcript to this file (.md, .json or .yaml)")
	runCmd.Flags().BoolVarP(&runOpts.quiet, "quiet", "q", false, "print only the summary")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, &runOpts.flags)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("delay") {
		cfg.Autoplay.DelayMs = runOpts.delayMs
	}
	return runHeadless(cmd, cfg, topicFrom(args), headlessOptions{out: runOpts.out, quiet: runOpts.quiet})
}

type headlessOptions struct {
	out   string
	quiet bool
}

// runHeadless autoplays a both_automated debate, printing speeches to the
// command's output.
func runHeadless(cmd *cobra.Command, cfg *config.Config, topic string, opts headlessOptions) error {
	logger := CreateLogger(cfg)
	defer func() { _ = logger.Close() }()

	gen, err := generate.NewFromConfig(&cfg.Generator)
	if err != nil {
		return err
	}
	bus := event.NewBus()
	session, err := newSession(cfg, topic, bus)
	if err != nil {
		return err
	}
	if session.Mode() != debate.ModeBothAutomated {
		return fmt.Errorf("%s debates need an interactive terminal; use 'podium debate' (or 'podium serve' for human_vs_human)", session.Mode())
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := newPrinter(cmd.OutOrStdout(), session, opts.quiet)
	out.header(generate.NameOf(gen))

	stopped := make(chan struct{})
	var once sync.Once
	bus.Subscribe(event.TypeSpeechAppended, func(e event.Event) {
		if se, ok := e.(event.SpeechAppendedEvent); ok {
			out.speech(se)
		}
	})
	bus.Subscribe(event.TypeAutoplayStateChanged, func(e event.Event) {
		if sc, ok := e.(event.AutoplayStateChangedEvent); ok && sc.To == string(autoplay.StateStopped) {
			once.Do(func() { close(stopped) })
		}
	})

	mod := moderator.New(session, gen,
		moderator.WithLogger(logger),
		moderator.WithAutoplay(autoplay.WithDelay(cfg.Autoplay.Delay())),
	)
	defer mod.Close()

	logger.Info("headless debate started", "session_id", session.ID(), "format", session.Format(), "delay", cfg.Autoplay.Delay())
	if err := mod.StartAutoplay(ctx); err != nil {
		return err
	}
	select {
	case <-stopped:
	case <-ctx.Done():
		mod.StopAutoplay()
	}
	mod.Driver().Wait()

	snap := session.Snapshot()
	runErr := mod.Driver().Err()
	out.summary(snap, runErr, ctx.Err() != nil)

	switch {
	case opts.out != "":
		if err := transcript.Save(opts.out, snap); err != nil {
			return err
		}
		out.saved(opts.out)
	default:
		path, err := autoSave(cfg, snap)
		if err != nil {
			return err
		}
		if path != "" {
			out.saved(path)
		}
	}

	return runErr
}

// printer writes a debate as it unfolds.
type printer struct {
	mu      sync.Mutex
	w       io.Writer
	session *debate.Session
	width   int
	quiet   bool
}

func newPrinter(w io.Writer, session *debate.Session, quiet bool) *printer {
	width := 80
	if tw, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && tw > 20 {
		width = min(tw, 100)
	}
	return &printer{w: w, session: session, width: width, quiet: quiet}
}

func sideColor(side debate.Side) *color.Color {
	if side == debate.SideB {
		return color.New(color.FgYellow, color.Bold)
	}
	return color.New(color.FgBlue, color.Bold)
}

func (p *printer) header(generator string) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.session
	fmt.Fprintf(p.w, "%s %s\n", color.New(color.Bold).Sprint("Resolution:"), s.Topic())
	fmt.Fprintf(p.w, "%s  |  %d speeches  |  %s vs %s  |  generator: %s\n\n",
		s.Format().DisplayName(),
		s.Policy().TotalSpeeches(),
		sideColor(debate.SideA).Sprint(s.Participant(debate.SideA)),
		sideColor(debate.SideB).Sprint(s.Participant(debate.SideB)),
		generator,
	)
}

func (p *printer) speech(se event.SpeechAppendedEvent) {
	if p.quiet {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	side := debate.Side(se.Side)
	heading := fmt.Sprintf("%d. %s - %s", se.Index+1, se.Label, p.session.SideName(side))
	fmt.Fprintf(p.w, "%s  %s\n", sideColor(side).Sprint(heading), color.HiBlackString("(%s)", se.Source))
	fmt.Fprintf(p.w, "%s\n\n", ansi.Wordwrap(se.Text, p.width, ""))
}

func (p *printer) summary(t debate.Transcript, err error, interrupted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	progress := fmt.Sprintf("%d/%d speeches", len(t.Speeches), t.TotalSpeeches)
	switch {
	case err != nil:
		fmt.Fprintf(p.w, "%s after %s: %v\n", color.RedString("Debate stopped"), progress, err)
	case interrupted:
		fmt.Fprintf(p.w, "%s after %s\n", color.YellowString("Debate interrupted"), progress)
	case t.Complete:
		fmt.Fprintf(p.w, "%s (%s)\n", color.GreenString("Debate complete"), progress)
	default:
		fmt.Fprintf(p.w, "%s after %s\n", color.YellowString("Debate stopped"), progress)
	}
}

func (p *printer) saved(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "Transcript saved to %s\n", path)
}
