// Package tui is the interactive terminal interface for a debate.
package tui

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/podium/internal/autoplay"
	"github.com/Iron-Ham/podium/internal/debate"
	"github.com/Iron-Ham/podium/internal/event"
	"github.com/Iron-Ham/podium/internal/moderator"
)

// App wraps the Bubbletea program
type App struct {
	program *tea.Program
	model   Model
	mod     *moderator.Moderator
	cancel  context.CancelFunc
}

// New creates a new TUI application
func New(mod *moderator.Moderator, opts Options) *App {
	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		model:  NewModel(ctx, mod, opts),
		mod:    mod,
		cancel: cancel,
	}
}

// Run starts the TUI application and blocks until the user quits. On exit
// autoplay is stopped and in-flight generations are canceled.
func (a *App) Run() error {
	defer func() {
		a.cancel()
		a.mod.Close()
	}()

	a.program = tea.NewProgram(
		a.model,
		tea.WithAltScreen(),
	)

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		<-sigChan
		if a.program != nil {
			a.program.Send(tea.Quit())
		}
	}()

	if bus := a.mod.Bus(); bus != nil {
		for _, id := range a.forwardEvents(bus) {
			defer bus.Unsubscribe(id)
		}
	}

	_, err := a.program.Run()
	signal.Stop(sigChan)
	return err
}

// forwardEvents turns bus events into program messages.
func (a *App) forwardEvents(bus *event.Bus) []string {
	return []string{
		bus.Subscribe(event.TypeSpeechAppended, func(e event.Event) {
			if se, ok := e.(event.SpeechAppendedEvent); ok {
				a.program.Send(speechMsg{index: se.Index})
			}
		}),
		bus.Subscribe(event.TypeDebateCompleted, func(event.Event) {
			a.program.Send(completeMsg{})
		}),
		bus.Subscribe(event.TypeAutoplayStateChanged, func(e event.Event) {
			if sc, ok := e.(event.AutoplayStateChangedEvent); ok {
				a.program.Send(autoplayMsg{to: autoplay.State(sc.To)})
			}
		}),
		bus.Subscribe(event.TypeGenerationFailed, func(e event.Event) {
			if gf, ok := e.(event.GenerationFailedEvent); ok {
				a.program.Send(generationFailedMsg{index: gf.Index, side: debate.Side(gf.Side), err: gf.Err})
			}
		}),
	}
}
