package tui

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/podium/internal/autoplay"
	"github.com/Iron-Ham/podium/internal/debate"
	"github.com/Iron-Ham/podium/internal/errors"
	"github.com/Iron-Ham/podium/internal/tui/styles"
	"github.com/Iron-Ham/podium/internal/util"
)

// Layout constants
const (
	headerHeight = 3 // title, subtitle, border
	statusHeight = 1
)

func renderHeader(s *debate.Session, width int) string {
	title := util.TruncateString("Podium: "+s.Topic(), max(width-2, 10))
	sub := fmt.Sprintf("%s  |  %s  |  %s vs %s  |  speech %d/%d",
		s.Format().DisplayName(),
		strings.ReplaceAll(string(s.Mode()), "_", " "),
		s.Participant(debate.SideA),
		s.Participant(debate.SideB),
		min(s.Len()+1, s.Policy().TotalSpeeches()),
		s.Policy().TotalSpeeches(),
	)
	return styles.Header.Width(width).Render(title + "\n" + styles.Subtitle.Render(sub))
}

// renderTranscript renders every delivered speech, oldest first.
func renderTranscript(s *debate.Session, width int, showBudgets bool) string {
	speeches := s.Speeches()
	if len(speeches) == 0 {
		return styles.Muted.Render("No speeches yet.")
	}

	body := styles.SpeechBody.Width(max(width, 20))
	var b strings.Builder
	for _, sp := range speeches {
		side := string(sp.Side)
		heading := fmt.Sprintf("%d. %s", sp.Index+1, sp.Label)
		b.WriteString(styles.SideBadge(side, s.SideName(sp.Side)))
		b.WriteString(" ")
		b.WriteString(styles.SideStyle(side).Render(heading))
		if showBudgets {
			if md, err := s.Policy().Metadata(sp.Index); err == nil && md.WordBudget > 0 {
				words := util.WordCount(sp.Text)
				b.WriteString(styles.Muted.Render(fmt.Sprintf("  %d/%d words", words, md.WordBudget)))
			}
		}
		if sp.Source != "" {
			b.WriteString("  ")
			b.WriteString(styles.SpeechSource.Render(sp.Source))
		}
		b.WriteString("\n")
		b.WriteString(body.Render(sp.Text))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderStatus shows whose turn it is, autoplay state and the last error.
func (m Model) renderStatus() string {
	var parts []string

	t := m.session.Turn()
	switch {
	case t.Complete:
		parts = append(parts, styles.Success.Render("Debate complete"))
	default:
		md, _ := m.session.Policy().Metadata(t.Index)
		next := fmt.Sprintf("Next: %s for %s", md.Label, m.session.SideName(t.Expected))
		if m.opts.ShowBudgets && md.WordBudget > 0 {
			next += fmt.Sprintf(" (~%d words, %s)", md.WordBudget, md.TimeBudget)
		}
		if t.Human {
			next += styles.Warning.Render("  your turn")
		}
		parts = append(parts, next)
	}

	if m.session.Mode() == debate.ModeBothAutomated {
		parts = append(parts, "autoplay: "+string(m.autoState))
	}
	if m.busy || m.autoState == autoplay.StateAwaitingResult {
		parts = append(parts, m.spinner.View()+" thinking")
	}
	if m.err != nil {
		msg := m.err.Error()
		if errors.IsRetryable(m.err) && !m.session.IsComplete() {
			msg += " (" + m.keys.NextSpeech.Help().Key + " to retry)"
		}
		parts = append(parts, styles.Error.Render(msg))
	} else if m.status != "" {
		parts = append(parts, styles.Muted.Render(m.status))
	}

	line := strings.Join(parts, "  |  ")
	return styles.StatusBar.Render(util.TruncateANSI(line, max(m.width-2, 10)))
}
