package transcript

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/podium/internal/debate"
)

// Markdown renders t as a readable document: a header with the debate
// setup followed by one section per speech.
func Markdown(t debate.Transcript) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t.Topic)
	fmt.Fprintf(&b, "- **Format:** %s\n", t.Format.DisplayName())
	fmt.Fprintf(&b, "- **Mode:** %s\n", t.Mode)
	for _, side := range []debate.Side{debate.SideA, debate.SideB} {
		name := debate.SideName(t.Format, side)
		fmt.Fprintf(&b, "- **%s:** %s", name, participant(t, side))
		if t.HumanSide == side {
			b.WriteString(" (human)")
		}
		b.WriteString("\n")
	}
	status := "in progress"
	if t.Complete {
		status = "complete"
	}
	fmt.Fprintf(&b, "- **Speeches:** %d/%d (%s)\n", len(t.Speeches), t.TotalSpeeches, status)

	for _, sp := range t.Speeches {
		fmt.Fprintf(&b, "\n## %d. %s - %s (round %d)\n\n", sp.Index+1, sp.Label, debate.SideName(t.Format, sp.Side), sp.Round)
		if sp.Source != "" {
			fmt.Fprintf(&b, "_%s_\n\n", sp.Source)
		}
		b.WriteString(strings.TrimSpace(sp.Text))
		b.WriteString("\n")
	}
	return b.String()
}

func participant(t debate.Transcript, side debate.Side) string {
	if name := t.Participants[side]; name != "" {
		return name
	}
	return debate.SideName(t.Format, side)
}
