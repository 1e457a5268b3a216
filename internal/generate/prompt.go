package generate

import (
	"fmt"
	"math"
	"strings"

	"github.com/Iron-Ham/podium/internal/debate"
)

// Message is one chat message in the role/content shape shared by the
// Ollama and OpenAI-compatible chat APIs.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// maxPriorChars bounds how much of the transcript is quoted back.
const maxPriorChars = 24_000

// BuildPrompt turns a request into a system and a user message.
// wordScale multiplies the word budget quoted to the model; values <= 0
// are treated as 1.
func BuildPrompt(req Request, wordScale float64) []Message {
	return []Message{
		{Role: "system", Content: systemPrompt(req, wordScale)},
		{Role: "user", Content: userPrompt(req)},
	}
}

func systemPrompt(req Request, wordScale float64) string {
	stance := "in favor of"
	if req.Side == debate.SideB {
		stance = "against"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are the %s speaker in a %s debate.\n", req.SideName, req.Format.DisplayName())
	fmt.Fprintf(&b, "Resolution: %q\n", req.Topic)
	fmt.Fprintf(&b, "You argue %s the resolution. Your opponent is the %s.\n\n", stance, req.OpponentName)

	md := req.Metadata
	fmt.Fprintf(&b, "Deliver the %s speech (speech %d, round %d).", md.Label, req.Index+1, md.Round)
	if words := scaledWords(md.WordBudget, wordScale); words > 0 {
		fmt.Fprintf(&b, " Aim for about %d words", words)
		if md.TimeBudget > 0 {
			fmt.Fprintf(&b, ", roughly %d minutes spoken", int(md.TimeBudget.Minutes()))
		}
		b.WriteString(".")
	}
	b.WriteString("\n")
	if hint := labelGuidance[md.Label]; hint != "" {
		b.WriteString(hint)
		b.WriteString("\n")
	}
	b.WriteString("Respond with the speech text only. No title, no speaker tag, no stage directions.")
	return b.String()
}

var labelGuidance = map[string]string{
	"CONSTRUCTIVE": "Build your case: framework, two or three contentions, evidence.",
	"REBUTTAL":     "Attack your opponent's contentions and defend your own.",
	"SUMMARY":      "Collapse to the strongest arguments and extend them.",
	"FINAL FOCUS":  "Explain why your side wins the key clash. No new arguments.",
	"AC":           "Present the affirmative value, criterion and contentions.",
	"NC":           "Present the negative case and refute the affirmative constructive.",
	"1AR":          "Answer the negative case and rebuild the affirmative.",
	"NR":           "Extend the negative's best arguments and give voting issues.",
	"2AR":          "Crystallize: explain why the affirmative wins. No new arguments.",
}

func scaledWords(budget int, scale float64) int {
	if budget <= 0 {
		return 0
	}
	if scale <= 0 {
		scale = 1
	}
	return int(math.Round(float64(budget) * scale))
}

func userPrompt(req Request) string {
	if len(req.Prior) == 0 {
		return "You open the debate. Deliver your speech now."
	}

	var b strings.Builder
	b.WriteString("Transcript so far:\n\n")
	b.WriteString(formatPrior(req))
	fmt.Fprintf(&b, "\nNow deliver your %s.", req.Metadata.Label)
	return b.String()
}

// formatPrior renders the transcript, dropping the oldest speeches first
// when it would exceed maxPriorChars.
func formatPrior(req Request) string {
	blocks := make([]string, len(req.Prior))
	for i, sp := range req.Prior {
		blocks[i] = fmt.Sprintf("[%s | %s]\n%s\n", sp.Label, debate.SideName(req.Format, sp.Side), strings.TrimSpace(sp.Text))
	}

	total := 0
	start := len(blocks)
	for start > 0 && total+len(blocks[start-1]) <= maxPriorChars {
		start--
		total += len(blocks[start])
	}
	if start == len(blocks) && len(blocks) > 0 {
		start = len(blocks) - 1
	}

	var b strings.Builder
	if start > 0 {
		fmt.Fprintf(&b, "(%d earlier speeches omitted)\n\n", start)
	}
	for _, block := range blocks[start:] {
		b.WriteString(block)
		b.WriteString("\n")
	}
	return b.String()
}
