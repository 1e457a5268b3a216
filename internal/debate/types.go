package debate

import (
	"fmt"
	"strings"
	"time"

	"github.com/Iron-Ham/podium/internal/errors"
)

// Format identifies a competitive debate format. It is fixed for the
// lifetime of a session.
type Format string

const (
	// FormatDefault is five rounds of alternating Pro/Con speeches.
	FormatDefault Format = "default"

	// FormatPublicForum is the eight-speech Public Forum format.
	FormatPublicForum Format = "public_forum"

	// FormatLincolnDouglas is the five-speech Lincoln-Douglas format.
	FormatLincolnDouglas Format = "lincoln_douglas"
)

// Formats returns every supported format in display order.
func Formats() []Format {
	return []Format{FormatDefault, FormatPublicForum, FormatLincolnDouglas}
}

// Valid reports whether f is a supported format.
func (f Format) Valid() bool {
	_, ok := formatTable[f]
	return ok
}

// DisplayName returns a human readable name for the format.
func (f Format) DisplayName() string {
	switch f {
	case FormatDefault:
		return "Default"
	case FormatPublicForum:
		return "Public Forum"
	case FormatLincolnDouglas:
		return "Lincoln-Douglas"
	default:
		return string(f)
	}
}

// ParseFormat accepts the canonical names plus the common short forms
// ("pf", "ld") in any case, with '-' or ' ' in place of '_'.
func ParseFormat(s string) (Format, error) {
	switch normalize(s) {
	case "default", "":
		return FormatDefault, nil
	case "public_forum", "pf", "publicforum":
		return FormatPublicForum, nil
	case "lincoln_douglas", "ld", "lincolndouglas":
		return FormatLincolnDouglas, nil
	}
	return "", errors.NewValidationError("unknown debate format").
		WithField("format").WithValue(s)
}

// Mode describes who produces each side's speeches.
type Mode string

const (
	ModeBothAutomated    Mode = "both_automated"
	ModeHumanVsAutomated Mode = "human_vs_automated"
	ModeHumanVsHuman     Mode = "human_vs_human"
)

// Modes returns every supported mode.
func Modes() []Mode {
	return []Mode{ModeBothAutomated, ModeHumanVsAutomated, ModeHumanVsHuman}
}

// Valid reports whether m is a supported mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeBothAutomated, ModeHumanVsAutomated, ModeHumanVsHuman:
		return true
	}
	return false
}

// ParseMode accepts canonical names and the short forms "auto", "hva", "hvh".
func ParseMode(s string) (Mode, error) {
	switch normalize(s) {
	case "both_automated", "auto", "ai_vs_ai", "":
		return ModeBothAutomated, nil
	case "human_vs_automated", "hva", "human_vs_ai":
		return ModeHumanVsAutomated, nil
	case "human_vs_human", "hvh":
		return ModeHumanVsHuman, nil
	}
	return "", errors.NewValidationError("unknown debate mode").
		WithField("mode").WithValue(s)
}

// Side is one of the two debating sides.
type Side string

const (
	// SideA argues for the resolution (Pro / Affirmative).
	SideA Side = "side_a"

	// SideB argues against it (Con / Negative).
	SideB Side = "side_b"
)

// Valid reports whether s is SideA or SideB.
func (s Side) Valid() bool {
	return s == SideA || s == SideB
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// ParseSide accepts "side_a"/"side_b", "a"/"b" and the format display names
// (pro, con, aff, affirmative, neg, negative).
func ParseSide(s string) (Side, error) {
	switch normalize(s) {
	case "side_a", "a", "pro", "aff", "affirmative":
		return SideA, nil
	case "side_b", "b", "con", "neg", "negative":
		return SideB, nil
	}
	return "", errors.NewValidationError("unknown side").
		WithField("side").WithValue(s)
}

// SideName returns the display name of a side within a format:
// Affirmative/Negative for Lincoln-Douglas and Pro/Con otherwise.
func SideName(f Format, s Side) string {
	if f == FormatLincolnDouglas {
		if s == SideA {
			return "Affirmative"
		}
		return "Negative"
	}
	if s == SideA {
		return "Pro"
	}
	return "Con"
}

// SpeakingOrder selects which side opens a Public Forum debate. Other
// formats ignore it.
type SpeakingOrder string

const (
	OrderAFirst SpeakingOrder = "a_first"
	OrderBFirst SpeakingOrder = "b_first"
)

// Valid reports whether o is a supported speaking order.
func (o SpeakingOrder) Valid() bool {
	return o == OrderAFirst || o == OrderBFirst
}

// ParseSpeakingOrder accepts "a_first"/"b_first" and "pro_first"/"con_first".
// The empty string means OrderAFirst.
func ParseSpeakingOrder(s string) (SpeakingOrder, error) {
	switch normalize(s) {
	case "a_first", "side_a_first", "pro_first", "a", "":
		return OrderAFirst, nil
	case "b_first", "side_b_first", "con_first", "b":
		return OrderBFirst, nil
	}
	return "", errors.NewValidationError("unknown speaking order").
		WithField("order").WithValue(s)
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}

// Speech is one entry in the ledger. Round and Label are computed from the
// format when the speech is appended and never change afterwards.
type Speech struct {
	Index     int       `json:"index" yaml:"index"`
	Side      Side      `json:"side" yaml:"side"`
	Text      string    `json:"text" yaml:"text"`
	Source    string    `json:"source,omitempty" yaml:"source,omitempty"`
	Round     int       `json:"round" yaml:"round"`
	Label     string    `json:"label" yaml:"label"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// SpeechMetadata is the per-speech format information handed to a text
// generator. Budgets are advisory; zero means no budget.
type SpeechMetadata struct {
	Index      int           `json:"index" yaml:"index"`
	Label      string        `json:"label" yaml:"label"`
	Round      int           `json:"round" yaml:"round"`
	WordBudget int           `json:"word_budget,omitempty" yaml:"word_budget,omitempty"`
	TimeBudget time.Duration `json:"time_budget,omitempty" yaml:"time_budget,omitempty"`
}

// String renders the metadata for prompts and status lines,
// e.g. "NC (round 1, ~1050 words, 7m0s)".
func (m SpeechMetadata) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (round %d", m.Label, m.Round)
	if m.WordBudget > 0 {
		fmt.Fprintf(&b, ", ~%d words", m.WordBudget)
	}
	if m.TimeBudget > 0 {
		fmt.Fprintf(&b, ", %s", m.TimeBudget)
	}
	b.WriteString(")")
	return b.String()
}

// Transcript is a read-only snapshot of a session handed to export and
// rendering collaborators.
type Transcript struct {
	ID            string          `json:"id" yaml:"id"`
	Topic         string          `json:"topic" yaml:"topic"`
	Format        Format          `json:"format" yaml:"format"`
	Mode          Mode            `json:"mode" yaml:"mode"`
	SpeakingOrder SpeakingOrder   `json:"speaking_order" yaml:"speaking_order"`
	HumanSide     Side            `json:"human_side,omitempty" yaml:"human_side,omitempty"`
	Participants  map[Side]string `json:"participants,omitempty" yaml:"participants,omitempty"`
	TotalSpeeches int             `json:"total_speeches" yaml:"total_speeches"`
	Complete      bool            `json:"complete" yaml:"complete"`
	Speeches      []Speech        `json:"speeches" yaml:"speeches"`
	CreatedAt     time.Time       `json:"created_at" yaml:"created_at"`
}
