package debate

import (
	"strconv"
	"time"

	"github.com/Iron-Ham/podium/internal/errors"
)

// formatRules is one row of the format table. Adding a format means adding a
// row here; no other code branches on the format.
type formatRules struct {
	total int

	// labels are indexed by index/perLabel. Nil means "Round {round}".
	labels   []string
	perLabel int

	// budgets follow the same bucketing as labels.
	words   []int
	minutes []int

	// orderSensitive formats consult SpeakingOrder for the opening side.
	orderSensitive bool
}

var formatTable = map[Format]formatRules{
	FormatDefault: {
		total: 10,
	},
	FormatPublicForum: {
		total:          8,
		labels:         []string{"CONSTRUCTIVE", "REBUTTAL", "SUMMARY", "FINAL FOCUS"},
		perLabel:       2,
		words:          []int{600, 600, 450, 300},
		minutes:        []int{4, 4, 3, 2},
		orderSensitive: true,
	},
	FormatLincolnDouglas: {
		total:    5,
		labels:   []string{"AC", "NC", "1AR", "NR", "2AR"},
		perLabel: 1,
		words:    []int{900, 1050, 600, 900, 450},
		minutes:  []int{6, 7, 4, 6, 3},
	},
}

// Policy answers every per-index question about a format: who speaks, what
// the speech is called, which round it belongs to, and its budgets.
// All methods are pure.
type Policy struct {
	format Format
	order  SpeakingOrder
	rules  formatRules
}

// PolicyFor returns the policy for a format. An empty order means
// OrderAFirst. The order is kept for every format but only Public Forum
// consults it.
func PolicyFor(f Format, order SpeakingOrder) (Policy, error) {
	rules, ok := formatTable[f]
	if !ok {
		return Policy{}, errors.NewValidationError("unknown debate format").
			WithField("format").WithValue(string(f))
	}
	if order == "" {
		order = OrderAFirst
	}
	if !order.Valid() {
		return Policy{}, errors.NewValidationError("unknown speaking order").
			WithField("order").WithValue(string(order))
	}
	return Policy{format: f, order: order, rules: rules}, nil
}

// Format returns the policy's format.
func (p Policy) Format() Format { return p.format }

// Order returns the speaking order the policy was built with.
func (p Policy) Order() SpeakingOrder { return p.order }

// TotalSpeeches returns how many speeches complete a debate.
func (p Policy) TotalSpeeches() int { return p.rules.total }

func (p Policy) check(i int) error {
	if i < 0 || i >= p.rules.total {
		return errors.NewRangeError(i, p.rules.total)
	}
	return nil
}

// SideFor returns the side that delivers speech i.
func (p Policy) SideFor(i int) (Side, error) {
	if err := p.check(i); err != nil {
		return "", err
	}
	opener := SideA
	if p.rules.orderSensitive && p.order == OrderBFirst {
		opener = SideB
	}
	if i%2 == 0 {
		return opener, nil
	}
	return opener.Opponent(), nil
}

// RoundFor returns the 1-based round of speech i. Each round is a pair of
// speeches, so the final Lincoln-Douglas rebuttal (2AR) is round 3.
func (p Policy) RoundFor(i int) (int, error) {
	if err := p.check(i); err != nil {
		return 0, err
	}
	return i/2 + 1, nil
}

// LabelFor returns the display label of speech i.
func (p Policy) LabelFor(i int) (string, error) {
	if err := p.check(i); err != nil {
		return "", err
	}
	if p.rules.labels == nil {
		return "Round " + strconv.Itoa(i/2+1), nil
	}
	return p.rules.labels[i/p.rules.perLabel], nil
}

// Metadata returns the label, round and budgets of speech i.
func (p Policy) Metadata(i int) (SpeechMetadata, error) {
	label, err := p.LabelFor(i)
	if err != nil {
		return SpeechMetadata{}, err
	}
	md := SpeechMetadata{
		Index: i,
		Label: label,
		Round: i/2 + 1,
	}
	if p.rules.words != nil {
		md.WordBudget = p.rules.words[i/p.rules.perLabel]
	}
	if p.rules.minutes != nil {
		md.TimeBudget = time.Duration(p.rules.minutes[i/p.rules.perLabel]) * time.Minute
	}
	return md, nil
}

// TotalSpeeches returns the speech count of f, or 0 for an unknown format.
func TotalSpeeches(f Format) int {
	return formatTable[f].total
}

// SideForIndex is PolicyFor(f, order).SideFor(i).
func SideForIndex(f Format, order SpeakingOrder, i int) (Side, error) {
	p, err := PolicyFor(f, order)
	if err != nil {
		return "", err
	}
	return p.SideFor(i)
}

// SpeechLabel is the label of speech i in f. Labels do not depend on the
// speaking order.
func SpeechLabel(f Format, i int) (string, error) {
	p, err := PolicyFor(f, OrderAFirst)
	if err != nil {
		return "", err
	}
	return p.LabelFor(i)
}
