// Package debate is the turn engine for structured two-sided debates.
//
// It decides whose turn it is, what each speech is called, which round it
// belongs to and when the debate is over. It never looks at speech content.
//
// # Formats
//
// Each [Format] is a row in a table read through [Policy]:
//
//   - default: 10 speeches, alternating from side A, labeled "Round N"
//   - public_forum: 8 speeches in pairs CONSTRUCTIVE, REBUTTAL, SUMMARY,
//     FINAL FOCUS; the [SpeakingOrder] picks the opening side
//   - lincoln_douglas: AC, NC, 1AR, NR, 2AR, side A first, with word and
//     time budgets per speech
//
// # Turns
//
// A [Session] owns the append-only speech ledger. [Session.Turn] combines
// the ledger length, the format and the [Mode] into a [Turn]; the helpers
// [CanHumanActNow], [NextAutomatedSide], [ExpectedSide] and
// [CanParticipantAct] are views over it. [Session.Append] rejects a side
// that is not scheduled with an InvalidTurn error and never corrects it.
//
// # Usage
//
//	sess, err := debate.NewSession(debate.Config{
//	    Topic:     "Cities should ban cars downtown",
//	    Format:    debate.FormatLincolnDouglas,
//	    Mode:      debate.ModeHumanVsAutomated,
//	    HumanSide: debate.SideA,
//	}, debate.WithBus(bus))
//	if err != nil {
//	    return err
//	}
//	if debate.CanHumanActNow(sess) {
//	    _, err = sess.SubmitHuman(debate.SideA, text)
//	}
//
// # Thread Safety
//
// Session is safe for concurrent use. Events are published after the ledger
// lock is released.
package debate
