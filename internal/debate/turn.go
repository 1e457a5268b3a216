package debate

// Turn describes whose move it is at one point of a session.
type Turn struct {
	// Index is the ledger position the next speech will take.
	Index int

	// Expected is the side the format schedules at Index. Empty when Complete.
	Expected Side

	// Complete is true once the ledger holds every speech.
	Complete bool

	// Human is true when a human participant may speak now.
	Human bool

	// Automated is true when an automated side must speak now.
	Automated bool
}

// resolveTurn is the mode-aware turn rule. It depends only on the policy,
// the mode, the human binding and the ledger length.
func resolveTurn(p Policy, mode Mode, human Side, n int) Turn {
	if n >= p.TotalSpeeches() {
		return Turn{Index: n, Complete: true}
	}
	expected, _ := p.SideFor(n)
	t := Turn{Index: n, Expected: expected}
	switch mode {
	case ModeHumanVsAutomated:
		t.Human = expected == human
		t.Automated = !t.Human
	case ModeHumanVsHuman:
		t.Human = true
	case ModeBothAutomated:
		t.Automated = true
	}
	return t
}

// CanHumanActNow reports whether a human may submit the next speech.
func CanHumanActNow(s *Session) bool {
	return s.Turn().Human
}

// NextAutomatedSide returns the side an automated generator should speak
// for, or false when the debate is complete or a human holds the turn.
// Callers generating speeches must re-query it before every generation.
func NextAutomatedSide(s *Session) (Side, bool) {
	t := s.Turn()
	if !t.Automated {
		return "", false
	}
	return t.Expected, true
}

// ExpectedSide returns the side scheduled to speak next, or false when the
// debate is complete.
func ExpectedSide(s *Session) (Side, bool) {
	t := s.Turn()
	if t.Complete {
		return "", false
	}
	return t.Expected, true
}

// CanParticipantAct reports whether the human seated on side may speak now.
// In human-vs-automated mode only the bound human side can ever act.
func CanParticipantAct(s *Session, side Side) bool {
	t := s.Turn()
	if !t.Human || side != t.Expected {
		return false
	}
	if s.Mode() == ModeHumanVsAutomated {
		return side == s.HumanSide()
	}
	return true
}

// IsComplete reports whether every speech of the format has been delivered.
func IsComplete(s *Session) bool {
	return s.IsComplete()
}
