package tui

import (
	"github.com/Iron-Ham/podium/internal/autoplay"
	"github.com/Iron-Ham/podium/internal/debate"
)

// speechMsg reports a speech appended to the ledger.
type speechMsg struct {
	index int
}

// completeMsg reports that the final speech landed.
type completeMsg struct{}

// autoplayMsg reports an autoplay state transition.
type autoplayMsg struct {
	to autoplay.State
}

// generationFailedMsg reports a generator error.
type generationFailedMsg struct {
	index int
	side  debate.Side
	err   error
}

// submitResultMsg is the outcome of delivering a human speech, including
// any automated replies that followed it.
type submitResultMsg struct {
	speech   debate.Speech
	accepted bool
	err      error
}

// generateResultMsg is the outcome of a manual or follow-up generation.
type generateResultMsg struct {
	count int
	err   error
}

// autoplayToggledMsg is the outcome of starting or stopping autoplay.
type autoplayToggledMsg struct {
	err error
}

// exportResultMsg is the outcome of writing the transcript to disk.
type exportResultMsg struct {
	path string
	err  error
}
