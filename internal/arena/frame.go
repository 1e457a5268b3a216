package arena

import (
	"github.com/Iron-Ham/podium/internal/debate"
	"github.com/Iron-Ham/podium/internal/errors"
)

// Frame types exchanged over a seat's websocket.
const (
	FrameWelcome  = "welcome"
	FrameJoined   = "joined"
	FrameLeft     = "left"
	FrameSpeech   = "speech"
	FrameComplete = "complete"
	FrameError    = "error"
)

// WatchSide is the pseudo-side used by spectators.
const WatchSide = "watch"

// Frame is the JSON message sent in both directions. Clients only send
// {"type":"speech","text":"..."}.
type Frame struct {
	Type       string             `json:"type"`
	Side       string             `json:"side,omitempty"`
	Name       string             `json:"name,omitempty"`
	Text       string             `json:"text,omitempty"`
	Speech     *debate.Speech     `json:"speech,omitempty"`
	Transcript *debate.Transcript `json:"transcript,omitempty"`
	Next       string             `json:"next,omitempty"`
	Code       string             `json:"code,omitempty"`
	Message    string             `json:"message,omitempty"`
}

func errorFrame(err error) Frame {
	return Frame{Type: FrameError, Code: errorCode(err), Message: err.Error()}
}

// errorCode maps an error to the stable code clients switch on.
func errorCode(err error) string {
	var notFound *errors.NotFoundError
	var exists *errors.AlreadyExistsError
	switch {
	case errors.Is(err, errors.ErrInvalidTurn):
		return "invalid_turn"
	case errors.Is(err, errors.ErrOutOfRange):
		return "out_of_range"
	case errors.As(err, &exists):
		return "seat_taken"
	case errors.As(err, &notFound):
		return "not_found"
	case errors.Is(err, ErrRoomLimit):
		return "room_limit"
	case errors.Is(err, errors.ErrInvalidInput):
		return "invalid_input"
	default:
		return "internal"
	}
}
