package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Iron-Ham/podium/internal/debate"
	"github.com/Iron-Ham/podium/internal/util"
)

// EchoGenerator writes short deterministic speeches without any model.
// It backs offline runs and tests.
type EchoGenerator struct {
	// Latency simulates model think time; the wait honors ctx.
	Latency time.Duration
}

// Name implements Named.
func (e *EchoGenerator) Name() string { return "echo" }

// Generate implements Generator.
func (e *EchoGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if e.Latency > 0 {
		t := time.NewTimer(e.Latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return "", fail(req, "echo", "echo generation", e.Latency, ctx.Err())
		case <-t.C:
		}
	} else if err := ctx.Err(); err != nil {
		return "", fail(req, "echo", "echo generation", 0, err)
	}
	return EchoText(req), nil
}

// EchoText is the speech EchoGenerator returns for req.
func EchoText(req Request) string {
	var b strings.Builder
	if req.SideName != "" {
		fmt.Fprintf(&b, "%s, ", req.SideName)
	}
	fmt.Fprintf(&b, "%s: ", req.Metadata.Label)
	stance := "supports"
	if req.Side == debate.SideB {
		stance = "opposes"
	}
	fmt.Fprintf(&b, "this side %s %q.", stance, req.Topic)
	if n := len(req.Prior); n > 0 {
		last := req.Prior[n-1]
		fmt.Fprintf(&b, " Responding to the %s (%d words).", last.Label, util.WordCount(last.Text))
	}
	return b.String()
}
