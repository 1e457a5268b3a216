package moderator

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Iron-Ham/podium/internal/autoplay"
	"github.com/Iron-Ham/podium/internal/debate"
	"github.com/Iron-Ham/podium/internal/errors"
	"github.com/Iron-Ham/podium/internal/event"
	"github.com/Iron-Ham/podium/internal/generate"
	"github.com/Iron-Ham/podium/internal/testutil"
)

func scripted() generate.Generator {
	return generate.Func(func(_ context.Context, req generate.Request) (string, error) {
		return fmt.Sprintf("%s by %s", req.Metadata.Label, req.SideName), nil
	})
}

func TestModerator_HumanVsAutomated(t *testing.T) {
	bus := event.NewBus()
	events := testutil.RecordEvents(t, bus)
	s := testutil.NewSession(t, debate.Config{
		Format:    debate.FormatLincolnDouglas,
		Mode:      debate.ModeHumanVsAutomated,
		HumanSide: debate.SideB,
	}, debate.WithBus(bus))
	m := New(s, scripted())
	defer m.Close()

	// Side A opens, so the automated side speaks before the human.
	if _, err := m.Advance(context.Background()); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if s.Len() != 1 || !debate.CanHumanActNow(s) {
		t.Fatalf("after opening: len %d, human turn %v", s.Len(), debate.CanHumanActNow(s))
	}

	if _, err := m.SubmitHuman(context.Background(), debate.SideA, "not mine"); !errors.Is(err, errors.ErrInvalidTurn) {
		t.Errorf("submit for the automated side err = %v, want InvalidTurn", err)
	}

	sp, err := m.SubmitHuman(context.Background(), debate.SideB, "My NC.")
	if err != nil {
		t.Fatalf("SubmitHuman: %v", err)
	}
	if sp.Label != "NC" {
		t.Errorf("human speech label = %q", sp.Label)
	}
	// The automated 1AR follows immediately, then it is the human's NR.
	if s.Len() != 3 {
		t.Fatalf("len = %d, want 3", s.Len())
	}
	if got := s.Speeches()[2]; got.Label != "1AR" || got.Text != "1AR by Affirmative" {
		t.Errorf("automated reply = %+v", got)
	}

	if _, err := m.SubmitHuman(context.Background(), debate.SideB, "My NR."); err != nil {
		t.Fatal(err)
	}
	if !s.IsComplete() {
		t.Errorf("debate should be complete, len %d", s.Len())
	}
	if events.Count(event.TypeSpeechAppended) != 5 || events.Count(event.TypeDebateCompleted) != 1 {
		t.Errorf("events = %v", events.Types())
	}
}

func TestModerator_SubmitHumanReportsReplyFailure(t *testing.T) {
	var fail atomic.Bool
	gen := generate.Func(func(_ context.Context, req generate.Request) (string, error) {
		if fail.Load() {
			return "", fmt.Errorf("backend down")
		}
		return "auto", nil
	})
	bus := event.NewBus()
	events := testutil.RecordEvents(t, bus)
	s := testutil.NewSession(t, debate.Config{
		Mode:      debate.ModeHumanVsAutomated,
		HumanSide: debate.SideA,
	}, debate.WithBus(bus))
	m := New(s, gen)
	defer m.Close()

	fail.Store(true)
	sp, err := m.SubmitHuman(context.Background(), debate.SideA, "Opening.")
	if sp.Index != 0 || sp.Text != "Opening." {
		t.Errorf("human speech should be accepted: %+v", sp)
	}
	if !errors.Is(err, errors.ErrGenerationFailed) {
		t.Fatalf("err = %v, want generation failure", err)
	}
	if events.Count(event.TypeGenerationFailed) != 1 {
		t.Errorf("events = %v", events.Types())
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Len())
	}

	// The turn stays open for a retry.
	fail.Store(false)
	retry, err := m.RequestAutomated(context.Background())
	if err != nil {
		t.Fatalf("RequestAutomated: %v", err)
	}
	if retry.Index != 1 || retry.Side != debate.SideB {
		t.Errorf("retry speech = %+v", retry)
	}
}

func TestModerator_RequestAutomated(t *testing.T) {
	t.Run("manual stepping", func(t *testing.T) {
		s := testutil.NewSession(t, debate.Config{Format: debate.FormatPublicForum, Order: debate.OrderBFirst})
		m := New(s, scripted())
		defer m.Close()

		sp, err := m.RequestAutomated(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if sp.Side != debate.SideB || sp.Label != "CONSTRUCTIVE" || sp.Text != "CONSTRUCTIVE by Con" {
			t.Errorf("speech = %+v", sp)
		}
	})

	t.Run("human turn", func(t *testing.T) {
		s := testutil.NewSession(t, debate.Config{Mode: debate.ModeHumanVsHuman})
		m := New(s, scripted())
		defer m.Close()

		if _, err := m.RequestAutomated(context.Background()); !errors.Is(err, errors.ErrInvalidTurn) {
			t.Errorf("err = %v, want InvalidTurn", err)
		}
	})

	t.Run("complete", func(t *testing.T) {
		s := testutil.NewSession(t, debate.Config{Format: debate.FormatLincolnDouglas})
		m := New(s, scripted())
		defer m.Close()

		if _, err := m.Advance(context.Background()); err != nil {
			t.Fatal(err)
		}
		if _, err := m.RequestAutomated(context.Background()); !errors.Is(err, errors.ErrOutOfRange) {
			t.Errorf("err = %v, want OutOfRange", err)
		}
	})

	t.Run("refused during autoplay", func(t *testing.T) {
		gen := testutil.NewControlledGenerator(2)
		s := testutil.NewSession(t, debate.Config{})
		m := New(s, gen)
		defer func() {
			m.StopAutoplay()
			m.Close()
		}()

		if err := m.StartAutoplay(context.Background()); err != nil {
			t.Fatal(err)
		}
		gen.Next(t, time.Second)
		if _, err := m.RequestAutomated(context.Background()); !errors.Is(err, autoplay.ErrAlreadyRunning) {
			t.Errorf("err = %v, want ErrAlreadyRunning", err)
		}
	})
}

func TestModerator_Autoplay(t *testing.T) {
	s := testutil.NewSession(t, debate.Config{Format: debate.FormatPublicForum})
	m := New(s, &generate.EchoGenerator{}, WithAutoplay(autoplay.WithDelay(time.Millisecond)))
	defer m.Close()

	if err := m.StartAutoplay(context.Background()); err != nil {
		t.Fatal(err)
	}
	testutil.WaitFor(t, 2*time.Second, s.IsComplete, "autoplay did not complete the debate")
	testutil.WaitFor(t, 2*time.Second, func() bool {
		return m.Driver().State() == autoplay.StateStopped
	}, "driver did not stop")

	tr := m.Snapshot()
	if !tr.Complete || len(tr.Speeches) != 8 {
		t.Errorf("snapshot complete=%v speeches=%d", tr.Complete, len(tr.Speeches))
	}
	m.StopAutoplay()
}

func TestModerator_AdvanceHonorsContext(t *testing.T) {
	s := testutil.NewSession(t, debate.Config{})
	m := New(s, scripted())
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := m.Advance(ctx)
	if !errors.Is(err, context.Canceled) || len(out) != 0 {
		t.Errorf("Advance on canceled ctx = %d speeches, %v", len(out), err)
	}
}
