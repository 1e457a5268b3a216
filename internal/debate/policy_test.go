package debate

import (
	"fmt"
	"testing"
	"time"

	"github.com/Iron-Ham/podium/internal/errors"
)

func mustPolicy(t *testing.T, f Format, order SpeakingOrder) Policy {
	t.Helper()
	p, err := PolicyFor(f, order)
	if err != nil {
		t.Fatalf("PolicyFor(%q, %q) error: %v", f, order, err)
	}
	return p
}

func TestTotalSpeeches(t *testing.T) {
	tests := []struct {
		format Format
		want   int
	}{
		{FormatDefault, 10},
		{FormatPublicForum, 8},
		{FormatLincolnDouglas, 5},
		{Format("oxford"), 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			if got := TotalSpeeches(tt.format); got != tt.want {
				t.Errorf("TotalSpeeches(%q) = %d, want %d", tt.format, got, tt.want)
			}
		})
	}
}

func TestPolicy_DefaultAlternation(t *testing.T) {
	p := mustPolicy(t, FormatDefault, OrderAFirst)
	for i := range 10 {
		side, err := p.SideFor(i)
		if err != nil {
			t.Fatalf("SideFor(%d) error: %v", i, err)
		}
		if (side == SideA) != (i%2 == 0) {
			t.Errorf("SideFor(%d) = %s", i, side)
		}
		label, _ := p.LabelFor(i)
		round, _ := p.RoundFor(i)
		if round != i/2+1 {
			t.Errorf("RoundFor(%d) = %d, want %d", i, round, i/2+1)
		}
		if want := fmt.Sprintf("Round %d", round); label != want {
			t.Errorf("LabelFor(%d) = %q, want %q", i, label, want)
		}
	}
}

func TestPolicy_DefaultIgnoresOrder(t *testing.T) {
	p := mustPolicy(t, FormatDefault, OrderBFirst)
	side, _ := p.SideFor(0)
	if side != SideA {
		t.Errorf("default format SideFor(0) with b_first = %s, want side_a", side)
	}
}

func TestPolicy_LincolnDouglas(t *testing.T) {
	p := mustPolicy(t, FormatLincolnDouglas, OrderBFirst)

	wantLabels := []string{"AC", "NC", "1AR", "NR", "2AR"}
	wantSides := []Side{SideA, SideB, SideA, SideB, SideA}
	wantWords := []int{900, 1050, 600, 900, 450}
	wantMinutes := []int{6, 7, 4, 6, 3}
	wantRounds := []int{1, 1, 2, 2, 3}

	for i := range 5 {
		md, err := p.Metadata(i)
		if err != nil {
			t.Fatalf("Metadata(%d) error: %v", i, err)
		}
		side, _ := p.SideFor(i)
		if md.Label != wantLabels[i] {
			t.Errorf("label[%d] = %q, want %q", i, md.Label, wantLabels[i])
		}
		if side != wantSides[i] {
			t.Errorf("side[%d] = %s, want %s", i, side, wantSides[i])
		}
		if md.WordBudget != wantWords[i] {
			t.Errorf("words[%d] = %d, want %d", i, md.WordBudget, wantWords[i])
		}
		if md.TimeBudget != time.Duration(wantMinutes[i])*time.Minute {
			t.Errorf("time[%d] = %s, want %dm", i, md.TimeBudget, wantMinutes[i])
		}
		if md.Round != wantRounds[i] {
			t.Errorf("round[%d] = %d, want %d", i, md.Round, wantRounds[i])
		}
	}
}

func TestPolicy_PublicForumBuckets(t *testing.T) {
	want := map[int]string{
		0: "CONSTRUCTIVE", 1: "CONSTRUCTIVE",
		2: "REBUTTAL", 3: "REBUTTAL",
		4: "SUMMARY", 5: "SUMMARY",
		6: "FINAL FOCUS", 7: "FINAL FOCUS",
	}
	for i, label := range want {
		got, err := SpeechLabel(FormatPublicForum, i)
		if err != nil {
			t.Fatalf("SpeechLabel(%d) error: %v", i, err)
		}
		if got != label {
			t.Errorf("SpeechLabel(pf, %d) = %q, want %q", i, got, label)
		}
	}

	md, _ := mustPolicy(t, FormatPublicForum, OrderAFirst).Metadata(6)
	if md.WordBudget != 300 || md.TimeBudget != 2*time.Minute {
		t.Errorf("final focus budgets = %d words / %s", md.WordBudget, md.TimeBudget)
	}
}

func TestPolicy_PublicForumSpeakingOrder(t *testing.T) {
	tests := []struct {
		order SpeakingOrder
		even  Side
		odd   Side
	}{
		{OrderAFirst, SideA, SideB},
		{OrderBFirst, SideB, SideA},
		{"", SideA, SideB},
	}
	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			for i := range 8 {
				got, err := SideForIndex(FormatPublicForum, tt.order, i)
				if err != nil {
					t.Fatalf("SideForIndex(%d) error: %v", i, err)
				}
				want := tt.odd
				if i%2 == 0 {
					want = tt.even
				}
				if got != want {
					t.Errorf("SideForIndex(pf, %s, %d) = %s, want %s", tt.order, i, got, want)
				}
			}
		})
	}
}

func TestPolicy_OutOfRange(t *testing.T) {
	for _, f := range Formats() {
		p := mustPolicy(t, f, OrderAFirst)
		for _, i := range []int{-1, p.TotalSpeeches(), p.TotalSpeeches() + 3} {
			if _, err := p.SideFor(i); !errors.Is(err, errors.ErrOutOfRange) {
				t.Errorf("%s SideFor(%d) err = %v, want OutOfRange", f, i, err)
			}
			if _, err := p.LabelFor(i); !errors.Is(err, errors.ErrOutOfRange) {
				t.Errorf("%s LabelFor(%d) err = %v, want OutOfRange", f, i, err)
			}
			if _, err := p.RoundFor(i); !errors.Is(err, errors.ErrOutOfRange) {
				t.Errorf("%s RoundFor(%d) err = %v, want OutOfRange", f, i, err)
			}
			if _, err := p.Metadata(i); !errors.Is(err, errors.ErrOutOfRange) {
				t.Errorf("%s Metadata(%d) err = %v, want OutOfRange", f, i, err)
			}
		}
	}
}

func TestPolicyFor_Invalid(t *testing.T) {
	if _, err := PolicyFor("oxford", OrderAFirst); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("unknown format err = %v, want validation error", err)
	}
	if _, err := PolicyFor(FormatPublicForum, "sideways"); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("unknown order err = %v, want validation error", err)
	}
	if _, err := SpeechLabel("oxford", 0); err == nil {
		t.Error("SpeechLabel with unknown format should fail")
	}
}

func TestSpeechMetadata_String(t *testing.T) {
	md, _ := mustPolicy(t, FormatLincolnDouglas, OrderAFirst).Metadata(1)
	if got, want := md.String(), "NC (round 1, ~1050 words, 7m0s)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	md, _ = mustPolicy(t, FormatDefault, OrderAFirst).Metadata(3)
	if got, want := md.String(), "Round 2 (round 2)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
