package assessment

import (
	"strings"
	"testing"
)

type fakeLinker struct{}

func (fakeLinker) BookingURL(assessmentID string, tier Tier) string {
	return "https://book.example.com/?a=" + assessmentID + "&t=" + string(tier)
}

func TestPresenter_Tiered(t *testing.T) {
	p := NewPresenter(fakeLinker{})
	a := StopBang()
	r := a.Evaluate(ResponseSet{
		"snoring":  {Kind: KindBinary, Bool: true},
		"tired":    {Kind: KindBinary, Bool: true},
		"observed": {Kind: KindBinary, Bool: true},
	})
	pres := p.Present(a, r)

	if pres.Tier != TierMedium || pres.Score != 3 || pres.MaxScore != 8 {
		t.Errorf("unexpected header %+v", pres)
	}
	if pres.Label != "Intermediate risk of obstructive sleep apnea" {
		t.Errorf("unexpected label %q", pres.Label)
	}
	if !strings.Contains(pres.NarrativeHTML, "<strong>intermediate risk</strong>") {
		t.Errorf("expected rendered markdown, got %q", pres.NarrativeHTML)
	}
	if pres.Action.Kind != ActionBook || pres.Action.Target != "https://book.example.com/?a=stop-bang&t=medium" {
		t.Errorf("expected resolved booking action, got %+v", pres.Action)
	}
	if len(pres.Blocks) != 1 {
		t.Errorf("expected one block, got %d", len(pres.Blocks))
	}
	if len(pres.Actions) != 2 || pres.Actions[0].Kind != ActionBook || pres.Actions[1].Kind != ActionRestart {
		t.Errorf("expected book and restart exits, got %+v", pres.Actions)
	}
}

func TestPresenter_LearnTargetUntouched(t *testing.T) {
	p := NewPresenter(fakeLinker{})
	a := StopBang()
	pres := p.Present(a, a.Evaluate(nil))
	if pres.Action.Kind != ActionLearn || pres.Action.Target != "/resources/sleep-and-weight" {
		t.Errorf("unexpected action %+v", pres.Action)
	}
}

func TestPresenter_FlaggedShowsAllBlocks(t *testing.T) {
	p := NewPresenter(nil)
	a := NewWeightLossQuiz()
	r := a.Evaluate(ResponseSet{
		"medication_interest": {Kind: KindSingle, Choice: "very"},
		"timeline":            {Kind: KindSingle, Choice: "asap"},
	})
	pres := p.Present(a, r)
	if len(pres.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(pres.Blocks))
	}
	if pres.Blocks[0].Key != string(FlagMedicationCandidate) || pres.Blocks[1].Key != string(FlagReadyToStart) {
		t.Errorf("unexpected blocks %s, %s", pres.Blocks[0].Key, pres.Blocks[1].Key)
	}
	if pres.Blocks[0].Action.Target != "" {
		t.Errorf("nil linker must leave booking target empty, got %q", pres.Blocks[0].Action.Target)
	}
	if pres.Label != pres.Blocks[0].Label {
		t.Error("headline must repeat the first block")
	}
}

func TestPresenter_Deterministic(t *testing.T) {
	p := NewPresenter(fakeLinker{})
	a := NewWeightLossQuiz()
	r := a.Evaluate(ResponseSet{"sleep": {Kind: KindSingle, Choice: "poor"}})
	first := p.Present(a, r)
	second := p.Present(a, r)
	if first.NarrativeHTML != second.NarrativeHTML || len(first.Blocks) != len(second.Blocks) {
		t.Error("presentation not deterministic")
	}
}
