package assessment

import (
	"bytes"
	"html"

	"github.com/yuin/goldmark"
)

// BookingLinker resolves the external booking URL offered with a result.
type BookingLinker interface {
	BookingURL(assessmentID string, tier Tier) string
}

// Block is one rendered interpretation entry.
type Block struct {
	Key           string `json:"key"`
	Label         string `json:"label"`
	Narrative     string `json:"narrative"`
	NarrativeHTML string `json:"narrative_html"`
	Action        Action `json:"action"`
}

// Presentation is everything a client needs to show a result. Label,
// Narrative and Action repeat the first block.
type Presentation struct {
	AssessmentID  string     `json:"assessment_id"`
	Title         string     `json:"title"`
	Kind          ResultKind `json:"kind"`
	Score         int        `json:"score"`
	MaxScore      int        `json:"max_score"`
	Tier          Tier       `json:"tier,omitempty"`
	Label         string     `json:"label"`
	Narrative     string     `json:"narrative"`
	NarrativeHTML string     `json:"narrative_html"`
	Action        Action     `json:"action"`
	Blocks        []Block    `json:"blocks"`
	Actions       []Action   `json:"actions"`
}

// Presenter turns results into presentations. It performs no I/O.
type Presenter struct {
	linker   BookingLinker
	markdown goldmark.Markdown
}

// NewPresenter returns a Presenter. A nil linker leaves book actions without
// a target.
func NewPresenter(linker BookingLinker) *Presenter {
	return &Presenter{
		linker:   linker,
		markdown: goldmark.New(),
	}
}

func (p *Presenter) Present(a Assessment, r Result) Presentation {
	out := Presentation{
		AssessmentID: a.ID(),
		Title:        a.Title(),
		Kind:         r.Kind,
		Score:        r.Score,
		MaxScore:     r.MaxScore,
		Tier:         r.Tier,
	}

	for _, entry := range a.Interpret(r) {
		out.Blocks = append(out.Blocks, Block{
			Key:           entry.Key,
			Label:         entry.Label,
			Narrative:     entry.Narrative,
			NarrativeHTML: p.render(entry.Narrative),
			Action:        p.resolve(a.ID(), r.Tier, entry.Action),
		})
	}
	if len(out.Blocks) > 0 {
		first := out.Blocks[0]
		out.Label = first.Label
		out.Narrative = first.Narrative
		out.NarrativeHTML = first.NarrativeHTML
		out.Action = first.Action
	}

	out.Actions = []Action{
		p.resolve(a.ID(), r.Tier, Action{Kind: ActionBook, Label: "Book a consultation"}),
		{Kind: ActionRestart, Label: "Retake assessment", Target: a.ID()},
	}
	return out
}

func (p *Presenter) resolve(assessmentID string, tier Tier, act Action) Action {
	if act.Kind == ActionBook && act.Target == "" && p.linker != nil {
		act.Target = p.linker.BookingURL(assessmentID, tier)
	}
	return act
}

func (p *Presenter) render(src string) string {
	var buf bytes.Buffer
	if err := p.markdown.Convert([]byte(src), &buf); err != nil {
		return "<p>" + html.EscapeString(src) + "</p>"
	}
	return buf.String()
}
