package assessment

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotAnswered = errors.New("current question is not answered")
	ErrNotReady    = errors.New("session is not ready to score")
	ErrWrongState  = errors.New("operation not allowed in current state")
	ErrAtStart     = errors.New("already at first question")
)

// State is the position of a session in the wizard flow.
type State string

const (
	StateInProgress   State = "in_progress"
	StateReadyToScore State = "ready_to_score"
	StateResultsShown State = "results_shown"
)

// Session walks one user through an assessment one question at a time.
//
//	in_progress(i) --advance--> in_progress(i+1) | ready_to_score
//	ready_to_score --show results--> results_shown
//	any --restart--> in_progress(0)
//
// Back moves to the previous question. A Session is owned by a single user
// and is not safe for concurrent use.
type Session struct {
	id         string
	assessment Assessment
	collector  *Collector
	state      State
	index      int
	result     *Result
	createdAt  time.Time
	updatedAt  time.Time
}

// NewSession starts at the first question with no answers.
func NewSession(id string, a Assessment, now time.Time) *Session {
	return &Session{
		id:         id,
		assessment: a,
		collector:  NewCollector(a.Bank()),
		state:      StateInProgress,
		createdAt:  now,
		updatedAt:  now,
	}
}

func (s *Session) ID() string             { return s.id }
func (s *Session) Assessment() Assessment { return s.assessment }
func (s *Session) State() State           { return s.state }
func (s *Session) Index() int             { return s.index }
func (s *Session) Responses() ResponseSet { return s.collector.Responses() }
func (s *Session) Collector() *Collector  { return s.collector }
func (s *Session) UpdatedAt() time.Time   { return s.updatedAt }
func (s *Session) Touch(now time.Time)    { s.updatedAt = now }
func (s *Session) CreatedAt() time.Time   { return s.createdAt }

// Current returns the question being asked. It is false outside in_progress.
func (s *Session) Current() (Question, bool) {
	if s.state != StateInProgress {
		return Question{}, false
	}
	return s.assessment.Bank().At(s.index)
}

// Answer records value for the current question.
func (s *Session) Answer(value any) error {
	q, ok := s.Current()
	if !ok {
		return fmt.Errorf("%w: answer in %s", ErrWrongState, s.state)
	}
	return s.collector.SetAnswer(q.ID, value)
}

// Advance moves past the current question once it is answered. Leaving the
// last question enters ready_to_score.
func (s *Session) Advance() error {
	q, ok := s.Current()
	if !ok {
		return fmt.Errorf("%w: advance in %s", ErrWrongState, s.state)
	}
	if !s.collector.Answered(q.ID) {
		return fmt.Errorf("%w: %q", ErrNotAnswered, q.ID)
	}
	if s.index < s.assessment.Bank().Len()-1 {
		s.index++
		return nil
	}
	if missing := s.collector.Missing(); len(missing) > 0 {
		s.index = s.assessment.Bank().Position(missing[0])
		return fmt.Errorf("%w: %q", ErrNotAnswered, missing[0])
	}
	s.state = StateReadyToScore
	return nil
}

// Back returns to the previous question. From ready_to_score it returns to
// the last question.
func (s *Session) Back() error {
	switch s.state {
	case StateReadyToScore:
		s.state = StateInProgress
		s.index = s.assessment.Bank().Len() - 1
		return nil
	case StateInProgress:
		if s.index == 0 {
			return ErrAtStart
		}
		s.index--
		return nil
	default:
		return fmt.Errorf("%w: back in %s", ErrWrongState, s.state)
	}
}

// ShowResults scores the answers and enters results_shown.
func (s *Session) ShowResults() (Result, error) {
	if s.state != StateReadyToScore || !s.collector.IsComplete() {
		return Result{}, ErrNotReady
	}
	r := s.assessment.Evaluate(s.collector.Responses())
	s.result = &r
	s.state = StateResultsShown
	return r, nil
}

// Result returns the shown result, if any.
func (s *Session) Result() (Result, bool) {
	if s.result == nil {
		return Result{}, false
	}
	return *s.result, true
}

// Restart clears every answer and returns to the first question.
func (s *Session) Restart() {
	s.collector.Clear()
	s.result = nil
	s.index = 0
	s.state = StateInProgress
}

// Snapshot is the serialisable form of a Session.
type Snapshot struct {
	ID           string      `json:"id"`
	AssessmentID string      `json:"assessment_id"`
	State        State       `json:"state"`
	Index        int         `json:"index"`
	Answers      ResponseSet `json:"answers"`
	Result       *Result     `json:"result,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:           s.id,
		AssessmentID: s.assessment.ID(),
		State:        s.state,
		Index:        s.index,
		Answers:      s.collector.Responses(),
		CreatedAt:    s.createdAt,
		UpdatedAt:    s.updatedAt,
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	return snap
}

// RestoreSession rebuilds a session from snap. The answers are checked
// against the assessment's bank and the state against the answers.
func RestoreSession(snap Snapshot, a Assessment) (*Session, error) {
	if snap.AssessmentID != a.ID() {
		return nil, fmt.Errorf("snapshot for %q restored against %q", snap.AssessmentID, a.ID())
	}
	s := NewSession(snap.ID, a, snap.CreatedAt)
	s.updatedAt = snap.UpdatedAt
	if err := s.collector.Restore(snap.Answers); err != nil {
		return nil, err
	}
	switch snap.State {
	case StateInProgress:
		if snap.Index < 0 || snap.Index >= a.Bank().Len() {
			return nil, fmt.Errorf("snapshot index %d out of range", snap.Index)
		}
		s.index = snap.Index
	case StateReadyToScore, StateResultsShown:
		if !s.collector.IsComplete() {
			return nil, fmt.Errorf("snapshot in %s with unanswered questions", snap.State)
		}
		s.index = a.Bank().Len() - 1
		if snap.State == StateResultsShown {
			r := a.Evaluate(s.collector.Responses())
			s.result = &r
		}
	default:
		return nil, fmt.Errorf("snapshot has unknown state %q", snap.State)
	}
	s.state = snap.State
	return s, nil
}
