package tracker

import (
	"elsa-proficiency-test/internal/domain"
	"elsa-proficiency-test/internal/scoring"
)

// Closed tracks focus and answer state for a section of multiple choice questions.
// Every mutation reports whether it changed anything; invalid calls are no-ops.
type Closed struct {
	questions []domain.Question
	answers   []domain.AnswerState
	current   int
}

func NewClosed(questions []domain.Question) *Closed {
	return &Closed{
		questions: questions,
		answers:   make([]domain.AnswerState, len(questions)),
	}
}

func (c *Closed) Count() int { return len(c.questions) }

// Current is the focused question index.
func (c *Closed) Current() int { return c.current }

func (c *Closed) Question(q int) (domain.Question, bool) {
	if !c.inRange(q) {
		return domain.Question{}, false
	}
	return c.questions[q], true
}

// Answer returns a copy of the state for question q.
func (c *Closed) Answer(q int) domain.AnswerState {
	if !c.inRange(q) {
		return domain.AnswerState{}
	}
	return copyState(c.answers[q])
}

// Answers returns a copy of every answer state in question order.
func (c *Closed) Answers() []domain.AnswerState {
	out := make([]domain.AnswerState, len(c.answers))
	for i, a := range c.answers {
		out[i] = copyState(a)
	}
	return out
}

// Select records option for question q, replacing any earlier choice. Frozen answers
// and out of range indices are ignored.
func (c *Closed) Select(q, option int) bool {
	if !c.inRange(q) || c.answers[q].Submitted {
		return false
	}
	if option < 0 || option >= len(c.questions[q].Options) {
		return false
	}
	if sel := c.answers[q].Selected; sel != nil && *sel == option {
		return false
	}
	c.answers[q].Selected = &option
	return true
}

// Submit freezes question q. Requires a selection.
func (c *Closed) Submit(q int) bool {
	if !c.inRange(q) || c.answers[q].Submitted || c.answers[q].Selected == nil {
		return false
	}
	c.answers[q].Submitted = true
	return true
}

// Reset clears and unfreezes a submitted question.
func (c *Closed) Reset(q int) bool {
	if !c.inRange(q) || !c.answers[q].Submitted {
		return false
	}
	c.answers[q] = domain.AnswerState{}
	return true
}

// ShowCorrect is true once q is submitted.
func (c *Closed) ShowCorrect(q int) bool {
	return c.inRange(q) && c.answers[q].Submitted
}

// Skip moves focus forward without submitting. No-op on the last question.
func (c *Closed) Skip() bool {
	return c.Next()
}

func (c *Closed) Next() bool {
	if c.current >= len(c.questions)-1 {
		return false
	}
	c.current++
	return true
}

func (c *Closed) Previous() bool {
	if c.current <= 0 {
		return false
	}
	c.current--
	return true
}

// AllSubmitted gates section completion.
func (c *Closed) AllSubmitted() bool {
	for _, a := range c.answers {
		if !a.Submitted {
			return false
		}
	}
	return true
}

func (c *Closed) Ready() bool { return c.AllSubmitted() }

func (c *Closed) Score() int {
	return scoring.ScoreClosedSection(c.questions, c.answers)
}

func (c *Closed) Responses() []domain.Response {
	out := make([]domain.Response, len(c.answers))
	for i, a := range c.answers {
		out[i] = domain.OptionResponse(copyState(a).Selected)
	}
	return out
}

func (c *Closed) inRange(q int) bool {
	return q >= 0 && q < len(c.questions)
}

func copyState(a domain.AnswerState) domain.AnswerState {
	if a.Selected != nil {
		v := *a.Selected
		a.Selected = &v
	}
	return a
}
