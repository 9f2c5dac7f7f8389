package app

import (
	"elsa-proficiency-test/internal/domain"
	"elsa-proficiency-test/internal/scoring"
)

// Sequencer walks the ordered sections one way and accumulates their results.
type Sequencer struct {
	sections []domain.Section
	active   int
	results  []domain.SectionResult
}

func NewSequencer(sections []domain.Section) *Sequencer {
	return &Sequencer{sections: sections}
}

// Active returns the current section and its index.
func (q *Sequencer) Active() (domain.Section, int) {
	if len(q.sections) == 0 {
		return domain.Section{}, 0
	}
	return q.sections[q.active], q.active
}

func (q *Sequencer) Len() int { return len(q.sections) }

func (q *Sequencer) IsLast() bool { return q.active == len(q.sections)-1 }

// Finished reports whether every section has a result.
func (q *Sequencer) Finished() bool {
	return len(q.sections) > 0 && len(q.results) == len(q.sections)
}

// CompleteCurrentSection records the active section's result and advances. It returns
// true when the recorded section was the last one. Calls after that are ignored.
func (q *Sequencer) CompleteCurrentSection(score int, responses []domain.Response) bool {
	if len(q.sections) == 0 || q.Finished() {
		return q.Finished()
	}
	section := q.sections[q.active]
	q.results = append(q.results, domain.SectionResult{
		SectionID: section.ID,
		Title:     section.Title,
		Score:     score,
		MaxScore:  section.TotalPoints,
		Responses: responses,
		Feedback:  scoring.SectionFeedback(section.ID, score, section.TotalPoints),
	})
	if q.IsLast() {
		return true
	}
	q.active++
	return false
}

// Results returns the recorded results in section order.
func (q *Sequencer) Results() []domain.SectionResult {
	out := make([]domain.SectionResult, len(q.results))
	copy(out, q.results)
	return out
}

// Totals sums score and max score across recorded results.
func (q *Sequencer) Totals() (score, max int) {
	for _, r := range q.results {
		score += r.Score
		max += r.MaxScore
	}
	return score, max
}

// Reset drops all results and rewinds to the first section.
func (q *Sequencer) Reset() {
	q.active = 0
	q.results = nil
}
