package app

import (
	"time"

	"elsa-proficiency-test/internal/domain"
	"elsa-proficiency-test/internal/tracker"
)

// NoReturnWarning is shown on every view of a section that cannot be revisited.
const NoReturnWarning = "You cannot return to this section once you proceed. Please complete it carefully."

// View is everything a client needs to render the attempt without reaching into
// session internals.
type View struct {
	AttemptID   string         `json:"attemptId"`
	CatalogID   string         `json:"catalogId"`
	Mode        domain.Mode    `json:"mode"`
	Progress    Progress       `json:"progress"`
	Outline     []SectionView  `json:"outline,omitempty"`
	Section     *SectionView   `json:"section,omitempty"`
	Question    *QuestionView  `json:"question,omitempty"`
	Prompt      *PromptView    `json:"prompt,omitempty"`
	CanComplete bool           `json:"canComplete"`
	Report      *domain.Report `json:"report,omitempty"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// Progress is 1-based; Current is 0 before the test starts.
type Progress struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Title   string `json:"title,omitempty"`
}

type SectionView struct {
	ID             string             `json:"id"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	TotalPoints    int                `json:"totalPoints"`
	CanReturnLater bool               `json:"canReturnLater"`
	Payload        domain.PayloadKind `json:"payload"`
	Warning        string             `json:"warning,omitempty"`
}

type QuestionView struct {
	Index         int                 `json:"index"`
	Count         int                 `json:"count"`
	ID            string              `json:"id"`
	Kind          domain.QuestionKind `json:"kind"`
	Text          string              `json:"text"`
	Options       []string            `json:"options"`
	Points        int                 `json:"points"`
	Passage       string              `json:"passage,omitempty"`
	AudioURL      string              `json:"audioUrl,omitempty"`
	AudioDuration int                 `json:"audioDuration,omitempty"`

	Selected      *int `json:"selected"`
	Submitted     bool `json:"submitted"`
	ShowCorrect   bool `json:"showCorrect"`
	CorrectAnswer *int `json:"correctAnswer,omitempty"` // only once submitted
	SubmittedAll  int  `json:"submittedCount"`

	CanPrevious bool `json:"canPrevious"`
	CanNext     bool `json:"canNext"`
	CanSkip     bool `json:"canSkip"`
}

type PromptView struct {
	ID           string            `json:"id"`
	Kind         domain.PromptKind `json:"kind"`
	Scenario     string            `json:"scenario"`
	Instructions string            `json:"instructions"`
	Points       int               `json:"points"`
	TimeLimit    int               `json:"timeLimit,omitempty"`
	Text         string            `json:"text,omitempty"`
	CharCount    int               `json:"charCount"`
	MinLength    int               `json:"minLength,omitempty"`
	HasRecording bool              `json:"hasRecording"`
}

func newSectionView(s domain.Section) SectionView {
	v := SectionView{
		ID:             s.ID,
		Title:          s.Title,
		Description:    s.Description,
		TotalPoints:    s.TotalPoints,
		CanReturnLater: s.CanReturnLater,
		Payload:        s.Payload(),
	}
	if !s.CanReturnLater {
		v.Warning = NoReturnWarning
	}
	return v
}

func newQuestionView(c *tracker.Closed) *QuestionView {
	idx := c.Current()
	q, ok := c.Question(idx)
	if !ok {
		return nil
	}
	answer := c.Answer(idx)
	submitted := 0
	for _, a := range c.Answers() {
		if a.Submitted {
			submitted++
		}
	}
	v := &QuestionView{
		Index:         idx,
		Count:         c.Count(),
		ID:            q.ID,
		Kind:          q.Kind,
		Text:          q.Text,
		Options:       q.Options,
		Points:        q.Points,
		Passage:       q.Passage,
		AudioURL:      q.AudioURL,
		AudioDuration: q.AudioDuration,
		Selected:      answer.Selected,
		Submitted:     answer.Submitted,
		ShowCorrect:   c.ShowCorrect(idx),
		SubmittedAll:  submitted,
		CanPrevious:   idx > 0,
		CanNext:       idx < c.Count()-1,
		CanSkip:       idx < c.Count()-1,
	}
	if v.ShowCorrect {
		correct := q.CorrectAnswer
		v.CorrectAnswer = &correct
	}
	return v
}

func newPromptView(o *tracker.Open) *PromptView {
	p := o.Prompt()
	v := &PromptView{
		ID:           p.ID,
		Kind:         p.Kind,
		Scenario:     p.Scenario,
		Instructions: p.Instructions,
		Points:       p.Points,
		TimeLimit:    p.TimeLimit,
		HasRecording: o.HasRecording(),
	}
	if p.Kind == domain.PromptWriting {
		v.Text = o.Text()
		v.CharCount = o.CharCount()
		v.MinLength = tracker.MinWritingLength
	}
	return v
}
