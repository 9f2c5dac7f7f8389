package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Mode is the top-level state of a test attempt.
type Mode string

const (
	ModeNotStarted Mode = "not-started"
	ModeInProgress Mode = "in-progress"
	ModeCompleted  Mode = "completed"
)

// QuestionKind tags closed questions; reading and listening carry extra context.
type QuestionKind string

const (
	QuestionStandard  QuestionKind = "standard"
	QuestionReading   QuestionKind = "reading"
	QuestionListening QuestionKind = "listening"
)

// Question is a multiple choice item with exactly one correct option.
type Question struct {
	ID            string       `json:"id" yaml:"id"`
	Kind          QuestionKind `json:"kind" yaml:"kind"`
	Text          string       `json:"text" yaml:"text"`
	Options       []string     `json:"options" yaml:"options"`
	CorrectAnswer int          `json:"correctAnswer" yaml:"correctAnswer"`
	Points        int          `json:"points" yaml:"points"`

	Passage       string `json:"passage,omitempty" yaml:"passage,omitempty"`
	AudioURL      string `json:"audioUrl,omitempty" yaml:"audioUrl,omitempty"`
	AudioDuration int    `json:"audioDuration,omitempty" yaml:"audioDuration,omitempty"` // seconds
}

// PromptKind tags open-response prompts.
type PromptKind string

const (
	PromptWriting  PromptKind = "writing"
	PromptSpeaking PromptKind = "speaking"
)

// OpenPrompt is scored by completion rather than correctness.
type OpenPrompt struct {
	ID           string     `json:"id" yaml:"id"`
	Kind         PromptKind `json:"kind" yaml:"kind"`
	Scenario     string     `json:"scenario" yaml:"scenario"`
	Instructions string     `json:"instructions" yaml:"instructions"`
	Points       int        `json:"points" yaml:"points"`
	TimeLimit    int        `json:"timeLimit,omitempty" yaml:"timeLimit,omitempty"` // seconds, speaking only
}

// PayloadKind discriminates a section's content.
type PayloadKind string

const (
	PayloadNone   PayloadKind = ""
	PayloadClosed PayloadKind = "closed"
	PayloadOpen   PayloadKind = "open"
)

// Section is one timed division of the test.
type Section struct {
	ID             string      `json:"id" yaml:"id"`
	Title          string      `json:"title" yaml:"title"`
	Description    string      `json:"description" yaml:"description"`
	TotalPoints    int         `json:"totalPoints" yaml:"totalPoints"`
	CanReturnLater bool        `json:"canReturnLater" yaml:"canReturnLater"`
	Questions      []Question  `json:"questions,omitempty" yaml:"questions,omitempty"`
	Prompt         *OpenPrompt `json:"prompt,omitempty" yaml:"prompt,omitempty"`
}

// Payload reports which kind of content the section carries. PayloadNone means the
// section is misconfigured (neither or both payloads present).
func (s Section) Payload() PayloadKind {
	switch {
	case len(s.Questions) > 0 && s.Prompt == nil:
		return PayloadClosed
	case len(s.Questions) == 0 && s.Prompt != nil:
		return PayloadOpen
	default:
		return PayloadNone
	}
}

// ItemPoints is the sum of the points carried by the section's payload.
func (s Section) ItemPoints() int {
	if s.Prompt != nil {
		return s.Prompt.Points
	}
	total := 0
	for _, q := range s.Questions {
		total += q.Points
	}
	return total
}

// AnswerState tracks one question. Selected is nil while unanswered.
type AnswerState struct {
	Selected  *int `json:"selected"`
	Submitted bool `json:"submitted"`
}

// ResponseKind tags a raw response.
type ResponseKind int

const (
	ResponseOption ResponseKind = iota
	ResponseText
	ResponseRecording
)

// Response is one raw answer kept on a SectionResult.
type Response struct {
	Kind     ResponseKind
	Option   *int
	Text     string
	Recorded bool
}

func OptionResponse(selected *int) Response {
	return Response{Kind: ResponseOption, Option: selected}
}

func TextResponse(text string) Response {
	return Response{Kind: ResponseText, Text: text}
}

func RecordingResponse(recorded bool) Response {
	return Response{Kind: ResponseRecording, Recorded: recorded}
}

// MarshalJSON encodes options as numbers (null when unanswered), text as a string and
// recordings as "recorded" / "not-recorded".
func (r Response) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case ResponseOption:
		return json.Marshal(r.Option)
	case ResponseText:
		return json.Marshal(r.Text)
	case ResponseRecording:
		if r.Recorded {
			return json.Marshal("recorded")
		}
		return json.Marshal("not-recorded")
	default:
		return nil, fmt.Errorf("unknown response kind %d", r.Kind)
	}
}

// UnmarshalJSON reverses MarshalJSON. Text responses come from writing prompts, which
// only complete at 50 or more characters, so they never collide with the recording
// markers.
func (r *Response) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = OptionResponse(nil)
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		switch text {
		case "recorded":
			*r = RecordingResponse(true)
		case "not-recorded":
			*r = RecordingResponse(false)
		default:
			*r = TextResponse(text)
		}
		return nil
	}
	var option int
	if err := json.Unmarshal(data, &option); err != nil {
		return fmt.Errorf("decode response %s: %w", data, err)
	}
	*r = OptionResponse(&option)
	return nil
}

func (r Response) String() string {
	switch r.Kind {
	case ResponseOption:
		if r.Option == nil {
			return "-"
		}
		return fmt.Sprintf("%d", *r.Option)
	case ResponseRecording:
		if r.Recorded {
			return "recorded"
		}
		return "not-recorded"
	default:
		return r.Text
	}
}

// SectionResult is the immutable record of a completed section.
type SectionResult struct {
	SectionID string     `json:"sectionId"`
	Title     string     `json:"title"`
	Score     int        `json:"score"`
	MaxScore  int        `json:"maxScore"`
	Responses []Response `json:"responses"`
	Feedback  string     `json:"feedback"`
}

// CEFRLevel is a labeled, inclusive score band.
type CEFRLevel struct {
	Level    string `json:"level" yaml:"level"`
	Name     string `json:"name" yaml:"name"`
	MinScore int    `json:"minScore" yaml:"minScore"`
	MaxScore int    `json:"maxScore" yaml:"maxScore"`
	Color    string `json:"color" yaml:"color"`
}

func (l CEFRLevel) Contains(score int) bool {
	return score >= l.MinScore && score <= l.MaxScore
}

// Catalog is the static section/question data plus CEFR bands.
type Catalog struct {
	ID       string      `json:"id" yaml:"id"`
	Title    string      `json:"title" yaml:"title"`
	Sections []Section   `json:"sections" yaml:"sections"`
	Levels   []CEFRLevel `json:"levels" yaml:"levels"`
}

// MaxTotal is the achievable score across all sections.
func (c Catalog) MaxTotal() int {
	total := 0
	for _, s := range c.Sections {
		total += s.TotalPoints
	}
	return total
}

// Report is the result export produced once a test is completed.
type Report struct {
	AttemptID     string          `json:"attemptId"`
	CatalogID     string          `json:"catalogId"`
	Results       []SectionResult `json:"results"`
	TotalScore    int             `json:"totalScore"`
	MaxScore      int             `json:"maxScore"`
	Percentage    float64         `json:"percentage"`
	Level         CEFRLevel       `json:"level"`
	LevelFallback bool            `json:"levelFallback"`
	Levels        []CEFRLevel     `json:"levels"`
	Performance   string          `json:"performance"`
	CompletedAt   time.Time       `json:"completedAt"`
}
