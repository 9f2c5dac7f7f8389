package tracker

import (
	"strings"
	"unicode/utf8"

	"elsa-proficiency-test/internal/domain"
	"elsa-proficiency-test/internal/scoring"
)

// MinWritingLength is the trimmed character count a writing response needs.
const MinWritingLength = 50

// Open holds the single response of a writing or speaking section. Writing keeps a
// text buffer; speaking keeps the latest captured recording.
type Open struct {
	prompt    domain.OpenPrompt
	text      string
	recording []byte
}

func NewOpen(prompt domain.OpenPrompt) *Open {
	return &Open{prompt: prompt}
}

func (o *Open) Prompt() domain.OpenPrompt { return o.prompt }

// SetText replaces the writing buffer. Ignored for speaking prompts.
func (o *Open) SetText(text string) bool {
	if o.prompt.Kind != domain.PromptWriting || text == o.text {
		return false
	}
	o.text = text
	return true
}

func (o *Open) Text() string { return o.text }

// CharCount counts characters of the untrimmed buffer.
func (o *Open) CharCount() int { return utf8.RuneCountInString(o.text) }

// RecordingProduced stores a finished capture. A nil or empty blob (for example a
// failed microphone acquisition) leaves the section without a recording.
func (o *Open) RecordingProduced(blob []byte) bool {
	if o.prompt.Kind != domain.PromptSpeaking {
		return false
	}
	if len(blob) == 0 {
		return o.RecordingCleared()
	}
	o.recording = append([]byte(nil), blob...)
	return true
}

func (o *Open) RecordingCleared() bool {
	if o.recording == nil {
		return false
	}
	o.recording = nil
	return true
}

func (o *Open) HasRecording() bool { return o.recording != nil }

// Recording returns the captured payload, nil when none.
func (o *Open) Recording() []byte { return o.recording }

// Qualifies reports whether the completion threshold is met.
func (o *Open) Qualifies() bool {
	switch o.prompt.Kind {
	case domain.PromptWriting:
		return utf8.RuneCountInString(strings.TrimSpace(o.text)) >= MinWritingLength
	case domain.PromptSpeaking:
		return o.recording != nil
	default:
		return false
	}
}

func (o *Open) Ready() bool { return o.Qualifies() }

func (o *Open) Score() int {
	return scoring.ScoreOpenSection(o.Qualifies(), o.prompt.Points)
}

func (o *Open) Responses() []domain.Response {
	if o.prompt.Kind == domain.PromptSpeaking {
		return []domain.Response{domain.RecordingResponse(o.recording != nil)}
	}
	return []domain.Response{domain.TextResponse(o.text)}
}
