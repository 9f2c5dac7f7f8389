package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"elsa-proficiency-test/internal/domain"
)

// AudioPlayer plays a listening clip. Playback state stays with the player.
type AudioPlayer interface {
	Play(ctx context.Context, url string, duration time.Duration) error
}

// Recorder captures a spoken response. It reports back only through produced and
// cleared; a nil blob means nothing usable was captured.
type Recorder interface {
	Capture(ctx context.Context, limit time.Duration, produced func(blob []byte), cleared func()) error
}

// PlayClip hands the focused listening question's audio to player.
func (s *Session) PlayClip(ctx context.Context, player AudioPlayer) error {
	s.mu.RLock()
	var q domain.Question
	ok := false
	if s.closed != nil {
		q, ok = s.closed.Question(s.closed.Current())
	}
	s.mu.RUnlock()

	if !ok || q.Kind != domain.QuestionListening {
		return fmt.Errorf("no listening clip for attempt %s", s.id)
	}
	return player.Play(ctx, q.AudioURL, time.Duration(q.AudioDuration)*time.Second)
}

// CaptureRecording runs rec for the active speaking prompt. A capture failure such as
// a denied microphone is logged and leaves the recording unset so the user can retry.
func (s *Session) CaptureRecording(ctx context.Context, rec Recorder) error {
	s.mu.RLock()
	var prompt domain.OpenPrompt
	ok := false
	if s.open != nil {
		prompt = s.open.Prompt()
		ok = prompt.Kind == domain.PromptSpeaking
	}
	s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("no speaking prompt for attempt %s", s.id)
	}
	limit := time.Duration(prompt.TimeLimit) * time.Second
	err := rec.Capture(ctx, limit,
		func(blob []byte) { s.RecordingProduced(blob) },
		func() { s.RecordingCleared() },
	)
	if err != nil {
		log.Printf("attempt %s: recording failed: %v", s.id, err)
	}
	return err
}
