package catalog

import (
	"errors"
	"fmt"

	"elsa-proficiency-test/internal/domain"
	"elsa-proficiency-test/internal/scoring"
)

// Validate rejects catalogs the session could not run. All problems are collected so
// a single startup check reports every misconfigured section.
func Validate(c domain.Catalog) error {
	if len(c.Sections) == 0 {
		return domain.ErrNoSections
	}

	var errs []error
	seen := make(map[string]bool, len(c.Sections))
	for _, s := range c.Sections {
		if seen[s.ID] {
			errs = append(errs, fmt.Errorf("section %q: duplicate id", s.ID))
		}
		seen[s.ID] = true
		if err := validateSection(s); err != nil {
			errs = append(errs, fmt.Errorf("section %q: %w", s.ID, err))
		}
	}
	if err := scoring.ValidateBands(c.Levels, c.MaxTotal()); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func validateSection(s domain.Section) error {
	if s.TotalPoints <= 0 {
		return fmt.Errorf("%w: total points must be positive, got %d", domain.ErrTotalMismatch, s.TotalPoints)
	}

	switch {
	case len(s.Questions) == 0 && s.Prompt == nil:
		return domain.ErrMissingPayload
	case len(s.Questions) > 0 && s.Prompt != nil:
		return domain.ErrAmbiguousPayload
	}

	if s.Prompt != nil {
		if err := validatePrompt(*s.Prompt); err != nil {
			return err
		}
	}
	for _, q := range s.Questions {
		if err := validateQuestion(q); err != nil {
			return err
		}
	}

	// The declared total is authoritative for MaxScore, so it must agree with the items.
	if sum := s.ItemPoints(); sum != s.TotalPoints {
		return fmt.Errorf("%w: declared %d, items sum to %d", domain.ErrTotalMismatch, s.TotalPoints, sum)
	}
	return nil
}

func validateQuestion(q domain.Question) error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w %q: %s", domain.ErrInvalidQuestion, q.ID, fmt.Sprintf(format, args...))
	}
	if len(q.Options) < 2 {
		return fail("needs at least two options")
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return fail("correct answer %d out of range", q.CorrectAnswer)
	}
	if q.Points <= 0 {
		return fail("points must be positive")
	}
	switch q.Kind {
	case domain.QuestionStandard:
		if q.Passage != "" || q.AudioURL != "" {
			return fail("standard questions carry no passage or audio")
		}
	case domain.QuestionReading:
		if q.Passage == "" {
			return fail("reading question without passage")
		}
	case domain.QuestionListening:
		if q.AudioURL == "" || q.AudioDuration <= 0 {
			return fail("listening question needs audio url and duration")
		}
	default:
		return fail("unknown kind %q", q.Kind)
	}
	return nil
}

func validatePrompt(p domain.OpenPrompt) error {
	if p.Points <= 0 {
		return fmt.Errorf("%w %q: points must be positive", domain.ErrInvalidPrompt, p.ID)
	}
	switch p.Kind {
	case domain.PromptWriting:
	case domain.PromptSpeaking:
		if p.TimeLimit <= 0 {
			return fmt.Errorf("%w %q: speaking prompt needs a time limit", domain.ErrInvalidPrompt, p.ID)
		}
	default:
		return fmt.Errorf("%w %q: unknown kind %q", domain.ErrInvalidPrompt, p.ID, p.Kind)
	}
	return nil
}
