package domain

import "errors"

var (
	// ErrSessionNotFound is returned when an attempt has not been opened.
	ErrSessionNotFound = errors.New("test session not found")
	// ErrCatalogNotFound indicates the section catalog could not be loaded.
	ErrCatalogNotFound = errors.New("catalog not found")
	// ErrInvalidTransition is returned when a mode change is not allowed from the current mode.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrSectionIncomplete blocks completion while the section's gate is closed.
	ErrSectionIncomplete = errors.New("section is not ready to complete")
	// ErrNotCompleted is returned when a report is requested before the last section.
	ErrNotCompleted = errors.New("test not completed")
	// ErrUnknownAction indicates an unsupported client action.
	ErrUnknownAction = errors.New("unknown action")
	// ErrZeroMaxScore guards percentage calculations.
	ErrZeroMaxScore = errors.New("max score must be positive")

	// Catalog validation.
	ErrNoSections       = errors.New("catalog has no sections")
	ErrMissingPayload   = errors.New("section has no questions and no prompt")
	ErrAmbiguousPayload = errors.New("section has both questions and a prompt")
	ErrTotalMismatch    = errors.New("declared section total does not match item points")
	ErrInvalidQuestion  = errors.New("invalid question")
	ErrInvalidPrompt    = errors.New("invalid prompt")
	ErrInvalidBands     = errors.New("invalid CEFR bands")
)
