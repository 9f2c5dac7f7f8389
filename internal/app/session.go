package app

import (
	"fmt"
	"log"
	"sync"
	"time"

	"elsa-proficiency-test/internal/domain"
	"elsa-proficiency-test/internal/scoring"
	"elsa-proficiency-test/internal/tracker"
)

// ActionType names a discrete user action.
type ActionType string

const (
	ActionStart          ActionType = "start"
	ActionSelect         ActionType = "select"
	ActionSubmit         ActionType = "submit"
	ActionReset          ActionType = "reset"
	ActionSkip           ActionType = "skip"
	ActionPrevious       ActionType = "previous"
	ActionNext           ActionType = "next"
	ActionText           ActionType = "text"
	ActionRecording      ActionType = "recording"
	ActionClearRecording ActionType = "clearRecording"
	ActionComplete       ActionType = "complete"
	ActionRestart        ActionType = "restart"
)

// Action is one user event. Question defaults to the focused question when nil.
type Action struct {
	Type      ActionType
	Question  *int
	Option    int
	Text      string
	Recording []byte
}

// Session is the in-memory state of one test attempt. All mutation is linearized
// through its mutex.
type Session struct {
	id        string
	catalog   domain.Catalog
	createdAt time.Time
	now       func() time.Time

	mu          sync.RWMutex
	mode        domain.Mode
	seq         *Sequencer
	closed      *tracker.Closed
	open        *tracker.Open
	report      *domain.Report
	subscribers map[chan View]struct{}
}

func newSession(id string, catalog domain.Catalog) *Session {
	return newSessionWithClock(id, catalog, time.Now)
}

// newSessionWithClock allows deterministic timestamps in tests.
func newSessionWithClock(id string, catalog domain.Catalog, now func() time.Time) *Session {
	return &Session{
		id:          id,
		catalog:     catalog,
		createdAt:   now(),
		now:         now,
		mode:        domain.ModeNotStarted,
		seq:         NewSequencer(catalog.Sections),
		subscribers: make(map[chan View]struct{}),
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) CreatedAt() time.Time { return s.createdAt }

func (s *Session) Mode() domain.Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// View returns the current rendering snapshot.
func (s *Session) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewLocked()
}

// Report returns the result export once the attempt is completed.
func (s *Session) Report() (domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.report == nil {
		return domain.Report{}, domain.ErrNotCompleted
	}
	return *s.report, nil
}

func (s *Session) Start() (View, error) { return s.Apply(Action{Type: ActionStart}) }

func (s *Session) Restart() (View, error) { return s.Apply(Action{Type: ActionRestart}) }

func (s *Session) CompleteSection() (View, error) { return s.Apply(Action{Type: ActionComplete}) }

// RecordingProduced is the capture callback for a finished recording.
func (s *Session) RecordingProduced(blob []byte) View {
	v, _ := s.Apply(Action{Type: ActionRecording, Recording: blob})
	return v
}

// RecordingCleared is the capture callback for a discarded recording.
func (s *Session) RecordingCleared() View {
	v, _ := s.Apply(Action{Type: ActionClearRecording})
	return v
}

// Apply runs one action. Invalid answer mutations are silent no-ops; only mode
// transitions and completion report errors.
func (s *Session) Apply(a Action) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		changed bool
		err     error
	)
	switch a.Type {
	case ActionStart:
		err = s.startLocked()
		changed = err == nil
	case ActionRestart:
		s.restartLocked()
		changed = true
	case ActionComplete:
		err = s.completeLocked()
		changed = err == nil
	case ActionSelect, ActionSubmit, ActionReset, ActionSkip, ActionPrevious, ActionNext,
		ActionText, ActionRecording, ActionClearRecording:
		changed = s.mutateLocked(a)
	default:
		err = fmt.Errorf("%w: %q", domain.ErrUnknownAction, a.Type)
	}

	if changed {
		return s.broadcastLocked(), nil
	}
	return s.viewLocked(), err
}

func (s *Session) startLocked() error {
	if s.mode != domain.ModeNotStarted {
		return fmt.Errorf("%w: start from %s", domain.ErrInvalidTransition, s.mode)
	}
	if err := s.activateLocked(); err != nil {
		return err
	}
	s.mode = domain.ModeInProgress
	return nil
}

func (s *Session) restartLocked() {
	s.mode = domain.ModeNotStarted
	s.seq.Reset()
	s.closed = nil
	s.open = nil
	s.report = nil
}

// activateLocked builds the tracker for the sequencer's active section.
func (s *Session) activateLocked() error {
	section, _ := s.seq.Active()
	s.closed, s.open = nil, nil
	switch section.Payload() {
	case domain.PayloadClosed:
		s.closed = tracker.NewClosed(section.Questions)
	case domain.PayloadOpen:
		s.open = tracker.NewOpen(*section.Prompt)
	default:
		return fmt.Errorf("section %q: %w", section.ID, domain.ErrMissingPayload)
	}
	return nil
}

func (s *Session) completeLocked() error {
	if s.mode != domain.ModeInProgress {
		return fmt.Errorf("%w: complete from %s", domain.ErrInvalidTransition, s.mode)
	}

	var (
		score     int
		responses []domain.Response
	)
	switch {
	case s.closed != nil:
		if !s.closed.Ready() {
			return domain.ErrSectionIncomplete
		}
		score, responses = s.closed.Score(), s.closed.Responses()
	case s.open != nil:
		if !s.open.Ready() {
			return domain.ErrSectionIncomplete
		}
		score, responses = s.open.Score(), s.open.Responses()
	default:
		return domain.ErrSectionIncomplete
	}

	if finished := s.seq.CompleteCurrentSection(score, responses); !finished {
		return s.activateLocked()
	}
	s.closed, s.open = nil, nil
	s.mode = domain.ModeCompleted
	report := s.buildReportLocked()
	s.report = &report
	return nil
}

func (s *Session) buildReportLocked() domain.Report {
	total, maxScore := s.seq.Totals()
	pct, err := scoring.Percentage(total, maxScore)
	if err != nil {
		log.Printf("attempt %s: %v", s.id, err)
	}
	level, matched := scoring.Classify(total, s.catalog.Levels)
	if !matched {
		log.Printf("attempt %s: score %d/%d matched no CEFR band, falling back to %s", s.id, total, maxScore, level.Level)
	}
	return domain.Report{
		AttemptID:     s.id,
		CatalogID:     s.catalog.ID,
		Results:       s.seq.Results(),
		TotalScore:    total,
		MaxScore:      maxScore,
		Percentage:    pct,
		Level:         level,
		LevelFallback: !matched,
		Levels:        s.catalog.Levels,
		Performance:   scoring.PerformanceDescription(pct),
		CompletedAt:   s.now(),
	}
}

func (s *Session) mutateLocked(a Action) bool {
	if s.mode != domain.ModeInProgress {
		return false
	}

	if c := s.closed; c != nil {
		q := c.Current()
		if a.Question != nil {
			q = *a.Question
		}
		switch a.Type {
		case ActionSelect:
			return c.Select(q, a.Option)
		case ActionSubmit:
			return c.Submit(q)
		case ActionReset:
			return c.Reset(q)
		case ActionSkip:
			return c.Skip()
		case ActionPrevious:
			return c.Previous()
		case ActionNext:
			return c.Next()
		}
		return false
	}

	if o := s.open; o != nil {
		switch a.Type {
		case ActionText:
			return o.SetText(a.Text)
		case ActionRecording:
			return o.RecordingProduced(a.Recording)
		case ActionClearRecording:
			return o.RecordingCleared()
		}
	}
	return false
}

// IsIdle reports whether no client is subscribed to the attempt.
func (s *Session) IsIdle() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers) == 0
}

func (s *Session) subscribe() (<-chan View, func()) {
	ch := make(chan View, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	ch <- s.viewLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() View {
	v := s.viewLocked()
	for ch := range s.subscribers {
		select {
		case ch <- v:
		default:
			// drop the oldest view so a slow client never blocks the session
			select {
			case <-ch:
			default:
			}
			ch <- v
		}
	}
	return v
}

func (s *Session) viewLocked() View {
	v := View{
		AttemptID: s.id,
		CatalogID: s.catalog.ID,
		Mode:      s.mode,
		Progress:  Progress{Total: s.seq.Len()},
		UpdatedAt: s.now(),
	}

	switch s.mode {
	case domain.ModeNotStarted:
		v.Outline = make([]SectionView, 0, len(s.catalog.Sections))
		for _, section := range s.catalog.Sections {
			v.Outline = append(v.Outline, newSectionView(section))
		}
	case domain.ModeInProgress:
		section, idx := s.seq.Active()
		sv := newSectionView(section)
		v.Section = &sv
		v.Progress.Current = idx + 1
		v.Progress.Title = section.Title
		if s.closed != nil {
			v.Question = newQuestionView(s.closed)
			v.CanComplete = s.closed.Ready()
		}
		if s.open != nil {
			v.Prompt = newPromptView(s.open)
			v.CanComplete = s.open.Ready()
		}
	case domain.ModeCompleted:
		v.Progress.Current = s.seq.Len()
		if s.report != nil {
			report := *s.report
			v.Report = &report
		}
	}
	return v
}
