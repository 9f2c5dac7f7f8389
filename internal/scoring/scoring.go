package scoring

import (
	"fmt"

	"elsa-proficiency-test/internal/domain"
)

// ScoreClosedSection sums the points of questions answered with the exact correct option.
// Unanswered or wrong answers score zero; there is no partial credit.
func ScoreClosedSection(questions []domain.Question, answers []domain.AnswerState) int {
	score := 0
	for i, q := range questions {
		if i >= len(answers) {
			break
		}
		if sel := answers[i].Selected; sel != nil && *sel == q.CorrectAnswer {
			score += q.Points
		}
	}
	return score
}

// ScoreOpenSection is all-or-nothing on the completion threshold.
func ScoreOpenSection(qualifying bool, points int) int {
	if qualifying {
		return points
	}
	return 0
}

// Classify returns the first band whose inclusive range contains total. When no band
// matches it falls back to the first band and reports matched=false so callers can
// surface the misconfiguration.
func Classify(total int, levels []domain.CEFRLevel) (level domain.CEFRLevel, matched bool) {
	for _, l := range levels {
		if l.Contains(total) {
			return l, true
		}
	}
	if len(levels) == 0 {
		return domain.CEFRLevel{}, false
	}
	return levels[0], false
}

// Percentage returns score/max*100.
func Percentage(score, max int) (float64, error) {
	if max <= 0 {
		return 0, domain.ErrZeroMaxScore
	}
	return float64(score) / float64(max) * 100, nil
}

// ValidateBands checks that levels cover [0, maxTotal] contiguously, in order, with
// no overlap, so Classify never needs its fallback for an achievable score.
func ValidateBands(levels []domain.CEFRLevel, maxTotal int) error {
	if len(levels) == 0 {
		return fmt.Errorf("%w: no bands defined", domain.ErrInvalidBands)
	}
	next := 0
	for _, l := range levels {
		if l.MinScore > l.MaxScore {
			return fmt.Errorf("%w: %s has min %d above max %d", domain.ErrInvalidBands, l.Level, l.MinScore, l.MaxScore)
		}
		if l.MinScore != next {
			if l.MinScore > next {
				return fmt.Errorf("%w: gap before %s (%d..%d uncovered)", domain.ErrInvalidBands, l.Level, next, l.MinScore-1)
			}
			return fmt.Errorf("%w: %s overlaps previous band at %d", domain.ErrInvalidBands, l.Level, l.MinScore)
		}
		next = l.MaxScore + 1
	}
	if next-1 != maxTotal {
		return fmt.Errorf("%w: bands end at %d, achievable total is %d", domain.ErrInvalidBands, next-1, maxTotal)
	}
	return nil
}
