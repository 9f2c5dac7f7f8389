package scoring

// PerformanceDescription labels an overall percentage.
func PerformanceDescription(percentage float64) string {
	switch {
	case percentage >= 90:
		return "Excellent performance"
	case percentage >= 80:
		return "Very good performance"
	case percentage >= 70:
		return "Good performance"
	case percentage >= 60:
		return "Satisfactory performance"
	case percentage >= 50:
		return "Below average performance"
	default:
		return "Needs significant improvement"
	}
}

type feedbackTier int

const (
	tierLow feedbackTier = iota
	tierMedium
	tierHigh
)

var sectionFeedback = map[string][3]string{
	"vocabulary": {
		"Basic vocabulary skills - focus on learning more synonyms and word meanings.",
		"Good vocabulary foundation with room for expanding advanced word knowledge.",
		"Excellent vocabulary knowledge with strong understanding of synonyms and word relationships.",
	},
	"grammar": {
		"Basic grammar knowledge - focus on fundamental sentence structures and verb tenses.",
		"Solid grammar foundation with minor areas for improvement in complex tenses.",
		"Strong grammatical accuracy with excellent understanding of complex structures.",
	},
	"reading": {
		"Basic reading comprehension - practice with longer texts and inference questions.",
		"Good reading skills with solid understanding of main ideas and details.",
		"Excellent reading comprehension with strong analytical and inference skills.",
	},
	"listening": {
		"Basic listening skills - practice with various accents and speaking speeds.",
		"Good listening comprehension with minor challenges in complex audio.",
		"Excellent listening skills with strong ability to understand spoken English.",
	},
	"writing": {
		"Basic writing ability - focus on structure, clarity, and professional language.",
		"Good writing skills with effective communication and organization.",
		"Strong writing ability with clear structure and professional tone.",
	},
	"speaking": {
		"Basic speaking ability - practice pronunciation, fluency, and confidence.",
		"Good speaking skills with effective communication and decent fluency.",
		"Confident speaking ability with clear pronunciation and natural flow.",
	},
}

const defaultFeedback = "Performance assessment completed."

// SectionFeedback returns the advice text for a section score: high from 70%,
// medium from 50%, low below that.
func SectionFeedback(sectionID string, score, max int) string {
	texts, ok := sectionFeedback[sectionID]
	if !ok {
		return defaultFeedback
	}
	pct, err := Percentage(score, max)
	if err != nil {
		return defaultFeedback
	}
	tier := tierLow
	switch {
	case pct >= 70:
		tier = tierHigh
	case pct >= 50:
		tier = tierMedium
	}
	return texts[tier]
}
