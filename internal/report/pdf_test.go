package report

import (
	"bytes"
	"testing"
	"time"

	"elsa-proficiency-test/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePDF(t *testing.T) {
	opt := 1
	r := domain.Report{
		AttemptID:  "attempt-1",
		CatalogID:  "reference",
		TotalScore: 30,
		MaxScore:   56,
		Percentage: 53.57,
		Level:      domain.CEFRLevel{Level: "B1", Name: "Intermediate", MinScore: 26, MaxScore: 35, Color: "#f59e0b"},
		Levels: []domain.CEFRLevel{
			{Level: "A1", Name: "Beginner", MinScore: 0, MaxScore: 15, Color: "#ef4444"},
			{Level: "B1", Name: "Intermediate", MinScore: 26, MaxScore: 35, Color: "#f59e0b"},
		},
		Performance: "Good performance with room for improvement.",
		Results: []domain.SectionResult{
			{SectionID: "vocabulary", Title: "Vocabulary", Score: 4, MaxScore: 4, Feedback: "Excellent vocabulary range.",
				Responses: []domain.Response{domain.OptionResponse(&opt)}},
			{SectionID: "writing", Title: "Writing", Score: 10, MaxScore: 10,
				Responses: []domain.Response{domain.TextResponse("Dear manager, I am writing to complain about the café’s service.")}},
		},
		CompletedAt: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, r))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")), "output should be a PDF document")
	assert.Greater(t, buf.Len(), 500)
}

func TestHexColor(t *testing.T) {
	red, green, blue := hexColor("#10b981")
	assert.Equal(t, []int{0x10, 0xb9, 0x81}, []int{red, green, blue})

	red, green, blue = hexColor("not-a-color")
	assert.Equal(t, []int{128, 128, 128}, []int{red, green, blue})
}

func TestResponseLabelTruncatesText(t *testing.T) {
	long := domain.TextResponse(string(bytes.Repeat([]byte("a"), 100)))
	assert.Len(t, responseLabel(long), 65) // 60 runes, "...", and quotes
	assert.Equal(t, "recorded", responseLabel(domain.RecordingResponse(true)))
}
