package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"elsa-proficiency-test/internal/domain"
	"github.com/jung-kurt/gofpdf"
)

// WritePDF renders a completed attempt as a one-document A4 report.
func WritePDF(w io.Writer, r domain.Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("English Proficiency Test Report", true)
	pdf.SetFont("Arial", "B", 16)
	pdf.AddPage()

	pdf.Cell(40, 10, tr("English Proficiency Test Report"))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Attempt: %s", r.AttemptID)))
	pdf.Ln(6)
	if !r.CompletedAt.IsZero() {
		pdf.Cell(0, 6, tr("Completed: "+r.CompletedAt.Format("2006-01-02 15:04 MST")))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	// level banner
	red, green, blue := hexColor(r.Level.Color)
	pdf.SetFillColor(red, green, blue)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr(fmt.Sprintf("%s  %s", r.Level.Level, r.Level.Name)), "", 1, "C", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 7, tr(fmt.Sprintf("Total score: %d / %d (%.0f%%)", r.TotalScore, r.MaxScore, r.Percentage)))
	pdf.Ln(7)
	pdf.MultiCell(0, 6, tr(r.Performance), "", "L", false)
	if r.LevelFallback {
		pdf.SetFont("Arial", "I", 10)
		pdf.MultiCell(0, 5, tr("The score matched no configured band; the lowest level was assigned."), "", "L", false)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, tr("Section breakdown"))
	pdf.Ln(9)
	for _, res := range r.Results {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(140, 7, tr(res.Title), "B", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, fmt.Sprintf("%d / %d", res.Score, res.MaxScore), "B", 1, "R", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		if res.Feedback != "" {
			pdf.MultiCell(0, 5, tr(res.Feedback), "", "L", false)
		}
		if len(res.Responses) > 0 {
			parts := make([]string, 0, len(res.Responses))
			for _, resp := range res.Responses {
				parts = append(parts, responseLabel(resp))
			}
			pdf.MultiCell(0, 5, tr("Responses: "+strings.Join(parts, ", ")), "", "L", false)
		}
		pdf.Ln(3)
	}

	if len(r.Levels) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 13)
		pdf.Cell(0, 8, tr("CEFR levels"))
		pdf.Ln(9)
		pdf.SetFont("Arial", "", 10)
		for _, l := range r.Levels {
			style := ""
			if l.Level == r.Level.Level {
				style = "B"
			}
			pdf.SetFont("Arial", style, 10)
			pdf.CellFormat(20, 6, l.Level, "", 0, "L", false, 0, "")
			pdf.CellFormat(80, 6, tr(l.Name), "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 6, fmt.Sprintf("%d-%d", l.MinScore, l.MaxScore), "", 1, "L", false, 0, "")
		}
	}

	if pdf.Err() {
		return fmt.Errorf("render report: %w", pdf.Error())
	}
	return pdf.Output(w)
}

// responseLabel keeps writing answers short so a long essay does not flood the page.
func responseLabel(r domain.Response) string {
	if r.Kind == domain.ResponseText {
		runes := []rune(r.Text)
		if len(runes) > 60 {
			return strconv.Quote(string(runes[:60]) + "...")
		}
		return strconv.Quote(r.Text)
	}
	return r.String()
}

// hexColor parses "#rrggbb"; anything else renders grey.
func hexColor(s string) (int, int, int) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 128, 128, 128
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 128, 128, 128
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}
