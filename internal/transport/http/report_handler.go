package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"elsa-proficiency-test/internal/app"
	"elsa-proficiency-test/internal/domain"
	"elsa-proficiency-test/internal/report"
)

type ReportHandler struct {
	service *app.TestService
}

func NewReportHandler(service *app.TestService) *ReportHandler {
	return &ReportHandler{service: service}
}

// ServeReport exports a completed attempt. Query: attemptId, format=json|pdf (default json).
func (h *ReportHandler) ServeReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	attemptID := r.URL.Query().Get("attemptId")
	if attemptID == "" {
		http.Error(w, "missing attemptId", http.StatusBadRequest)
		return
	}

	rep, err := h.service.Report(r.Context(), attemptID)
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, domain.ErrNotCompleted):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(rep); err != nil {
			log.Printf("encode report %s: %v", attemptID, err)
		}
	case "pdf":
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="proficiency-report-`+attemptID+`.pdf"`)
		if err := report.WritePDF(w, rep); err != nil {
			log.Printf("render report %s: %v", attemptID, err)
		}
	default:
		http.Error(w, "unsupported format "+format, http.StatusBadRequest)
	}
}
