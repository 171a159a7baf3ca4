package web

import (
	"net/http"

	"github.com/JonMunkholm/weldview/internal/web/templates"
)

// handleIndex renders the page: upload form, dataset cards, chart.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	params := templates.IndexParams{
		Title:        "Weld Data Viewer",
		ChartVersion: s.charts.Version(),
		HasChart:     !s.charts.Scene().Empty(),
	}

	for _, ds := range s.controller.Session().Datasets() {
		card := templates.DatasetCard{
			ID:       ds.ID,
			Filename: ds.Filename,
			Color:    ds.Color,
			Visible:  ds.Visible,
			Rows:     len(ds.Rows),
			HasFlag:  ds.HasFlagColumn,
		}
		for _, e := range newDatasetResponse(ds).Metadata {
			card.Metadata = append(card.Metadata, [2]string{e.Key, e.Value})
		}
		params.Datasets = append(params.Datasets, card)
	}

	if batch := s.getLastBatch(); batch != nil {
		notice := &templates.BatchNotice{Summary: batch.Summary}
		for _, f := range batch.Failed {
			msg := f.Message
			if f.Detail != "" {
				msg += ": " + f.Detail
			}
			notice.Failures = append(notice.Failures, templates.FileFailure{Filename: f.Filename, Message: msg})
		}
		params.Batch = notice
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Index(params).Render(r.Context(), w); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
	}
}
