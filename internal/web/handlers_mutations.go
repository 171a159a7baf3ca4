package web

import (
	"net/http"

	"github.com/JonMunkholm/weldview/internal/logging"
)

// handleRemove deletes one dataset.
func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}
	if err := s.controller.OnRemove(r.Context(), id); err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	logging.WithFields(r.Context(), "dataset_id", id).Info("dataset removed")
	s.commandDone(w, r, map[string]any{"status": "removed", "id": id})
}

// handleToggle flips one dataset's visibility.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}
	ds, err := s.controller.OnToggleVisible(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	logging.WithFields(r.Context(), "dataset_id", id).Debug("visibility toggled", "visible", ds.Visible)
	s.commandDone(w, r, newDatasetResponse(ds))
}

// handleSetColor assigns the "color" form value to one dataset.
func (s *Server) handleSetColor(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}
	color, err := formColor(r)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	ds, err := s.controller.OnSetColor(r.Context(), id, color)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	logging.WithFields(r.Context(), "dataset_id", id).Info("color changed", "color", ds.Color)
	s.commandDone(w, r, newDatasetResponse(ds))
}

// handleClear removes every dataset and forgets the last batch.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.OnClearAll(r.Context()); err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	s.setLastBatch(nil)
	logging.FromContext(r.Context()).Info("session cleared")
	s.commandDone(w, r, map[string]string{"status": "cleared"})
}
