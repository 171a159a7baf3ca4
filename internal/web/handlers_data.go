package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/weldview/internal/core"
	"github.com/JonMunkholm/weldview/internal/render"
)

// datasetResponse describes a dataset without its samples.
type datasetResponse struct {
	ID            int                  `json:"id"`
	Filename      string               `json:"filename"`
	Color         string               `json:"color"`
	CustomColor   bool                 `json:"custom_color"`
	Visible       bool                 `json:"visible"`
	Rows          int                  `json:"rows"`
	HasFlagColumn bool                 `json:"has_flag_column"`
	Header        []string             `json:"header"`
	Metadata      []core.MetadataEntry `json:"metadata"`
	LoadedAt      time.Time            `json:"loaded_at"`
}

func newDatasetResponse(ds core.Dataset) datasetResponse {
	return datasetResponse{
		ID:            ds.ID,
		Filename:      ds.Filename,
		Color:         ds.Color,
		CustomColor:   ds.CustomColor,
		Visible:       ds.Visible,
		Rows:          len(ds.Rows),
		HasFlagColumn: ds.HasFlagColumn,
		Header:        ds.Header,
		Metadata:      core.MetadataEntries(ds.Header, ds.Metadata),
		LoadedAt:      ds.LoadedAt,
	}
}

// handleListFiles returns the datasets in insertion order.
func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	datasets := s.controller.Session().Datasets()
	resp := make([]datasetResponse, len(datasets))
	for i, ds := range datasets {
		resp[i] = newDatasetResponse(ds)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleScene returns the last rendered scene.
func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.charts.Scene())
}

// handleStatus reports upload slot usage and the session size.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"datasets":      s.controller.Session().Len(),
		"chart_version": s.charts.Version(),
		"uploads":       s.limiter.Status(),
	})
}

// handleChart serves the current chart image.
func (s *Server) handleChart(f render.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		img, err := s.charts.Image(f)
		if errors.Is(err, render.ErrEmptyScene) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if err != nil {
			s.respondError(w, r, err, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", f.ContentType())
		w.Header().Set("Content-Length", strconv.Itoa(len(img)))
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(img)
	}
}
