package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/weldview/internal/core"
	"github.com/go-chi/chi/v5"
)

// parseID reads the {id} URL parameter. Anything that is not a positive
// integer cannot name a dataset.
func parseID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %q", core.ErrDatasetNotFound, raw)
	}
	return id, nil
}

// formColor reads the requested color from a form field or a JSON body.
func formColor(r *http.Request) (string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body struct {
			Color string `json:"color"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", fmt.Errorf("%w: %w", core.ErrInvalidColor, err)
		}
		return body.Color, nil
	}
	return r.FormValue("color"), nil
}

// commandDone finishes a successful command: forms go back to the page,
// API clients get v.
func (s *Server) commandDone(w http.ResponseWriter, r *http.Request, v any) {
	if !wantsJSON(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
