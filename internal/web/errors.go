package web

// errors.go turns errors into responses.
//
// The technical error is logged with the request ID; the client only sees
// the core.MapError message. JSON clients get an ErrorResponse, browsers
// posting forms get a short plain-text page.

import (
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/weldview/internal/core"
	"github.com/JonMunkholm/weldview/internal/logging"
	"github.com/JonMunkholm/weldview/internal/render"
)

// ErrorResponse is the JSON body of a failed API call.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Detail  string `json:"detail,omitempty"`
}

func newErrorResponse(msg core.UserMessage) ErrorResponse {
	return ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
		Detail:  msg.Detail,
	}
}

// respondError logs err and writes the mapped user message.
// A zero status is derived from the error.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	if status == 0 {
		status = statusFor(err)
	}
	msg := core.MapError(err)

	logger := logging.WithFields(r.Context(),
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", msg.Code,
	)
	if status >= http.StatusInternalServerError {
		logger.Error("request error", "error", err)
	} else {
		logger.Warn("request rejected", "error", err)
	}

	if wantsJSON(r) {
		writeJSON(w, status, newErrorResponse(msg))
		return
	}
	http.Error(w, core.FormatUserError(err), status)
}

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrDatasetNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrInvalidColor), errors.Is(err, core.ErrNoFiles):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusTooManyRequests
	case errors.Is(err, render.ErrEmptyScene):
		return http.StatusNotFound
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

// wantsJSON reports whether the client expects a JSON body. Browser form
// posts get redirects and plain pages; other /api calls get JSON.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if isFormPost(r) {
		return false
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}

func isFormPost(r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "multipart/form-data") ||
		strings.HasPrefix(ct, "application/x-www-form-urlencoded")
}
