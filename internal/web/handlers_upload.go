package web

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/JonMunkholm/weldview/internal/core"
	"github.com/JonMunkholm/weldview/internal/logging"
)

// multipartMemory is how much of a multipart body is kept in memory; larger
// parts spill to temporary files.
const multipartMemory = 32 << 20

// uploadedFile adapts a multipart part to core.FileSource.
type uploadedFile struct {
	header *multipart.FileHeader
}

func (f uploadedFile) Name() string { return filepath.Base(f.header.Filename) }

func (f uploadedFile) Open() (io.ReadCloser, error) { return f.header.Open() }

// batchResponse is the JSON body of an upload and the summary shown on the
// page after the redirect.
type batchResponse struct {
	ID      string              `json:"id"`
	Summary string              `json:"summary"`
	Loaded  []core.LoadedFile   `json:"loaded"`
	Failed  []fileErrorResponse `json:"failed"`
}

// fileErrorResponse is one rejected file.
type fileErrorResponse struct {
	Filename string `json:"filename"`
	ErrorResponse
}

func newBatchResponse(result core.BatchResult) *batchResponse {
	resp := &batchResponse{
		ID:      result.ID.String(),
		Summary: result.Summary(),
		Loaded:  result.Loaded,
		Failed:  make([]fileErrorResponse, 0, len(result.Failed)),
	}
	if resp.Loaded == nil {
		resp.Loaded = []core.LoadedFile{}
	}
	for _, fe := range result.Failed {
		resp.Failed = append(resp.Failed, fileErrorResponse{
			Filename:      fe.Filename,
			ErrorResponse: newErrorResponse(core.MapError(fe.Err)),
		})
	}
	return resp
}

// handleUpload loads every file of the "files" form field as one batch.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxRequestSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		status := http.StatusBadRequest
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			status = http.StatusRequestEntityTooLarge
		}
		s.respondError(w, r, err, status)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		s.respondError(w, r, core.ErrNoFiles, http.StatusBadRequest)
		return
	}

	if err := s.limiter.Acquire(r.Context()); err != nil {
		s.respondError(w, r, err, http.StatusTooManyRequests)
		return
	}
	defer s.limiter.Release()

	sources := make([]core.FileSource, len(headers))
	for i, h := range headers {
		sources[i] = uploadedFile{header: h}
	}

	result, err := s.controller.OnFilesSelected(r.Context(), sources)
	resp := newBatchResponse(result)
	s.setLastBatch(resp)

	logging.WithFields(r.Context(), "batch_id", resp.ID).Info("upload processed",
		"files", len(sources),
		"loaded", len(resp.Loaded),
		"failed", len(resp.Failed),
	)

	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if !wantsJSON(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	status := http.StatusOK
	if len(resp.Loaded) == 0 {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

func (s *Server) setLastBatch(b *batchResponse) {
	s.mu.Lock()
	s.lastBatch = b
	s.mu.Unlock()
}

func (s *Server) getLastBatch() *batchResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBatch
}
