package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/JonMunkholm/weldview/internal/config"
	"github.com/JonMunkholm/weldview/internal/core"
	"github.com/JonMunkholm/weldview/internal/render"
)

const goodCSV = "Time,Position,Force,Weld,Operator\n0,1,10,0,alice\n1,2,12,1,\n2,3,15,0,\n"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return newTestServerEnv(t, nil)
}

// newTestServerEnv builds a server whose config is read from env only.
func newTestServerEnv(t *testing.T, env map[string]string) *Server {
	t.Helper()
	cfg, err := config.LoadFrom(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	charts := render.NewCache(render.ChartRenderer{Width: 600, Height: 300})
	controller := core.NewController(core.NewSession(), charts, core.RegionPolicy{}, core.BatchOptions{
		MaxFileSize: cfg.Upload.MaxFileSize,
		Concurrency: 2,
	})
	limiter := core.NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)
	return NewServer(cfg, controller, charts, limiter)
}

// uploadRequest builds a multipart upload of name/content pairs.
func uploadRequest(t *testing.T, files ...[2]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile("files", f[0])
		if err != nil {
			t.Fatalf("CreateFormFile() error = %v", err)
		}
		part.Write([]byte(f[1]))
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/files", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func TestUpload_MixedBatch(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, uploadRequest(t,
		[2]string{"run1.csv", goodCSV},
		[2]string{"empty.csv", "Time,Position,Force\n"},
		[2]string{"notes.txt", goodCSV},
	))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}

	resp := decode[batchResponse](t, rec)
	if resp.Summary != "1 file(s) loaded, 2 failed" {
		t.Errorf("Summary = %q", resp.Summary)
	}
	if len(resp.Loaded) != 1 || resp.Loaded[0].DatasetID != 1 || resp.Loaded[0].Rows != 3 {
		t.Errorf("Loaded = %+v", resp.Loaded)
	}

	codes := map[string]string{}
	for _, f := range resp.Failed {
		codes[f.Filename] = f.Code
	}
	if codes["empty.csv"] != "VAL002" {
		t.Errorf("empty.csv code = %q, want VAL002", codes["empty.csv"])
	}
	if codes["notes.txt"] != "FILE001" {
		t.Errorf("notes.txt code = %q, want FILE001", codes["notes.txt"])
	}

	if s.charts.Version() != 1 {
		t.Errorf("chart version = %d, want one render per batch", s.charts.Version())
	}
}

func TestUpload_AllFailed(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, uploadRequest(t, [2]string{"bad.csv", "Time,Position,Force\n0,x,1\n"}))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	resp := decode[batchResponse](t, rec)
	if len(resp.Failed) != 1 || resp.Failed[0].Code != "VAL005" {
		t.Fatalf("Failed = %+v", resp.Failed)
	}
	if !strings.Contains(resp.Failed[0].Detail, "row 2, column 2") {
		t.Errorf("Detail = %q, want row/column position", resp.Failed[0].Detail)
	}
}

func TestUpload_RejectedRequests(t *testing.T) {
	s := newTestServerEnv(t, map[string]string{
		"WELDVIEW_MAX_FILE_SIZE":    "1024",
		"WELDVIEW_MAX_REQUEST_SIZE": "1024",
	})

	malformed := httptest.NewRequest(http.MethodPost, "/api/files", strings.NewReader("not multipart"))
	malformed.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	malformed.Header.Set("Accept", "application/json")

	tests := []struct {
		name       string
		req        *http.Request
		wantStatus int
		wantCode   string
	}{
		{
			"body over request limit",
			uploadRequest(t, [2]string{"big.csv", goodCSV + strings.Repeat("3,4,20,0,\n", 400)}),
			http.StatusRequestEntityTooLarge,
			"FILE002",
		},
		{"malformed multipart", malformed, http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, tt.req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode == "" {
				return
			}
			if resp := decode[ErrorResponse](t, rec); resp.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", resp.Code, tt.wantCode)
			}
		})
	}
	if s.controller.Session().Len() != 0 {
		t.Error("rejected requests must not load anything")
	}
}

func TestUpload_NoFiles(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, uploadRequest(t))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if resp := decode[ErrorResponse](t, rec); resp.Code != "FILE004" {
		t.Errorf("Code = %q, want FILE004", resp.Code)
	}
}

func TestUpload_FormRedirects(t *testing.T) {
	s := newTestServer(t)

	req := uploadRequest(t, [2]string{"run1.csv", goodCSV})
	req.Header.Del("Accept")
	rec := serve(s, req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("status = %d, Location = %q; want redirect to /", rec.Code, rec.Header().Get("Location"))
	}

	page := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))
	body := page.Body.String()
	for _, want := range []string{"run1.csv", "1 file(s) loaded", "Operator", "alice", `/chart.svg?v=1`} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestDatasetCommands(t *testing.T) {
	s := newTestServer(t)
	serve(s, uploadRequest(t, [2]string{"a.csv", goodCSV}, [2]string{"b.csv", goodCSV}))

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/files", nil))
	list := decode[[]datasetResponse](t, rec)
	if len(list) != 2 {
		t.Fatalf("len(files) = %d, want 2", len(list))
	}

	t.Run("toggle", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/files/1/toggle", nil)
		req.Header.Set("Accept", "application/json")
		rec := serve(s, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if ds := decode[datasetResponse](t, rec); ds.ID != 1 || ds.Visible {
			t.Errorf("toggle response = id %d visible %v, want id 1 hidden", ds.ID, ds.Visible)
		}

		scene := decode[core.Scene](t, serve(s, httptest.NewRequest(http.MethodGet, "/api/scene", nil)))
		if len(scene.Series) != 1 {
			t.Errorf("scene series = %d, want 1 after hiding one dataset", len(scene.Series))
		}
	})

	t.Run("color form", func(t *testing.T) {
		form := url.Values{"color": {"FF0000"}}
		req := httptest.NewRequest(http.MethodPost, "/api/files/2/color", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := serve(s, req)
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("status = %d, want 303", rec.Code)
		}
		ds, _ := s.controller.Session().Get(2)
		if ds.Color != "#ff0000" || !ds.CustomColor {
			t.Errorf("color = %q custom=%v, want #ff0000 custom", ds.Color, ds.CustomColor)
		}
	})

	t.Run("color json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/files/1/color", strings.NewReader(`{"color":"#00FF00"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := serve(s, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if ds := decode[datasetResponse](t, rec); ds.ID != 1 || ds.Color != "#00ff00" {
			t.Errorf("color response = id %d color %q, want id 1 #00ff00", ds.ID, ds.Color)
		}
	})

	t.Run("invalid color", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/files/2/color", strings.NewReader(`{"color":"nope"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := serve(s, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		if resp := decode[ErrorResponse](t, rec); resp.Code != "DS002" {
			t.Errorf("Code = %q, want DS002", resp.Code)
		}
	})

	t.Run("remove", func(t *testing.T) {
		rec := serve(s, httptest.NewRequest(http.MethodDelete, "/api/files/1", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		rec = serve(s, httptest.NewRequest(http.MethodDelete, "/api/files/1", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("second remove status = %d, want 404", rec.Code)
		}
	})

	t.Run("bad id", func(t *testing.T) {
		rec := serve(s, httptest.NewRequest(http.MethodPost, "/api/files/abc/toggle", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})

	t.Run("clear", func(t *testing.T) {
		rec := serve(s, httptest.NewRequest(http.MethodPost, "/api/clear", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if n := s.controller.Session().Len(); n != 0 {
			t.Errorf("Len() = %d after clear", n)
		}
		if rec := serve(s, httptest.NewRequest(http.MethodGet, "/chart.svg", nil)); rec.Code != http.StatusNotFound {
			t.Errorf("chart status = %d, want 404 for an empty session", rec.Code)
		}
	})
}

func TestChartEndpoints(t *testing.T) {
	s := newTestServer(t)
	serve(s, uploadRequest(t, [2]string{"run1.csv", goodCSV}))

	tests := []struct {
		path        string
		contentType string
		prefix      string
	}{
		{"/chart.svg", "image/svg+xml", "<svg"},
		{"/chart.png", "image/png", "\x89PNG"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := serve(s, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", ct, tt.contentType)
			}
			if !strings.Contains(rec.Body.String()[:min(rec.Body.Len(), 512)], tt.prefix) {
				t.Errorf("body does not look like %s", tt.contentType)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t)
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rec.Header().Get("Content-Security-Policy"); got != contentSecurityPolicy {
		t.Errorf("CSP = %q", got)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if !strings.Contains(rec.Body.String(), "Load CSV files") {
		t.Error("empty page should prompt for files")
	}
}
