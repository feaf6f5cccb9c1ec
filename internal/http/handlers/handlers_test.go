package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"mergeq/internal/domain"
	"mergeq/internal/queue"
)

type stubSubmitter struct {
	req queue.SubmitRequest
	id  string
	err error
}

func (s *stubSubmitter) Submit(ctx context.Context, req queue.SubmitRequest) (string, error) {
	s.req = req
	return s.id, s.err
}

type stubStatus struct {
	status domain.JobStatus
	err    error
}

func (s *stubStatus) GetStatus(ctx context.Context, id string) (domain.JobStatus, error) {
	return s.status, s.err
}

type stubCatalog struct {
	cat domain.Catalog
	err error
}

func (s *stubCatalog) GetCatalog(ctx context.Context, sourceURL string) (domain.Catalog, error) {
	return s.cat, s.err
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestDownloadAccepted(t *testing.T) {
	submitter := &stubSubmitter{id: "job-42"}
	app := NewApp(submitter, &stubStatus{}, &stubCatalog{}, nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/download",
		strings.NewReader(`{"url":"https://example.com/v","itag":"137","output":"mp4","filename":"clip"}`))
	rec := httptest.NewRecorder()
	app.Download(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status code mismatch: %d", rec.Code)
	}
	body := decode(t, rec)
	if body["jobId"] != "job-42" {
		t.Fatalf("jobId mismatch: %v", body)
	}
	if submitter.req.StreamID != "137" || submitter.req.Container != "mp4" || submitter.req.FilenameHint != "clip" {
		t.Fatalf("submit request mismatch: %+v", submitter.req)
	}
}

func TestDownloadDefaultsContainer(t *testing.T) {
	submitter := &stubSubmitter{id: "job-42"}
	app := NewApp(submitter, &stubStatus{}, &stubCatalog{}, nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/download",
		strings.NewReader(`{"url":"https://example.com/v","itag":"137"}`))
	rec := httptest.NewRecorder()
	app.Download(rec, req)

	if submitter.req.Container != "mp4" {
		t.Fatalf("container default mismatch: %+v", submitter.req)
	}
}

func TestDownloadRejectsMissingFields(t *testing.T) {
	app := NewApp(&stubSubmitter{}, &stubStatus{}, &stubCatalog{}, nil, zerolog.Nop())

	for _, payload := range []string{`{}`, `{"url":"x"}`, `{"itag":"137"}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/api/download", strings.NewReader(payload))
		rec := httptest.NewRecorder()
		app.Download(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("payload %q: expected 400, got %d", payload, rec.Code)
		}
	}
}

func statusRequest(t *testing.T, app *App, id string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/job/"+id, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()
	app.JobStatus(rec, req)
	return rec
}

func TestJobStatusCompletedWithResult(t *testing.T) {
	result := &domain.JobResult{DownloadURL: "https://cdn/x.mp4", Key: "merged/x.mp4"}
	app := NewApp(&stubSubmitter{}, &stubStatus{status: domain.JobStatus{
		ID:       "job-1",
		State:    domain.JobStateCompleted,
		Progress: 100,
		Result:   result,
	}}, &stubCatalog{}, nil, zerolog.Nop())

	rec := statusRequest(t, app, "job-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status code mismatch: %d", rec.Code)
	}
	body := decode(t, rec)
	if body["state"] != "completed" {
		t.Fatalf("state mismatch: %v", body)
	}
	resultBody, ok := body["result"].(map[string]any)
	if !ok || resultBody["downloadUrl"] != "https://cdn/x.mp4" {
		t.Fatalf("result mismatch: %v", body)
	}
}

func TestJobStatusNotFound(t *testing.T) {
	app := NewApp(&stubSubmitter{}, &stubStatus{status: domain.JobStatus{
		ID:    "nope",
		State: domain.JobStateNotFound,
	}}, &stubCatalog{}, nil, zerolog.Nop())

	rec := statusRequest(t, app, "nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestJobStatusInternalError(t *testing.T) {
	app := NewApp(&stubSubmitter{}, &stubStatus{err: errors.New("redis down")}, &stubCatalog{}, nil, zerolog.Nop())

	rec := statusRequest(t, app, "job-1")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestInfoMapsFormats(t *testing.T) {
	cat := domain.Catalog{
		Title:    "Sample Clip",
		Duration: 12,
		Streams: []domain.StreamDescriptor{
			{StreamID: "137", Container: "mp4", HasVideo: true, HeightPx: 1080},
			{StreamID: "140", Container: "m4a", HasAudio: true},
		},
	}
	app := NewApp(&stubSubmitter{}, &stubStatus{}, &stubCatalog{cat: cat}, nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/info", strings.NewReader(`{"url":"https://example.com/v"}`))
	rec := httptest.NewRecorder()
	app.Info(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status code mismatch: %d", rec.Code)
	}
	body := decode(t, rec)
	data := body["data"].(map[string]any)
	if data["title"] != "Sample Clip" {
		t.Fatalf("title mismatch: %v", data)
	}
	formats := data["formats"].([]any)
	if len(formats) != 2 {
		t.Fatalf("formats mismatch: %v", formats)
	}
	first := formats[0].(map[string]any)
	if first["itag"] != "137" || first["qualityLabel"] != "1080p" {
		t.Fatalf("format mapping mismatch: %v", first)
	}
}

func TestInfoMissingURL(t *testing.T) {
	app := NewApp(&stubSubmitter{}, &stubStatus{}, &stubCatalog{}, nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/info", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	app.Info(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestServeDownloadWithoutLocalPublisher(t *testing.T) {
	app := NewApp(&stubSubmitter{}, &stubStatus{}, &stubCatalog{}, nil, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/downloads/x.mp4", nil)
	rec := httptest.NewRecorder()
	app.ServeDownload(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
