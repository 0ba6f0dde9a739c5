package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/chart"
	chartio "github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/io"
	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/pipeline"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	runner := pipeline.NewRunner(nil, nil, logger)
	t.Cleanup(func() { runner.Close() })
	return New(runner, logger)
}

func testRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func testOptions() pipeline.Options {
	return pipeline.Options{
		Dataset: &chartio.Dataset{
			Categories: []string{"a", "b"},
			Points: []chartio.DatasetPoint{
				{X: 1, Y: 2, Composition: []float64{1, 3}},
				{X: 4, Y: 5, Composition: []float64{2, 2}},
			},
		},
	}
}

func TestHealthz(t *testing.T) {
	rec := testRequest(t, testServer(t), http.MethodGet, "/healthz", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestRenderSingleFormat(t *testing.T) {
	opts := testOptions()
	opts.Formats = []string{"svg"}

	rec := testRequest(t, testServer(t), http.MethodPost, "/render", opts)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", ct)
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Error("body should be an SVG document")
	}
}

func TestRenderMultipleFormats(t *testing.T) {
	opts := testOptions()
	opts.Formats = []string{"svg", "json"}

	rec := testRequest(t, testServer(t), http.MethodPost, "/render", opts)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp renderResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.DatasetHash == "" {
		t.Error("dataset_hash should be set")
	}
	if len(resp.Artifacts) != 2 {
		t.Errorf("artifacts = %d entries, want 2", len(resp.Artifacts))
	}
	if !bytes.Contains(resp.Artifacts["svg"], []byte("<svg")) {
		t.Error("svg artifact should decode from base64 to an SVG document")
	}
}

func TestRenderRejectsFileInput(t *testing.T) {
	opts := testOptions()
	opts.Input = "/etc/passwd"

	rec := testRequest(t, testServer(t), http.MethodPost, "/render", opts)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestRenderRejectsMissingDataset(t *testing.T) {
	rec := testRequest(t, testServer(t), http.MethodPost, "/render", pipeline.Options{Formats: []string{"svg"}})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != "INVALID_DATASET" {
		t.Errorf("code = %q, want INVALID_DATASET", resp.Code)
	}
}

func TestRenderDegenerateComposition(t *testing.T) {
	opts := pipeline.Options{
		Dataset: &chartio.Dataset{
			Points: []chartio.DatasetPoint{{X: 1, Y: 1, Composition: []float64{0, 0}}},
		},
	}

	rec := testRequest(t, testServer(t), http.MethodPost, "/render", opts)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422, body %s", rec.Code, rec.Body.String())
	}
	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Code != "DEGENERATE_COMPOSITION" {
		t.Errorf("code = %q, want DEGENERATE_COMPOSITION", resp.Code)
	}
}

func TestRenderRejectsMalformedBody(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/render", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestLayoutEndpoint(t *testing.T) {
	rec := testRequest(t, testServer(t), http.MethodPost, "/layout", testOptions())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var layout chart.Layout
	if err := json.NewDecoder(rec.Body).Decode(&layout); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(layout.Pies) != 2 {
		t.Errorf("layout has %d pies, want 2", len(layout.Pies))
	}
	if !(layout.XLimits.Lo < layout.XLimits.Hi) {
		t.Errorf("x limits not increasing: %+v", layout.XLimits)
	}
}
