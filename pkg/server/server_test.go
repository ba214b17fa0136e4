package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spdx2mermaid/pkg/errors"
	"github.com/matzehuels/spdx2mermaid/pkg/observability"
	"github.com/matzehuels/spdx2mermaid/pkg/pipeline"
)

const document = `{
  "spdxVersion": "SPDX-2.3",
  "SPDXID": "SPDXRef-DOCUMENT",
  "name": "ExampleSBOM",
  "packages": [
    {"SPDXID": "SPDXRef-left-pad", "name": "left-pad", "versionInfo": "1.3.0"},
    {"SPDXID": "SPDXRef-is-array", "name": "is-array"}
  ],
  "relationships": [
    {"spdxElementId": "SPDXRef-DOCUMENT", "relationshipType": "DESCRIBES", "relatedSpdxElement": "SPDXRef-left-pad"},
    {"spdxElementId": "SPDXRef-left-pad", "relationshipType": "DEPENDS_ON", "relatedSpdxElement": "SPDXRef-is-array"}
  ]
}`

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, logger)
	}
	cfg.Logger = logger
	s, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(s)
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func TestConvertAndFetch(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, body := post(t, ts.URL+"/api/convert?compact=true", document)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	var cr ConvertResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		t.Fatal(err)
	}
	if cr.Format != "mermaid" || cr.InputFormat != "json" {
		t.Errorf("format = %s, input = %s", cr.Format, cr.InputFormat)
	}
	if !strings.HasPrefix(cr.Diagram, "graph TD\n") {
		t.Errorf("diagram = %q", cr.Diagram)
	}
	if cr.Stats.Diagram.Edges != 2 {
		t.Errorf("edges = %d, want 2", cr.Stats.Diagram.Edges)
	}
	if err := errors.ValidateDiagramID(cr.ID); err != nil {
		t.Errorf("id %q: %v", cr.ID, err)
	}

	resp, stored := get(t, ts.URL+cr.URL)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET diagram status = %d", resp.StatusCode)
	}
	if string(stored) != cr.Diagram {
		t.Error("stored diagram differs from response")
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/vnd.mermaid") {
		t.Errorf("Content-Type = %s", ct)
	}

	resp, page := get(t, ts.URL+"/view/"+cr.ID)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET view status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(page), `<pre class="mermaid">graph TD`) {
		t.Errorf("view page missing diagram:\n%s", page)
	}
}

func TestConvertDOTFormat(t *testing.T) {
	ts := newTestServer(t, Config{})
	resp, body := post(t, ts.URL+"/api/convert?format=dot&direction=lr", document)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}
	var cr ConvertResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(cr.Diagram, "rankdir=LR") {
		t.Errorf("diagram = %q", cr.Diagram)
	}
}

func TestConvertErrors(t *testing.T) {
	ts := newTestServer(t, Config{})

	tests := []struct {
		name   string
		query  string
		body   string
		status int
		code   errors.Code
	}{
		{"malformed", "", `{"packages": [`, http.StatusUnprocessableEntity, errors.ErrCodeInvalidFormat},
		{"unknown format", "", "hello world", http.StatusUnprocessableEntity, errors.ErrCodeInvalidFormat},
		{"duplicate", "", `{"packages": [{"SPDXID": "SPDXRef-a"}, {"SPDXID": "SPDXRef-a"}]}`, http.StatusUnprocessableEntity, errors.ErrCodeInvalidModel},
		{"max packages", "?max_packages=0", document, http.StatusBadRequest, errors.ErrCodeInvalidOption},
		{"max packages text", "?max_packages=lots", document, http.StatusBadRequest, errors.ErrCodeInvalidOption},
		{"compact", "?compact=maybe", document, http.StatusBadRequest, errors.ErrCodeInvalidOption},
		{"output format", "?format=gif", document, http.StatusBadRequest, errors.ErrCodeInvalidOption},
		{"filename", "?filename=..%2Fetc", document, http.StatusBadRequest, errors.ErrCodeInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := post(t, ts.URL+"/api/convert"+tt.query, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d (%s)", resp.StatusCode, tt.status, body)
			}
			var eb errorBody
			if err := json.Unmarshal(body, &eb); err != nil {
				t.Fatalf("error body: %v", err)
			}
			if eb.Code != tt.code {
				t.Errorf("code = %s, want %s", eb.Code, tt.code)
			}
		})
	}
}

func TestBodyTooLarge(t *testing.T) {
	ts := newTestServer(t, Config{MaxBodyBytes: 16})
	resp, _ := post(t, ts.URL+"/api/convert", document)
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", resp.StatusCode)
	}
}

func TestDiagramLookup(t *testing.T) {
	ts := newTestServer(t, Config{})

	tests := []struct {
		path   string
		status int
	}{
		{"/api/diagrams/not-a-uuid", http.StatusBadRequest},
		{"/api/diagrams/6f1c0d2e-9a4b-4c3d-8e7f-0a1b2c3d4e5f", http.StatusNotFound},
		{"/view/6f1c0d2e-9a4b-4c3d-8e7f-0a1b2c3d4e5f", http.StatusNotFound},
		{"/diagram.mmd", http.StatusNotFound},
	}
	for _, tt := range tests {
		resp, _ := get(t, ts.URL+tt.path)
		if resp.StatusCode != tt.status {
			t.Errorf("GET %s = %d, want %d", tt.path, resp.StatusCode, tt.status)
		}
	}
}

func TestServedDocument(t *testing.T) {
	ts := newTestServer(t, Config{Document: []byte(document), DocumentName: "example.spdx.json"})

	resp, body := get(t, ts.URL+"/diagram.mmd")
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(string(body), "graph TD\n") {
		t.Fatalf("GET /diagram.mmd = %d\n%s", resp.StatusCode, body)
	}

	resp, page := get(t, ts.URL+"/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET / = %d", resp.StatusCode)
	}
	for _, want := range []string{"<title>example.spdx.json</title>", `<pre class="mermaid">`, "mermaid.initialize"} {
		if !strings.Contains(string(page), want) {
			t.Errorf("index page missing %q", want)
		}
	}
}

func TestNewRejectsBrokenDocument(t *testing.T) {
	_, err := New(context.Background(), Config{
		Runner:   pipeline.NewRunner(nil, nil, log.New(io.Discard)),
		Document: []byte("not an sbom"),
		Logger:   log.New(io.Discard),
	})
	if err == nil {
		t.Fatal("expected error for an unreadable served document")
	}
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("code = %s", errors.GetCode(err))
	}
}

func TestNewRequiresRunner(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Error("expected error without a runner")
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, Config{})
	resp, body := get(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), `"status":"ok"`) {
		t.Errorf("GET /healthz = %d %s", resp.StatusCode, body)
	}
}

type routeRecorder struct {
	observability.NoopServerHooks
	mu     sync.Mutex
	routes []string
}

func (h *routeRecorder) OnRequest(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, method+" "+route)
}

func TestObserveUsesRoutePattern(t *testing.T) {
	hooks := &routeRecorder{}
	observability.SetServerHooks(hooks)
	t.Cleanup(observability.Reset)

	ts := newTestServer(t, Config{})
	get(t, ts.URL+"/view/6f1c0d2e-9a4b-4c3d-8e7f-0a1b2c3d4e5f")

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.routes) != 1 || hooks.routes[0] != "GET /view/{id}" {
		t.Errorf("routes = %v", hooks.routes)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&errors.FormatError{Format: "json"}, http.StatusUnprocessableEntity},
		{&errors.ModelError{ID: "x", Reason: "duplicate identifier"}, http.StatusUnprocessableEntity},
		{&errors.RenderError{Option: "direction", Value: "BT"}, http.StatusBadRequest},
		{errors.New(errors.ErrCodeNotFound, "gone"), http.StatusNotFound},
		{errors.New(errors.ErrCodeUnsupported, "no rsvg"), http.StatusNotImplemented},
		{io.EOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusFor(tt.err); got != tt.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestUnfence(t *testing.T) {
	if got := unfence("```mermaid\ngraph TD\n```\n"); got != "graph TD\n" {
		t.Errorf("unfence = %q", got)
	}
}
