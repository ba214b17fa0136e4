package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/matzehuels/spdx2mermaid/pkg/buildinfo"
	"github.com/matzehuels/spdx2mermaid/pkg/cache"
	"github.com/matzehuels/spdx2mermaid/pkg/errors"
	"github.com/matzehuels/spdx2mermaid/pkg/pipeline"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ConvertResponse is the body of a successful POST /api/convert.
type ConvertResponse struct {
	ID          string         `json:"id"`
	Format      string         `json:"format"`
	InputFormat string         `json:"input_format"`
	Diagram     string         `json:"diagram,omitempty"` // text formats only
	URL         string         `json:"url"`
	Stats       pipeline.Stats `json:"stats"`
}

// storedDiagram is the envelope kept in the diagram store.
type storedDiagram struct {
	Format string `json:"format"`
	Name   string `json:"name,omitempty"`
	Data   []byte `json:"data"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	opts, err := s.queryOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "document too large", Code: errors.ErrCodeInvalidInput})
			return
		}
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return
	}

	res, err := s.runner.Convert(r.Context(), data, opts)
	if err != nil {
		writeError(w, err)
		return
	}

	id := uuid.NewString()
	if err := s.save(r.Context(), id, storedDiagram{Format: res.Format, Name: opts.Filename, Data: res.Artifact}); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "store diagram"))
		return
	}

	resp := ConvertResponse{
		ID:          id,
		Format:      res.Format,
		InputFormat: string(res.InputFormat),
		URL:         "/api/diagrams/" + id,
		Stats:       res.Stats,
	}
	if pipeline.IsText(res.Format) {
		resp.Diagram = string(res.Artifact)
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	d, err := s.load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", pipeline.ContentTypes[d.Format])
	_, _ = w.Write(d.Data)
}

func (s *Server) handleCurrentDiagram(w http.ResponseWriter, r *http.Request) {
	if s.current == nil {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no document is being served"))
		return
	}
	w.Header().Set("Content-Type", pipeline.ContentTypes[pipeline.FormatMermaid])
	_, _ = w.Write(s.current)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := viewerPage{Title: "spdx2mermaid", Version: buildinfo.Version}
	if s.current != nil {
		page.Title = s.name
		page.Diagram = string(s.current)
		page.Download = "/diagram.mmd"
	}
	writePage(w, page)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, err := s.load(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	page := viewerPage{Title: d.Name, Version: buildinfo.Version, Download: "/api/diagrams/" + id}
	if page.Title == "" {
		page.Title = id
	}
	switch d.Format {
	case pipeline.FormatMermaid:
		page.Diagram = string(d.Data)
	case pipeline.FormatMarkdown:
		page.Diagram = unfence(string(d.Data))
	case pipeline.FormatSVG, pipeline.FormatPNG:
		page.Image = "/api/diagrams/" + id
	}
	writePage(w, page)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string         `json:"status"`
		Build  buildinfo.Info `json:"build"`
	}{"ok", buildinfo.Get()})
}

// queryOptions overlays query parameters on the server defaults.
func (s *Server) queryOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.defaults
	opts.Logger = nil
	q := r.URL.Query()

	if v := q.Get("format"); v != "" {
		opts.Format = v
	}
	if v := q.Get("input_format"); v != "" {
		opts.InputFormat = v
	}
	if v := q.Get("direction"); v != "" {
		opts.Direction = strings.ToUpper(v)
	}
	if v := q.Get("unresolved"); v != "" {
		opts.Unresolved = v
	}
	if v := q.Get("compact"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, &errors.RenderError{Option: "compact", Value: v}
		}
		opts.Compact = b
	}
	if v := q.Get("exclude_external_refs"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, &errors.RenderError{Option: "exclude_external_refs", Value: v}
		}
		opts.ExcludeExternalRefs = b
	}
	if v := q.Get("max_packages"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, &errors.RenderError{Option: "max_packages", Value: v}
		}
		opts.MaxPackages = &n
	}
	if v := q.Get("filename"); v != "" {
		if err := errors.ValidateFilename(v); err != nil {
			return opts, err
		}
		opts.Filename = v
	}
	return opts, opts.ValidateAndSetDefaults()
}

func (s *Server) save(ctx context.Context, id string, d storedDiagram) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, s.keyer.DiagramKey(id), data, cache.TTLDiagram)
}

func (s *Server) load(ctx context.Context, id string) (storedDiagram, error) {
	var d storedDiagram
	if err := errors.ValidateDiagramID(id); err != nil {
		return d, err
	}
	data, hit, err := s.store.Get(ctx, s.keyer.DiagramKey(id))
	if err != nil {
		return d, errors.Wrap(errors.ErrCodeInternal, err, "load diagram")
	}
	if !hit {
		return d, errors.Wrap(errors.ErrCodeNotFound, cache.ErrNotFound, "diagram %s not found", id)
	}
	if err := json.Unmarshal(data, &d); err != nil {
		return d, errors.Wrap(errors.ErrCodeInternal, err, "decode diagram")
	}
	return d, nil
}

// unfence strips the Markdown code fence added to markdown output.
func unfence(s string) string {
	s = strings.TrimPrefix(s, "```mermaid\n")
	return strings.TrimSuffix(s, "```\n")
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

// StatusFor maps an error to its HTTP status. Unreadable or inconsistent
// documents are 422, bad options 400, unknown diagrams 404.
func StatusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidModel:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeInvalidOption, errors.ErrCodeInvalidInput, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusFor(err), errorBody{Error: errors.UserMessage(err), Code: errors.GetCode(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
