// Package server exposes the lowering pipeline over HTTP.
package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"

	"github.com/orizon-lang/rangeloop/internal/errors"
	"github.com/orizon-lang/rangeloop/internal/hir"
	"github.com/orizon-lang/rangeloop/internal/intrinsics"
	"github.com/orizon-lang/rangeloop/internal/irio"
	"github.com/orizon-lang/rangeloop/internal/pipeline"
)

// MaxUnitSize bounds request bodies.
const MaxUnitSize = 8 << 20

// StatsHeader carries the per-pass counters of a lowered unit.
const StatsHeader = "X-Rangeloop-Stats"

// Handler serves POST /v1/lower and GET /healthz.
type Handler struct {
	mux      *http.ServeMux
	pipeline *pipeline.Pipeline
	registry *intrinsics.IntrinsicRegistry
	logger   *log.Logger
}

// NewHandler lowers request units with p. Builtin calls in request bodies are
// resolved through reg.
func NewHandler(p *pipeline.Pipeline, reg *intrinsics.IntrinsicRegistry, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(io.Discard, "[rangeloop] ", 0)
	}
	h := &Handler{mux: http.NewServeMux(), pipeline: p, registry: reg, logger: logger}
	h.mux.HandleFunc("/v1/lower", h.lower)
	h.mux.HandleFunc("/healthz", h.health)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "format": irio.Format, "version": irio.Version})
}

// lower answers with the lowered unit as JSON, or as text when ?dump=1 is given.
func (h *Handler) lower(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	f, err := irio.Decode(http.MaxBytesReader(w, r.Body, MaxUnitSize), h.registry)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res := h.pipeline.RunUnit(r.Context(), f)
	if res.Err != nil {
		h.fail(w, r, res.Err)
		return
	}
	h.logger.Printf("%s %s: lowered %s", r.RemoteAddr, r.URL.Path, res.Name)

	w.Header().Set(StatsHeader, formatStats(res.Stats))
	if r.URL.Query().Get("dump") == "1" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, hir.Dump(res.Unit))
		return
	}
	var buf bytes.Buffer
	if err := irio.Encode(&buf, res.Unit); err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	h.logger.Printf("%s %s: %d: %v", r.RemoteAddr, r.URL.Path, status, err)
	http.Error(w, err.Error(), status)
}

func statusFor(err error) int {
	switch {
	case strings.Contains(err.Error(), "request body too large"):
		return http.StatusRequestEntityTooLarge
	case errors.IsCategory(err, errors.CategoryDecode):
		return http.StatusBadRequest
	case errors.IsCategory(err, errors.CategoryInternal):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func formatStats(stats map[string]pipeline.Stats) string {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + stats[name].String()
	}
	return strings.Join(parts, "; ")
}
