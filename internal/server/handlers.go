package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jmylchreest/regtidy/internal/logger"
	"github.com/jmylchreest/regtidy/internal/version"
	"github.com/jmylchreest/regtidy/pkg/cleaner/regtidy"
	"github.com/jmylchreest/regtidy/pkg/dom"
	"github.com/jmylchreest/regtidy/pkg/htmldiff"
	"github.com/jmylchreest/regtidy/pkg/prettify"
)

type cleanRequest struct {
	HTML           string `json:"html"`
	Mode           string `json:"mode,omitempty"`
	SkipPrettier   *bool  `json:"skipPrettier,omitempty"`
	FileServerHost string `json:"fileServerHost,omitempty"`
}

type cleanResponse struct {
	HTML     string            `json:"html"`
	Stats    *regtidy.Stats    `json:"stats,omitempty"`
	Warnings []regtidy.Warning `json:"warnings,omitempty"`
}

type cleanupRequest struct {
	HTML     string `json:"html"`
	Prettify bool   `json:"prettify,omitempty"`
}

type diffRequest struct {
	Older string `json:"older"`
	Newer string `json:"newer"`
	Raw   bool   `json:"raw,omitempty"`
}

type prettifyRequest struct {
	HTML    string `json:"html"`
	Reverse bool   `json:"reverse,omitempty"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: version.String()})
}

// handleClean runs the one-shot import pipeline.
func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	var req cleanRequest
	if !decode(w, r, &req) {
		return
	}

	cfg := *s.opts.Config
	if req.Mode != "" {
		cfg.Mode = regtidy.ValidationMode(req.Mode)
	}
	if req.SkipPrettier != nil {
		cfg.SkipPrettier = *req.SkipPrettier
	}
	if req.FileServerHost != "" {
		cfg.FileServerHost = req.FileServerHost
	}
	if err := cfg.Validate(); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := regtidy.NewDirty(&cfg).CleanWithStats(req.HTML)
	if result.Error != nil {
		pipelineError(w, r, result.Error)
		return
	}
	writeJSON(w, http.StatusOK, cleanResponse{
		HTML:     result.Content,
		Stats:    result.Stats,
		Warnings: result.Warnings,
	})
}

// handleCleanup runs the idempotent editor-save pipeline.
func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	var req cleanupRequest
	if !decode(w, r, &req) {
		return
	}

	result := regtidy.NewEditor(s.opts.Config, req.Prettify).CleanWithStats(req.HTML)
	if result.Error != nil {
		pipelineError(w, r, result.Error)
		return
	}
	writeJSON(w, http.StatusOK, cleanResponse{
		HTML:     result.Content,
		Warnings: result.Warnings,
	})
}

// handleDiff diffs two documents. Both sides are pretty-printed first;
// already pretty input is unchanged by that.
func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	var req diffRequest
	if !decode(w, r, &req) {
		return
	}
	result := htmldiff.Diff(prettify.Prettify(req.Older), prettify.Prettify(req.Newer), htmldiff.Options{
		Raw:           req.Raw,
		SlowThreshold: s.opts.SlowDiffThreshold,
	})
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePrettify(w http.ResponseWriter, r *http.Request) {
	var req prettifyRequest
	if !decode(w, r, &req) {
		return
	}
	out := prettify.Prettify(req.HTML)
	if req.Reverse {
		out = prettify.DePrettify(req.HTML)
	}
	writeJSON(w, http.StatusOK, cleanResponse{HTML: out})
}

// decode reads a JSON body into v, answering the request itself on
// failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return false
		}
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func pipelineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, regtidy.ErrAlreadyCleaned):
		jsonError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, dom.ErrIDConflict):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		logger.ErrorContext(r.Context(), "pipeline failed", "path", r.URL.Path, "error", err)
		jsonError(w, "cleanup failed", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logger.Warn("failed to write response", "error", err)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
