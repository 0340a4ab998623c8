package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"midnightcourt/internal/analyzer"
	"midnightcourt/internal/deck"
	"midnightcourt/internal/generator"
	"midnightcourt/internal/imagesearch"
	"midnightcourt/internal/llmclient"
	"midnightcourt/internal/refine"
	"midnightcourt/internal/render"
)

// app holds the wired pipeline components behind the HTTP surface.
type app struct {
	log       *zap.Logger
	llm       llmclient.Client
	generator *generator.Generator
	refiner   *refine.Engine
	renderer  *render.Renderer
	images    imagesearch.Client
}

func (a *app) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", a.handleHealthz)
	mux.HandleFunc("POST /api/analyze", a.handleAnalyze)
	mux.HandleFunc("POST /api/validate", a.handleValidate)
	mux.HandleFunc("POST /api/generate", a.handleGenerate)
	mux.HandleFunc("POST /api/refine", a.handleRefine)
	mux.HandleFunc("POST /api/render", a.handleRender)
	mux.HandleFunc("POST /api/citations/search", a.handleCitationSearch)
	mux.HandleFunc("POST /api/images/search", a.handleImageSearch)
	return a.withRequestLog(mux)
}

func (a *app) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type textRequest struct {
	Text string `json:"text"`
}

func (a *app) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var in textRequest
	if !a.decode(w, r, &in) {
		return
	}
	writeJSON(w, http.StatusOK, analyzer.Analyze(in.Text))
}

func (a *app) handleValidate(w http.ResponseWriter, r *http.Request) {
	var in textRequest
	if !a.decode(w, r, &in) {
		return
	}
	writeJSON(w, http.StatusOK, analyzer.Validate(in.Text))
}

func (a *app) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var in textRequest
	if !a.decode(w, r, &in) {
		return
	}
	vr := analyzer.Validate(in.Text)
	if !vr.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": vr.Errors})
		return
	}
	d, err := a.generator.Generate(r.Context(), in.Text, vr.Analysis)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

type refineRequest struct {
	Deck           *deck.Deck `json:"deck"`
	Instructions   string     `json:"instructions"`
	TargetSlides   []int      `json:"targetSlides"`
	PreserveSlides []int      `json:"preserveSlides"`
}

type refineResponse struct {
	Deck    *deck.Deck             `json:"deck"`
	Changes []refine.Change        `json:"changes"`
	Record  *deck.RefinementRecord `json:"record,omitempty"`
}

func (a *app) handleRefine(w http.ResponseWriter, r *http.Request) {
	var in refineRequest
	if !a.decode(w, r, &in) {
		return
	}
	if in.Deck == nil {
		a.badRequest(w, "deck is required")
		return
	}
	res, err := a.refiner.Refine(r.Context(), in.Deck, in.Instructions, refine.Options{
		TargetSlides:   in.TargetSlides,
		PreserveSlides: in.PreserveSlides,
	}, a.llm.Generate)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, refineResponse{Deck: res.Deck, Changes: res.Changes, Record: res.Record})
}

func (a *app) handleRender(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Deck *deck.Deck `json:"deck"`
	}
	if !a.decode(w, r, &in) {
		return
	}
	if in.Deck == nil {
		a.badRequest(w, "deck is required")
		return
	}
	html, err := a.renderer.RenderDeck(r.Context(), in.Deck)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

func (a *app) handleCitationSearch(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Query string `json:"query"`
	}
	if !a.decode(w, r, &in) {
		return
	}
	citations, err := a.generator.LookupCitations(r.Context(), in.Query)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": citations})
}

func (a *app) handleImageSearch(w http.ResponseWriter, r *http.Request) {
	if a.images == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "image search is not configured"})
		return
	}
	var in struct {
		Query   string `json:"query"`
		PerPage int    `json:"perPage"`
	}
	if !a.decode(w, r, &in) {
		return
	}
	results, err := a.images.Search(r.Context(), imagesearch.Query{Text: in.Query, PerPage: in.PerPage})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"source":  a.images.Source(),
		"results": results,
	})
}

func (a *app) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		a.badRequest(w, "invalid json body")
		return false
	}
	return true
}

func (a *app) badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// writeError maps pipeline errors onto HTTP statuses without leaking
// provider internals to the caller.
func (a *app) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var vErr *deck.ValidationError
	switch {
	case errors.Is(err, llmclient.ErrLimitExceeded):
		status = http.StatusTooManyRequests
	case errors.Is(err, generator.ErrInvalidModelOutput), errors.Is(err, generator.ErrSchemaViolation):
		status = http.StatusBadGateway
	case errors.Is(err, refine.ErrEmptyInstructions), errors.As(err, &vErr):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		status = 499
	}
	a.log.Warn("request failed",
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err))
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
