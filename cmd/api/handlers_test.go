package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"midnightcourt/internal/deck"
	"midnightcourt/internal/generator"
	"midnightcourt/internal/llmclient"
	"midnightcourt/internal/refine"
	"midnightcourt/internal/render"
)

func testApp(responses ...string) *app {
	client := &llmclient.MockClient{Responses: responses}
	log := zap.NewNop()
	return &app{
		log:       log,
		llm:       client,
		generator: generator.New(client, log),
		refiner:   refine.NewEngine(log),
		renderer:  render.NewRenderer(nil, log),
	}
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := doJSON(t, testApp().routes(), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("missing request id header")
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	body := `{"text":"` + strings.Repeat("The petitioner argued that the arrest violated Article 21. ", 4) + `"}`
	rec := doJSON(t, testApp().routes(), http.MethodPost, "/api/analyze", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var out struct {
		CaseType string `json:"caseType"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.CaseType == "" {
		t.Fatalf("missing caseType: %s", rec.Body)
	}
}

func TestGenerateEndpointRejectsShortInput(t *testing.T) {
	rec := doJSON(t, testApp().routes(), http.MethodPost, "/api/generate", `{"text":"too short"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), "minimum 100 characters") {
		t.Fatalf("missing validation error: %s", rec.Body)
	}
}

func TestGenerateEndpoint(t *testing.T) {
	deckJSON := `{"title":"T","slides":[
		{"title":"A","blocks":[{"type":"paragraph","data":{"text":"p"}}]},
		{"title":"B","blocks":[{"type":"paragraph","data":{"text":"q"}}]},
		{"title":"C","blocks":[{"type":"paragraph","data":{"text":"r"}}]}]}`
	a := testApp(deckJSON)
	body := `{"text":"` + strings.Repeat("The petitioner argued that the arrest violated Article 21. ", 4) + `"}`
	rec := doJSON(t, a.routes(), http.MethodPost, "/api/generate", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var d deck.Deck
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatal(err)
	}
	if d.TotalSlides != 3 {
		t.Fatalf("deck = %+v", d)
	}
}

func TestRenderEndpoint(t *testing.T) {
	rec := doJSON(t, testApp().routes(), http.MethodPost, "/api/render",
		`{"deck":{"title":"T","slides":[{"title":"A","blocks":[{"type":"paragraph","data":{"text":"p"}}]}]}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "<!DOCTYPE html>") {
		t.Fatal("missing html document")
	}
}

func TestImageSearchUnconfigured(t *testing.T) {
	rec := doJSON(t, testApp().routes(), http.MethodPost, "/api/images/search", `{"query":"gavel"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}
