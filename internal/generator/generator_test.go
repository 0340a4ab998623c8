package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"midnightcourt/internal/analyzer"
	"midnightcourt/internal/deck"
	"midnightcourt/internal/llmclient"
)

const validDeckJSON = `{
  "title": "Right to Privacy",
  "slides": [
    {"title": "Facts", "blocks": [
      {"type": "paragraph", "data": {"text": "Aadhaar data collection was challenged."}}
    ]},
    {"title": "Holding", "blocks": [
      {"type": "quote", "data": {"quote": "Privacy is *intrinsic* to Article 21", "citation": "Puttaswamy"}}
    ]},
    {"title": "Conclusion", "blocks": [
      {"type": "text", "data": {"points": ["Privacy is a fundamental right"]}}
    ]}
  ]
}`

func testAnalysis() analyzer.Analysis {
	return analyzer.Analysis{CaseType: "constitutional", EstimatedSlideCount: 3, Completeness: 60}
}

func TestGenerateHappyPath(t *testing.T) {
	var captured llmclient.Request
	client := &llmclient.MockClient{Fn: func(_ context.Context, req llmclient.Request) (llmclient.Response, error) {
		captured = req
		return llmclient.Response{OutputText: validDeckJSON}, nil
	}}
	g := New(client, zap.NewNop())

	d, err := g.Generate(context.Background(), "case text", testAnalysis())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if d.TotalSlides != 3 || len(d.Slides) != 3 {
		t.Fatalf("totalSlides not attached: %+v", d)
	}
	if d.GeneratedAt == nil {
		t.Fatal("generatedAt not attached")
	}
	for _, s := range d.Slides {
		for _, b := range s.Blocks {
			if b.ID == "" {
				t.Fatal("block left without stable id")
			}
		}
	}
	if captured.Schema == nil {
		t.Fatal("response schema not passed to client")
	}
	if !strings.Contains(captured.Prompt, "[OUTPUT_SCHEMA]") || !strings.Contains(captured.Prompt, "Produce exactly 3 slides.") {
		t.Fatalf("prompt missing schema or slide budget:\n%s", captured.Prompt)
	}
}

func TestGenerateFencedOutputIsAccepted(t *testing.T) {
	client := &llmclient.MockClient{Responses: []string{"```json\n" + validDeckJSON + "\n```"}}
	g := New(client, zap.NewNop())
	if _, err := g.Generate(context.Background(), "x", testAnalysis()); err != nil {
		t.Fatalf("fenced output should parse: %v", err)
	}
}

func TestGenerateInvalidJSON(t *testing.T) {
	client := &llmclient.MockClient{Responses: []string{"the deck is great"}}
	g := New(client, zap.NewNop())
	_, err := g.Generate(context.Background(), "x", testAnalysis())
	if !errors.Is(err, ErrInvalidModelOutput) {
		t.Fatalf("want ErrInvalidModelOutput, got %v", err)
	}
}

func TestGenerateSchemaViolation(t *testing.T) {
	client := &llmclient.MockClient{Responses: []string{`{"title":"x","slides":[{"title":"","blocks":[]}]}`}}
	g := New(client, zap.NewNop())
	_, err := g.Generate(context.Background(), "x", testAnalysis())
	if !errors.Is(err, ErrSchemaViolation) {
		t.Fatalf("want ErrSchemaViolation, got %v", err)
	}
}

func TestGenerateLimitExceededPassesThrough(t *testing.T) {
	client := &llmclient.MockClient{Fn: func(context.Context, llmclient.Request) (llmclient.Response, error) {
		return llmclient.Response{}, llmclient.ErrLimitExceeded
	}}
	g := New(client, zap.NewNop())
	_, err := g.Generate(context.Background(), "x", testAnalysis())
	if !errors.Is(err, llmclient.ErrLimitExceeded) {
		t.Fatalf("limit error must pass through unchanged, got %v", err)
	}
}

func TestGenerateObservesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := New(&llmclient.MockClient{}, zap.NewNop())
	if _, err := g.Generate(ctx, "x", testAnalysis()); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestParseDeckClampsOversizedDecks(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"title":"big","slides":[`)
	for i := 0; i < deck.MaxSlides+3; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`{"title":"s","blocks":[{"type":"paragraph","data":{"text":"p"}}]}`)
	}
	b.WriteString(`]}`)

	d, err := ParseDeck([]byte(b.String()))
	if err != nil {
		t.Fatalf("oversized deck should clamp, not fail: %v", err)
	}
	if len(d.Slides) != deck.MaxSlides || d.TotalSlides != deck.MaxSlides {
		t.Fatalf("deck not clamped: %d", len(d.Slides))
	}
}

func TestLookupCitations(t *testing.T) {
	client := &llmclient.MockClient{Responses: []string{
		`{"results":[{"caseName":"K.S. Puttaswamy v. Union of India","citation":"(2017) 10 SCC 1"}]}`,
	}}
	g := New(client, zap.NewNop())
	got, err := g.LookupCitations(context.Background(), "privacy fundamental right")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(got) != 1 || got[0].Citation != "(2017) 10 SCC 1" {
		t.Fatalf("unexpected results: %+v", got)
	}
}
