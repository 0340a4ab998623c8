// Package generator drives the schema-constrained LLM call that turns a
// case description and its analysis into a validated deck. It builds the
// prompt, invokes the injected client once, and re-validates the response
// against the block grammar. Retries are caller policy, never ours.
package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"midnightcourt/internal/analyzer"
	"midnightcourt/internal/deck"
	"midnightcourt/internal/llm"
	"midnightcourt/internal/llmclient"
	"midnightcourt/internal/prompt"
	"midnightcourt/internal/schema"
	"midnightcourt/internal/util/jsonutil"
)

var (
	// ErrInvalidModelOutput means the response was not parseable JSON.
	ErrInvalidModelOutput = errors.New("generator: invalid model output")
	// ErrSchemaViolation means the JSON parsed but broke the block grammar.
	ErrSchemaViolation = errors.New("generator: schema violation")
)

// Generator orchestrates deck generation against an injected LLM client.
type Generator struct {
	LLM llmclient.Client
	Log *zap.Logger

	Model       string
	Temperature float64
	MaxTokens   int
}

func New(client llmclient.Client, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{
		LLM:         client,
		Log:         log,
		Temperature: 0.4,
		MaxTokens:   8192,
	}
}

type generateInput struct {
	CaseText string            `json:"case_text"`
	Analysis analyzer.Analysis `json:"analysis"`
}

func deckPromptSpec(a analyzer.Analysis) prompt.StructuredSpec {
	return prompt.ApplyPresets(prompt.StructuredSpec{
		Purpose: "Create a structured slide deck that presents a legal case for courtroom or client use.",
		Background: fmt.Sprintf(
			"The input was pre-analyzed: case type %q, completeness %d/100. Build a focused narrative: facts, issues, law, arguments, conclusion.",
			a.CaseType, a.Completeness),
		Constraints: []string{
			fmt.Sprintf("Produce exactly %d slides.", a.EstimatedSlideCount),
			fmt.Sprintf("Use at most %d blocks per slide.", deck.MaxBlocksPerSlide),
			"Every slide needs a title; use subtitles sparingly.",
			"Pick block types that fit the content: timeline for chronology, twoColumn for opposing arguments, evidence for exhibits, callout for warnings or key holdings.",
		},
		Rules: []string{
			"Put detected statutes and citations on the slides where they matter, marked _blue_.",
			"Populate suggestedImages with two or three short search phrases per slide where an illustration would help.",
		},
		ResponseJSON: schema.SlideDeck(),
		OutputFormat: "JSON only.",
		Language:     "English",
	}, prompt.PresetStrictJSON(), prompt.PresetLegalAccuracy(), prompt.PresetInlineMarkers())
}

// Generate performs one generation round trip and returns a validated,
// normalized deck. ErrLimitExceeded from the client passes through
// unchanged.
func (g *Generator) Generate(ctx context.Context, caseText string, a analyzer.Analysis) (*deck.Deck, error) {
	if g.LLM == nil {
		return nil, errors.New("generator: llm client is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	build := prompt.StructuredBuilder(deckPromptSpec(a))
	p, err := build(ctx, generateInput{CaseText: caseText, Analysis: a})
	if err != nil {
		return nil, err
	}

	ctx = llm.WithOperation(ctx, "generate")
	resp, err := g.LLM.Generate(ctx, llmclient.Request{
		Prompt:      p,
		Schema:      schema.SlideDeck(),
		Model:       g.Model,
		Temperature: g.Temperature,
		MaxTokens:   g.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	d, err := ParseDeck(resp.Payload())
	if err != nil {
		return nil, err
	}
	now := time.Now()
	d.GeneratedAt = &now
	g.Log.Info("deck generated",
		zap.String("case_type", a.CaseType),
		zap.Int("slides", d.TotalSlides))
	return d, nil
}

// ParseDeck parses and grammar-checks an LLM deck payload. Shared with the
// refinement engine, which receives decks from the same schema.
func ParseDeck(payload []byte) (*deck.Deck, error) {
	var d deck.Deck
	if err := jsonutil.UnmarshalFlex(payload, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModelOutput, err)
	}
	deck.Normalize(&d)
	if err := deck.Validate(&d, deck.ModeGenerated); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	return &d, nil
}
