package refine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"midnightcourt/internal/deck"
	"midnightcourt/internal/generator"
	"midnightcourt/internal/llm"
	"midnightcourt/internal/llmclient"
	"midnightcourt/internal/prompt"
	"midnightcourt/internal/schema"
)

// ErrEmptyInstructions is returned when the instruction string is blank.
var ErrEmptyInstructions = errors.New("refine: instructions are empty")

// GenerateFunc produces a refined deck for one prompt. It mirrors the
// llmclient generate call so an Engine can be driven by a real client, a
// middleware chain, or a test double.
type GenerateFunc func(ctx context.Context, req llmclient.Request) (llmclient.Response, error)

// Options narrows a refinement to explicit slide sets. A nil slice means
// unset; an empty non-nil slice is an explicit empty set.
type Options struct {
	TargetSlides   []int
	PreserveSlides []int
}

// Result carries the merged deck, the change diff against the original, and
// the history record appended for this refinement. Record is nil when the
// refinement resolved to a no-op.
type Result struct {
	Deck    *deck.Deck
	Changes []Change
	Record  *deck.RefinementRecord
}

// Engine runs refinements. The zero Model/Temperature/MaxTokens fields fall
// back to the same defaults the generator uses.
type Engine struct {
	Log         *zap.Logger
	Now         func() time.Time
	Model       string
	Temperature float64
	MaxTokens   int
}

// NewEngine returns an Engine with generation knobs matching the first-pass
// generator.
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		Log:         log,
		Now:         time.Now,
		Temperature: 0.4,
		MaxTokens:   8192,
	}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// Refine applies one instruction string to the deck. Target slides come from
// opts, then from slide references parsed out of the instructions, then
// default to every slide; preserved slides are subtracted from the target
// set and are never altered even if the model rewrites them. When the
// resolved set is empty the original deck is returned as a deep copy with no
// changes and no history record. On any failure the original deck is left
// untouched.
func (e *Engine) Refine(ctx context.Context, original *deck.Deck, instructions string, opts Options, generate GenerateFunc) (*Result, error) {
	if strings.TrimSpace(instructions) == "" {
		return nil, ErrEmptyInstructions
	}
	if err := deck.Validate(original, deck.ModeTemplate); err != nil {
		return nil, fmt.Errorf("refine: existing deck invalid: %w", err)
	}

	parsed := ParseInstructions(instructions)

	target := opts.TargetSlides
	if target == nil {
		target = parsed.TargetSlides
		if len(target) == 0 {
			target = allIndices(len(original.Slides))
		}
	}
	target = inRange(target, len(original.Slides))
	preserve := inRange(opts.PreserveSlides, len(original.Slides))
	toModify := subtract(target, preserve)

	if len(toModify) == 0 {
		return &Result{Deck: original.Clone(), Changes: []Change{}}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := e.buildPrompt(ctx, original, instructions, parsed, toModify, preserve)
	if err != nil {
		return nil, err
	}
	resp, err := generate(llm.WithOperation(ctx, "refine"), llmclient.Request{
		Prompt:      p,
		Schema:      schema.SlideDeck(),
		Model:       e.Model,
		Temperature: e.Temperature,
		MaxTokens:   e.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	refined, err := generator.ParseDeck(resp.Payload())
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := e.merge(original, refined, toModify)
	changes := Diff(original, merged)

	record := deck.RefinementRecord{
		ID:              uuid.NewString(),
		RefinedAt:       *merged.LastModified,
		Instructions:    instructions,
		Action:          string(parsed.Action),
		TargetSlides:    toModify,
		PreservedSlides: preserve,
		ChangesCount:    len(changes),
	}
	merged.RefinementHistory = append(merged.RefinementHistory, record)

	e.Log.Info("deck refined",
		zap.String("action", string(parsed.Action)),
		zap.Ints("targetSlides", toModify),
		zap.Ints("preservedSlides", preserve),
		zap.Int("changes", len(changes)))

	return &Result{Deck: merged, Changes: changes, Record: &record}, nil
}

// merge replaces the targeted slides in a deep copy of the original with
// their refined counterparts, stamping the transient modification markers.
// A refined slide that is absent or empty keeps the original and logs a
// warning.
func (e *Engine) merge(original, refined *deck.Deck, toModify []int) *deck.Deck {
	out := original.Clone()
	now := e.now()
	for _, idx := range toModify {
		if idx >= len(refined.Slides) || emptySlide(&refined.Slides[idx]) {
			e.Log.Warn("refined slide missing, keeping original", zap.Int("slide", idx))
			continue
		}
		s := refined.Slides[idx].Clone()
		s.Modified = true
		t := now
		s.ModifiedAt = &t
		out.Slides[idx] = s
	}
	out.TotalSlides = len(out.Slides)
	t := now
	out.LastModified = &t
	return out
}

func (e *Engine) buildPrompt(ctx context.Context, d *deck.Deck, instructions string, parsed Parsed, toModify, preserve []int) (string, error) {
	modifySet := toSet(toModify)
	preserveSet := toSet(preserve)

	lines := make([]string, 0, len(d.Slides))
	for i := range d.Slides {
		tag := "[KEEP]"
		switch {
		case preserveSet[i]:
			tag = "[PRESERVE]"
		case modifySet[i]:
			tag = "[TARGET]"
		}
		lines = append(lines, fmt.Sprintf("slide %d %s title=%q blocks=%d kinds=%s",
			i+1, tag, d.Slides[i].Title, len(d.Slides[i].Blocks), strings.Join(blockKinds(&d.Slides[i]), ",")))
	}

	spec := prompt.StructuredSpec{
		Purpose: "Refine an existing legal case slide deck according to the user's edit instructions, changing only the [TARGET] slides.",
		Background: fmt.Sprintf("Deck %q has %d slides.\n%s\n\nDetected action: %s\nFocus: %s",
			d.Title, len(d.Slides), strings.Join(lines, "\n"), parsed.Action, strings.Join(parsed.Focus, "; ")),
		Rules: []string{
			"Return the full deck with the same number of slides in the same order.",
			"Rewrite only the slides tagged [TARGET]; copy [PRESERVE] and [KEEP] slides through unchanged.",
			"Keep every legal statement accurate; never invent case names, citations or holdings.",
			"Honor the focus keywords when rewriting targeted slides.",
			"Each slide carries at most 5 blocks; use only the block types defined by the output schema.",
			"Respond with a single JSON object conforming exactly to the output schema, with no surrounding prose.",
		},
		ResponseJSON: schema.SlideDeck(),
	}
	spec = prompt.ApplyPresets(spec, prompt.PresetStrictJSON(), prompt.PresetLegalAccuracy(), prompt.PresetInlineMarkers())

	build := prompt.StructuredBuilder(spec)
	return build(ctx, map[string]any{
		"instructions": instructions,
		"deck":         d,
	})
}

func blockKinds(s *deck.Slide) []string {
	kinds := make([]string, 0, len(s.Blocks))
	for i := range s.Blocks {
		kinds = append(kinds, string(s.Blocks[i].Type))
	}
	return kinds
}

func emptySlide(s *deck.Slide) bool {
	return strings.TrimSpace(s.Title) == "" && len(s.Blocks) == 0
}

func allIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func inRange(indices []int, n int) []int {
	out := []int{}
	seen := map[int]bool{}
	for _, i := range indices {
		if i < 0 || i >= n || seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func subtract(a, b []int) []int {
	drop := toSet(b)
	out := []int{}
	for _, i := range a {
		if !drop[i] {
			out = append(out, i)
		}
	}
	return out
}

func toSet(indices []int) map[int]bool {
	set := make(map[int]bool, len(indices))
	for _, i := range indices {
		set[i] = true
	}
	return set
}
