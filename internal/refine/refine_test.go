package refine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"midnightcourt/internal/deck"
	"midnightcourt/internal/llmclient"
)

func threeSlideDeck() *deck.Deck {
	return &deck.Deck{
		Title:       "State v. Rao",
		TotalSlides: 3,
		Slides: []deck.Slide{
			{Title: "Facts", Blocks: []deck.Block{
				{ID: "paragraph-a1b2c3d4", Type: deck.KindParagraph, Paragraph: &deck.ParagraphData{Text: "The accused was arrested without a warrant."}},
			}},
			{Title: "Issues", Blocks: []deck.Block{
				{ID: "text-b2c3d4e5", Type: deck.KindText, Text: &deck.TextData{Points: []string{"Was the arrest lawful?"}}},
			}},
			{Title: "Holding", Blocks: []deck.Block{
				{ID: "quote-c3d4e5f6", Type: deck.KindQuote, Quote: &deck.QuoteData{Quote: "The arrest was unlawful."}},
			}},
		},
	}
}

// echoGenerator returns the given deck as the model output.
func echoGenerator(t *testing.T, d *deck.Deck) GenerateFunc {
	t.Helper()
	return func(_ context.Context, _ llmclient.Request) (llmclient.Response, error) {
		b, err := json.Marshal(d)
		if err != nil {
			t.Fatalf("marshal refined deck: %v", err)
		}
		return llmclient.Response{OutputText: string(b)}, nil
	}
}

func TestRefineWithPreserve(t *testing.T) {
	original := threeSlideDeck()

	refined := threeSlideDeck()
	refined.Slides[1] = deck.Slide{Title: "Issues in Depth", Blocks: []deck.Block{
		{Type: deck.KindText, Text: &deck.TextData{Points: []string{
			"Was the warrantless arrest lawful under Section 41 CrPC?",
			"Did the arrest violate Article 21?",
		}}},
		{Type: deck.KindParagraph, Paragraph: &deck.ParagraphData{Text: "The prosecution relied on ~exigent circumstances~."}},
	}}

	e := NewEngine(zap.NewNop())
	e.Now = func() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) }

	res, err := e.Refine(context.Background(), original, "expand slide 2", Options{PreserveSlides: []int{0}}, echoGenerator(t, refined))
	if err != nil {
		t.Fatalf("refine: %v", err)
	}

	if diff := cmp.Diff(original.Slides[0], res.Deck.Slides[0]); diff != "" {
		t.Fatalf("preserved slide altered:\n%s", diff)
	}
	if diff := cmp.Diff(original.Slides[2], res.Deck.Slides[2]); diff != "" {
		t.Fatalf("untargeted slide altered:\n%s", diff)
	}
	got := res.Deck.Slides[1]
	if got.Title != "Issues in Depth" || !got.Modified || got.ModifiedAt == nil {
		t.Fatalf("targeted slide not replaced and stamped: %+v", got)
	}

	var contentOnTarget bool
	for _, c := range res.Changes {
		if c.Type == "content" && c.SlideIndex == 1 {
			contentOnTarget = true
		}
	}
	if !contentOnTarget {
		t.Fatalf("expected a content change on slide index 1, got %+v", res.Changes)
	}

	if len(res.Deck.RefinementHistory) != 1 {
		t.Fatalf("want exactly one history record, got %d", len(res.Deck.RefinementHistory))
	}
	rec := res.Deck.RefinementHistory[0]
	if rec.Action != "expand" {
		t.Fatalf("action = %q, want expand", rec.Action)
	}
	if diff := cmp.Diff([]int{1}, rec.TargetSlides); diff != "" {
		t.Fatalf("targetSlides:\n%s", diff)
	}
	if diff := cmp.Diff([]int{0}, rec.PreservedSlides); diff != "" {
		t.Fatalf("preservedSlides:\n%s", diff)
	}
	if rec.ID == "" || rec.ChangesCount != len(res.Changes) {
		t.Fatalf("record incomplete: %+v", rec)
	}
	if res.Deck.LastModified == nil || original.LastModified != nil {
		t.Fatal("lastModified must be stamped on the result only")
	}
}

func TestRefineNoOpWhenAllPreserved(t *testing.T) {
	original := threeSlideDeck()
	e := NewEngine(zap.NewNop())

	called := false
	gen := func(context.Context, llmclient.Request) (llmclient.Response, error) {
		called = true
		return llmclient.Response{}, nil
	}
	res, err := e.Refine(context.Background(), original, "tighten everything", Options{PreserveSlides: []int{0, 1, 2}}, gen)
	if err != nil {
		t.Fatalf("refine: %v", err)
	}
	if called {
		t.Fatal("generator must not run for a no-op refinement")
	}
	if len(res.Changes) != 0 || res.Record != nil || len(res.Deck.RefinementHistory) != 0 {
		t.Fatalf("no-op must return no changes and no record: %+v", res)
	}
	if diff := cmp.Diff(original.Slides, res.Deck.Slides); diff != "" {
		t.Fatalf("no-op altered slides:\n%s", diff)
	}
}

func TestRefineEmptyInstructions(t *testing.T) {
	e := NewEngine(zap.NewNop())
	_, err := e.Refine(context.Background(), threeSlideDeck(), "   ", Options{}, echoGenerator(t, threeSlideDeck()))
	if !errors.Is(err, ErrEmptyInstructions) {
		t.Fatalf("want ErrEmptyInstructions, got %v", err)
	}
}

func TestRefineInvalidDeck(t *testing.T) {
	e := NewEngine(zap.NewNop())
	bad := &deck.Deck{Title: "", Slides: nil}
	if _, err := e.Refine(context.Background(), bad, "expand", Options{}, echoGenerator(t, threeSlideDeck())); err == nil {
		t.Fatal("invalid existing deck must fail before generation")
	}
}

func TestRefineGeneratorErrorPropagates(t *testing.T) {
	e := NewEngine(zap.NewNop())
	original := threeSlideDeck()
	gen := func(context.Context, llmclient.Request) (llmclient.Response, error) {
		return llmclient.Response{}, llmclient.ErrLimitExceeded
	}
	_, err := e.Refine(context.Background(), original, "expand slide 1", Options{}, gen)
	if !errors.Is(err, llmclient.ErrLimitExceeded) {
		t.Fatalf("want ErrLimitExceeded, got %v", err)
	}
	if original.Slides[0].Modified || len(original.RefinementHistory) != 0 {
		t.Fatal("failed refinement must not mutate the original")
	}
}

func TestRefineObservesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := NewEngine(zap.NewNop())
	_, err := e.Refine(ctx, threeSlideDeck(), "expand slide 1", Options{}, echoGenerator(t, threeSlideDeck()))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestRefineMissingRefinedSlideKeepsOriginal(t *testing.T) {
	original := threeSlideDeck()
	truncated := &deck.Deck{Title: original.Title, Slides: original.Slides[:2]}

	core, logs := observer.New(zap.WarnLevel)
	e := NewEngine(zap.New(core))

	res, err := e.Refine(context.Background(), original, "expand slide 3", Options{}, echoGenerator(t, truncated))
	if err != nil {
		t.Fatalf("refine: %v", err)
	}
	if diff := cmp.Diff(original.Slides[2], res.Deck.Slides[2]); diff != "" {
		t.Fatalf("missing refined slide must keep the original:\n%s", diff)
	}
	if logs.FilterMessage("refined slide missing, keeping original").Len() != 1 {
		t.Fatal("expected a warning for the missing slide")
	}
}

func TestParseInstructions(t *testing.T) {
	cases := []struct {
		in      string
		action  Action
		targets []int
	}{
		{"expand slide 2", ActionExpand, []int{1}},
		{"add more detail to slides 1 and 3", ActionAddDetail, []int{0, 2}},
		{"condense slides 2, 3", ActionCondense, []int{1, 2}},
		{"focus on the dissent", ActionChangeFocus, nil},
		{"include the bail order", ActionAddMissing, nil},
		{"move the timeline earlier", ActionReorder, nil},
		{"use a two-column layout", ActionAdjustFormat, nil},
		{"make it better", ActionGeneral, nil},
		{"expand slide 0", ActionExpand, nil},
	}
	for _, tc := range cases {
		p := ParseInstructions(tc.in)
		if p.Action != tc.action {
			t.Errorf("%q: action = %s, want %s", tc.in, p.Action, tc.action)
		}
		if diff := cmp.Diff(tc.targets, p.TargetSlides); diff != "" {
			t.Errorf("%q: targets:\n%s", tc.in, diff)
		}
	}
}

func TestParseInstructionsFocus(t *testing.T) {
	p := ParseInstructions(`focus slide 1 on "due process" and Article 21`)
	want := map[string]bool{"due process": true, "Article 21": true}
	for _, f := range p.Focus {
		delete(want, f)
	}
	if len(want) != 0 {
		t.Fatalf("focus missing %v, got %v", want, p.Focus)
	}
}

func TestContentChangePercent(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abcd", "abcd", 0},
		{"abcd", "abxd", 25},
		{"abcd", "wxyz", 100},
		{"abcd", "abcdefgh", 50},
		{"abcd", "", 100},
	}
	for _, tc := range cases {
		if got := contentChangePercent(tc.a, tc.b); got != tc.want {
			t.Errorf("contentChangePercent(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestDiffSlideCountAndTail(t *testing.T) {
	original := threeSlideDeck()
	refined := threeSlideDeck()
	refined.Slides = append(refined.Slides, deck.Slide{Title: "Relief"})

	changes := Diff(original, refined)
	var haveCount, haveAdded bool
	for _, c := range changes {
		switch c.Type {
		case "slide_count":
			haveCount = c.Severity == SeverityMajor
		case "slide_added":
			haveAdded = c.SlideIndex == 3
		}
	}
	if !haveCount || !haveAdded {
		t.Fatalf("want slide_count (major) and slide_added changes, got %+v", changes)
	}

	changes = Diff(refined, original)
	var haveRemoved bool
	for _, c := range changes {
		if c.Type == "slide_removed" && c.Severity == SeverityMajor {
			haveRemoved = true
		}
	}
	if !haveRemoved {
		t.Fatalf("want slide_removed change, got %+v", changes)
	}
}

func TestDiffIgnoresUnmodifiedSlides(t *testing.T) {
	original := threeSlideDeck()
	refined := threeSlideDeck()
	refined.Slides[0].Title = "Changed but not stamped"

	if changes := Diff(original, refined); len(changes) != 0 {
		t.Fatalf("unstamped slides must not produce per-slide changes: %+v", changes)
	}
}

func TestDiffSeverityThreshold(t *testing.T) {
	original := threeSlideDeck()
	refined := threeSlideDeck()
	now := time.Now()

	refined.Slides[0].Modified = true
	refined.Slides[0].ModifiedAt = &now
	refined.Slides[0].Blocks[0].Paragraph.Text = "The accused was arrested without a warrant!"

	changes := Diff(original, refined)
	var content *Change
	for i := range changes {
		if changes[i].Type == "content" {
			content = &changes[i]
		}
	}
	if content == nil || content.Severity != SeverityModerate {
		t.Fatalf("small positional change must be moderate: %+v", changes)
	}
	if content.Percent <= 0 || content.Percent >= 50 {
		t.Fatalf("percent out of expected band: %d", content.Percent)
	}
}
