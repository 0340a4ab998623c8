package deck

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestBlockJSONRoundTrip(t *testing.T) {
	raw := `{"id":"b1","type":"callout","data":{"title":"Caution","description":"Limitation period","variant":"warning"}}`
	var b Block
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if b.Type != KindCallout || b.Callout == nil || b.Callout.Variant != CalloutWarning {
		t.Fatalf("unexpected block: %+v", b)
	}
	out, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(out), `"type":"callout"`) || !strings.Contains(string(out), `"variant":"warning"`) {
		t.Fatalf("unexpected wire form: %s", out)
	}
}

func TestUnmarshalUnknownKindSurvives(t *testing.T) {
	var b Block
	if err := json.Unmarshal([]byte(`{"type":"hologram","data":{"x":1}}`), &b); err != nil {
		t.Fatalf("unknown kind should not fail unmarshal: %v", err)
	}
	if b.Payload() != nil {
		t.Fatalf("unknown kind must have nil payload")
	}
	if err := validateBlock(&b); err == nil {
		t.Fatal("expected validation error for unknown kind")
	}
}

func TestValidateRejectsDrift(t *testing.T) {
	cases := []struct {
		name string
		deck Deck
		want string
	}{
		{
			name: "empty deck",
			deck: Deck{},
			want: "no slides",
		},
		{
			name: "bad variant",
			deck: Deck{Slides: []Slide{{
				Title:  "Issues",
				Blocks: []Block{{Type: KindCallout, Callout: &CalloutData{Title: "x", Variant: "fancy"}}},
			}}},
			want: "variant",
		},
		{
			name: "total mismatch",
			deck: Deck{TotalSlides: 3, Slides: []Slide{{Title: "Facts"}}},
			want: "totalSlides",
		},
		{
			name: "empty slide title",
			deck: Deck{Slides: []Slide{{Title: "   "}}},
			want: "empty title",
		},
		{
			name: "image without uri",
			deck: Deck{Slides: []Slide{{
				Title:  "Exhibits",
				Blocks: []Block{{Type: KindImage, Image: &ImageData{Layout: LayoutCenter}}},
			}}},
			want: "uri",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(&tc.deck, ModeGenerated)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalidDeck) {
				t.Fatalf("error must wrap ErrInvalidDeck, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestValidateTemplateModeRelaxesCounts(t *testing.T) {
	s := Slide{Title: "Reference"}
	for i := 0; i < MaxBlocksPerSlide+3; i++ {
		s.Blocks = append(s.Blocks, Block{Type: KindParagraph, Paragraph: &ParagraphData{Text: "x"}})
	}
	d := Deck{Slides: []Slide{s}}
	if err := Validate(&d, ModeTemplate); err != nil {
		t.Fatalf("template mode should allow long slides: %v", err)
	}
	if err := Validate(&d, ModeGenerated); err == nil {
		t.Fatal("generated mode should reject long slides")
	}
}

func TestNormalizeClampsAndAssignsIDs(t *testing.T) {
	d := Deck{Title: "State v. Rao"}
	for i := 0; i < MaxSlides+2; i++ {
		s := Slide{Title: "Slide"}
		for j := 0; j < MaxBlocksPerSlide+2; j++ {
			s.Blocks = append(s.Blocks, Block{Type: KindParagraph, Paragraph: &ParagraphData{Text: "p"}})
		}
		// one unknown-kind straggler per slide
		s.Blocks = append(s.Blocks, Block{Type: "hologram"})
		d.Slides = append(d.Slides, s)
	}
	Normalize(&d)

	if len(d.Slides) != MaxSlides || d.TotalSlides != MaxSlides {
		t.Fatalf("slides not clamped: %d/%d", len(d.Slides), d.TotalSlides)
	}
	seen := map[string]bool{}
	for _, s := range d.Slides {
		if len(s.Blocks) > MaxBlocksPerSlide {
			t.Fatalf("blocks not clamped: %d", len(s.Blocks))
		}
		for _, b := range s.Blocks {
			if b.Type == "hologram" {
				t.Fatal("unknown kind survived normalize")
			}
			if b.ID == "" {
				t.Fatal("block left without id")
			}
			if seen[b.ID] {
				t.Fatalf("duplicate block id %q", b.ID)
			}
			seen[b.ID] = true
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	d := &Deck{
		Title: "Original",
		Slides: []Slide{{
			Title:  "Facts",
			Blocks: []Block{{ID: "t1", Type: KindText, Text: &TextData{Points: []string{"a", "b"}}}},
		}},
	}
	c := d.Clone()
	c.Slides[0].Title = "Changed"
	c.Slides[0].Blocks[0].Text.Points[0] = "z"

	if d.Slides[0].Title != "Facts" {
		t.Fatal("clone shares slide headers")
	}
	if d.Slides[0].Blocks[0].Text.Points[0] != "a" {
		t.Fatal("clone shares block payload slices")
	}
}
