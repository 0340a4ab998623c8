package deck

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MaxSlides bounds generated decks; templates may exceed it.
	MaxSlides = 8
	// MaxBlocksPerSlide bounds generated slides; templates may exceed it.
	MaxBlocksPerSlide = 5
)

// ErrInvalidDeck is wrapped by every validation failure.
var ErrInvalidDeck = errors.New("deck: invalid deck")

// ValidationError aggregates every structural issue found in one pass.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "deck: invalid deck: " + strings.Join(e.Issues, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidDeck }

// Mode relaxes count bounds for pre-authored templates.
type Mode int

const (
	ModeGenerated Mode = iota
	ModeTemplate
)

// Validate re-checks a deck against the block grammar. It rejects unknown
// kinds, missing required fields, out-of-range counts, and enum values
// outside their sets. Providers drift, so this runs on every LLM response
// even though the same schema constrained the call.
func Validate(d *Deck, mode Mode) error {
	if d == nil {
		return &ValidationError{Issues: []string{"deck is nil"}}
	}
	var issues []string
	add := func(format string, args ...any) {
		issues = append(issues, fmt.Sprintf(format, args...))
	}

	if len(d.Slides) == 0 {
		add("deck has no slides")
	}
	if mode == ModeGenerated && len(d.Slides) > MaxSlides {
		add("deck has %d slides, maximum is %d", len(d.Slides), MaxSlides)
	}
	if d.TotalSlides != 0 && d.TotalSlides != len(d.Slides) {
		add("totalSlides %d does not match %d slides", d.TotalSlides, len(d.Slides))
	}

	for i, s := range d.Slides {
		if strings.TrimSpace(s.Title) == "" {
			add("slide %d: empty title", i)
		}
		if mode == ModeGenerated && len(s.Blocks) > MaxBlocksPerSlide {
			add("slide %d: %d blocks, maximum is %d", i, len(s.Blocks), MaxBlocksPerSlide)
		}
		for j, b := range s.Blocks {
			if err := validateBlock(&b); err != nil {
				add("slide %d block %d: %v", i, j, err)
			}
		}
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

func validateBlock(b *Block) error {
	switch b.Type {
	case KindText:
		if b.Text == nil {
			return errors.New("text block missing data")
		}
	case KindParagraph:
		if b.Paragraph == nil {
			return errors.New("paragraph block missing data")
		}
	case KindQuote:
		if b.Quote == nil {
			return errors.New("quote block missing data")
		}
	case KindCallout:
		if b.Callout == nil {
			return errors.New("callout block missing data")
		}
		switch b.Callout.Variant {
		case CalloutInfo, CalloutWarning, CalloutCritical:
		default:
			return fmt.Errorf("callout variant %q not in {info, warning, critical}", b.Callout.Variant)
		}
	case KindTimeline:
		if b.Timeline == nil {
			return errors.New("timeline block missing data")
		}
	case KindEvidence:
		if b.Evidence == nil {
			return errors.New("evidence block missing data")
		}
	case KindTwoColumn:
		if b.TwoColumn == nil {
			return errors.New("twoColumn block missing data")
		}
	case KindSectionHeader:
		if b.SectionHeader == nil {
			return errors.New("sectionHeader block missing data")
		}
		if strings.TrimSpace(b.SectionHeader.Title) == "" {
			return errors.New("sectionHeader requires a title")
		}
	case KindDivider:
		if b.Divider == nil {
			return errors.New("divider block missing data")
		}
		switch b.Divider.Style {
		case DividerSolid, DividerDotted, DividerGradient, "":
		default:
			return fmt.Errorf("divider style %q not in {solid, dotted, gradient}", b.Divider.Style)
		}
	case KindImage:
		if b.Image == nil {
			return errors.New("image block missing data")
		}
		if strings.TrimSpace(b.Image.URI) == "" {
			return errors.New("image requires a uri")
		}
		switch b.Image.Layout {
		case LayoutCenter, LayoutFloatLeft, LayoutFloatRight, "":
		default:
			return fmt.Errorf("image layout %q not in {center, floatLeft, floatRight}", b.Image.Layout)
		}
		switch b.Image.Size {
		case SizeSmall, SizeMedium, SizeLarge, "":
		default:
			return fmt.Errorf("image size %q not in {small, medium, large}", b.Image.Size)
		}
	default:
		return fmt.Errorf("unknown block type %q", b.Type)
	}
	return nil
}
