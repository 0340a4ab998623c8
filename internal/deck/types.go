// Package deck defines the block grammar for Midnight Court slide decks:
// the Deck/Slide/Block data model, the ten block kinds and their payloads,
// and the validation and normalization rules every generated deck must pass.
package deck

import (
	"encoding/json"
	"fmt"
	"time"
)

// BlockKind discriminates the tagged Block variant.
type BlockKind string

const (
	KindText          BlockKind = "text"
	KindParagraph     BlockKind = "paragraph"
	KindQuote         BlockKind = "quote"
	KindCallout       BlockKind = "callout"
	KindTimeline      BlockKind = "timeline"
	KindEvidence      BlockKind = "evidence"
	KindTwoColumn     BlockKind = "twoColumn"
	KindSectionHeader BlockKind = "sectionHeader"
	KindDivider       BlockKind = "divider"
	KindImage         BlockKind = "image"
)

// Kinds lists every block kind in declaration order.
func Kinds() []BlockKind {
	return []BlockKind{
		KindText, KindParagraph, KindQuote, KindCallout, KindTimeline,
		KindEvidence, KindTwoColumn, KindSectionHeader, KindDivider, KindImage,
	}
}

// CalloutVariant selects the callout icon/border/background triple.
type CalloutVariant string

const (
	CalloutInfo     CalloutVariant = "info"
	CalloutWarning  CalloutVariant = "warning"
	CalloutCritical CalloutVariant = "critical"
)

// DividerStyle selects one of the preset divider renderings.
type DividerStyle string

const (
	DividerSolid    DividerStyle = "solid"
	DividerDotted   DividerStyle = "dotted"
	DividerGradient DividerStyle = "gradient"
)

// ImageLayout positions an image block within a slide.
type ImageLayout string

const (
	LayoutCenter     ImageLayout = "center"
	LayoutFloatLeft  ImageLayout = "floatLeft"
	LayoutFloatRight ImageLayout = "floatRight"
)

// ImageSize selects the rendered width of an image block.
type ImageSize string

const (
	SizeSmall  ImageSize = "small"
	SizeMedium ImageSize = "medium"
	SizeLarge  ImageSize = "large"
)

type TextData struct {
	Points []string `json:"points"`
}

type ParagraphData struct {
	Text string `json:"text"`
}

type QuoteData struct {
	Quote    string `json:"quote"`
	Citation string `json:"citation,omitempty"`
}

type CalloutData struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Variant     CalloutVariant `json:"variant"`
}

type TimelineEvent struct {
	Date  string `json:"date"`
	Event string `json:"event"`
}

type TimelineData struct {
	Events []TimelineEvent `json:"events"`
}

type EvidenceData struct {
	EvidenceName string `json:"evidenceName"`
	Summary      string `json:"summary"`
	Citation     string `json:"citation,omitempty"`
}

type TwoColumnData struct {
	LeftTitle   string   `json:"leftTitle"`
	RightTitle  string   `json:"rightTitle"`
	LeftPoints  []string `json:"leftPoints"`
	RightPoints []string `json:"rightPoints"`
}

type SectionHeaderData struct {
	Title string `json:"title"`
}

type DividerData struct {
	Style DividerStyle `json:"style"`
}

type ImageData struct {
	URI     string      `json:"uri"`
	Caption string      `json:"caption,omitempty"`
	Layout  ImageLayout `json:"layout"`
	Size    ImageSize   `json:"size"`
}

// Block is the smallest addressable content unit inside a slide. Exactly one
// payload pointer is set, matching Type. The wire form is {id, type, data}.
type Block struct {
	ID   string
	Type BlockKind

	Text          *TextData
	Paragraph     *ParagraphData
	Quote         *QuoteData
	Callout       *CalloutData
	Timeline      *TimelineData
	Evidence      *EvidenceData
	TwoColumn     *TwoColumnData
	SectionHeader *SectionHeaderData
	Divider       *DividerData
	Image         *ImageData
}

type blockEnvelope struct {
	ID   string          `json:"id,omitempty"`
	Type BlockKind       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Payload returns the kind-specific data record, or nil when the block
// carries no payload for its declared kind.
func (b *Block) Payload() any {
	switch b.Type {
	case KindText:
		if b.Text != nil {
			return b.Text
		}
	case KindParagraph:
		if b.Paragraph != nil {
			return b.Paragraph
		}
	case KindQuote:
		if b.Quote != nil {
			return b.Quote
		}
	case KindCallout:
		if b.Callout != nil {
			return b.Callout
		}
	case KindTimeline:
		if b.Timeline != nil {
			return b.Timeline
		}
	case KindEvidence:
		if b.Evidence != nil {
			return b.Evidence
		}
	case KindTwoColumn:
		if b.TwoColumn != nil {
			return b.TwoColumn
		}
	case KindSectionHeader:
		if b.SectionHeader != nil {
			return b.SectionHeader
		}
	case KindDivider:
		if b.Divider != nil {
			return b.Divider
		}
	case KindImage:
		if b.Image != nil {
			return b.Image
		}
	}
	return nil
}

func (b Block) MarshalJSON() ([]byte, error) {
	payload := b.Payload()
	if payload == nil {
		payload = map[string]any{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(blockEnvelope{ID: b.ID, Type: b.Type, Data: data})
}

func (b *Block) UnmarshalJSON(raw []byte) error {
	var env blockEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return err
	}
	*b = Block{ID: env.ID, Type: env.Type}
	data := env.Data
	if len(data) == 0 {
		data = []byte("{}")
	}
	var dst any
	switch env.Type {
	case KindText:
		b.Text = &TextData{}
		dst = b.Text
	case KindParagraph:
		b.Paragraph = &ParagraphData{}
		dst = b.Paragraph
	case KindQuote:
		b.Quote = &QuoteData{}
		dst = b.Quote
	case KindCallout:
		b.Callout = &CalloutData{}
		dst = b.Callout
	case KindTimeline:
		b.Timeline = &TimelineData{}
		dst = b.Timeline
	case KindEvidence:
		b.Evidence = &EvidenceData{}
		dst = b.Evidence
	case KindTwoColumn:
		b.TwoColumn = &TwoColumnData{}
		dst = b.TwoColumn
	case KindSectionHeader:
		b.SectionHeader = &SectionHeaderData{}
		dst = b.SectionHeader
	case KindDivider:
		b.Divider = &DividerData{}
		dst = b.Divider
	case KindImage:
		b.Image = &ImageData{}
		dst = b.Image
	default:
		// Unknown kinds survive unmarshal with a bare envelope;
		// Validate rejects them, Normalize drops them.
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("deck: block %q data: %w", env.Type, err)
	}
	return nil
}

// Slide is one page of a deck. Modified/ModifiedAt are transient refinement
// markers carried on the wire with underscore-prefixed keys.
type Slide struct {
	Title           string     `json:"title"`
	Subtitle        string     `json:"subtitle,omitempty"`
	Blocks          []Block    `json:"blocks"`
	Image           string     `json:"image,omitempty"`
	SuggestedImages []string   `json:"suggestedImages,omitempty"`
	Modified        bool       `json:"_modified,omitempty"`
	ModifiedAt      *time.Time `json:"_modifiedAt,omitempty"`
}

// RefinementRecord is one append-only entry in a deck's refinement history.
type RefinementRecord struct {
	ID              string    `json:"id,omitempty"`
	RefinedAt       time.Time `json:"refinedAt"`
	Instructions    string    `json:"instructions"`
	Action          string    `json:"action"`
	TargetSlides    []int     `json:"targetSlides"`
	PreservedSlides []int     `json:"preservedSlides"`
	ChangesCount    int       `json:"changesCount"`
}

// Deck is an ordered sequence of slides plus metadata.
type Deck struct {
	Title             string             `json:"title"`
	TotalSlides       int                `json:"totalSlides"`
	Slides            []Slide            `json:"slides"`
	RefinementHistory []RefinementRecord `json:"refinementHistory,omitempty"`
	GeneratedAt       *time.Time         `json:"generatedAt,omitempty"`
	LastModified      *time.Time         `json:"lastModified,omitempty"`
}
