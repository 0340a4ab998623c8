package refine

import (
	"fmt"
	"strings"

	"midnightcourt/internal/deck"
	"midnightcourt/internal/markdown"
)

// Severity grades how much a single change alters the deck.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityMajor    Severity = "major"
)

// Change is one entry in the diff between two deck versions.
type Change struct {
	Type        string   `json:"type"`
	SlideIndex  int      `json:"slideIndex,omitempty"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Percent     int      `json:"percent,omitempty"`
}

// Diff compares two versions of a deck. Per-slide changes are reported only
// for slides the refinement stamped as modified; slide additions and
// removals are appended at the tail.
func Diff(original, refined *deck.Deck) []Change {
	var changes []Change

	if len(original.Slides) != len(refined.Slides) {
		changes = append(changes, Change{
			Type:        "slide_count",
			Description: fmt.Sprintf("slide count changed from %d to %d", len(original.Slides), len(refined.Slides)),
			Severity:    SeverityMajor,
		})
	}

	n := len(original.Slides)
	if len(refined.Slides) < n {
		n = len(refined.Slides)
	}
	for i := 0; i < n; i++ {
		o, r := &original.Slides[i], &refined.Slides[i]
		if !r.Modified {
			continue
		}
		if o.Title != r.Title {
			changes = append(changes, Change{
				Type:        "title",
				SlideIndex:  i,
				Description: fmt.Sprintf("slide %d title changed from %q to %q", i+1, o.Title, r.Title),
				Severity:    SeverityModerate,
			})
		}
		if len(o.Blocks) != len(r.Blocks) {
			changes = append(changes, Change{
				Type:        "block_count",
				SlideIndex:  i,
				Description: fmt.Sprintf("slide %d block count changed from %d to %d", i+1, len(o.Blocks), len(r.Blocks)),
				Severity:    SeverityModerate,
			})
		}
		if pct := contentChangePercent(slideText(o), slideText(r)); pct > 0 {
			sev := SeverityModerate
			if pct >= 50 {
				sev = SeverityMajor
			}
			changes = append(changes, Change{
				Type:        "content",
				SlideIndex:  i,
				Description: fmt.Sprintf("slide %d content changed by %d%%", i+1, pct),
				Severity:    sev,
				Percent:     pct,
			})
		}
		if imagesChanged(o, r) {
			changes = append(changes, Change{
				Type:        "images",
				SlideIndex:  i,
				Description: fmt.Sprintf("slide %d images changed", i+1),
				Severity:    SeverityMinor,
			})
		}
	}

	for i := len(original.Slides); i < len(refined.Slides); i++ {
		changes = append(changes, Change{
			Type:        "slide_added",
			SlideIndex:  i,
			Description: fmt.Sprintf("slide %d added: %q", i+1, refined.Slides[i].Title),
			Severity:    SeverityModerate,
		})
	}
	for i := len(refined.Slides); i < len(original.Slides); i++ {
		changes = append(changes, Change{
			Type:        "slide_removed",
			SlideIndex:  i,
			Description: fmt.Sprintf("slide %d removed: %q", i+1, original.Slides[i].Title),
			Severity:    SeverityMajor,
		})
	}
	return changes
}

// contentChangePercent compares two strings position by position and returns
// the changed share as an integer percentage in [0, 100]. The comparison is
// positional, not an edit distance, so an insertion near the front counts
// every shifted character as changed.
func contentChangePercent(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n := len(ra)
	if len(rb) > n {
		n = len(rb)
	}
	if n == 0 {
		return 0
	}
	min := len(ra)
	if len(rb) < min {
		min = len(rb)
	}
	same := 0
	for i := 0; i < min; i++ {
		if ra[i] == rb[i] {
			same++
		}
	}
	return (n - same) * 100 / n
}

// slideText flattens a slide's readable text, markers stripped, for the
// positional content diff.
func slideText(s *deck.Slide) string {
	var b strings.Builder
	b.WriteString(s.Title)
	b.WriteString(s.Subtitle)
	for i := range s.Blocks {
		b.WriteString(blockText(&s.Blocks[i]))
	}
	return markdown.Strip(b.String())
}

func blockText(b *deck.Block) string {
	switch {
	case b.Text != nil:
		return strings.Join(b.Text.Points, " ")
	case b.Paragraph != nil:
		return b.Paragraph.Text
	case b.Quote != nil:
		return b.Quote.Quote + " " + b.Quote.Citation
	case b.Callout != nil:
		return b.Callout.Title + " " + b.Callout.Description
	case b.Timeline != nil:
		var sb strings.Builder
		for _, e := range b.Timeline.Events {
			sb.WriteString(e.Date)
			sb.WriteString(" ")
			sb.WriteString(e.Event)
			sb.WriteString(" ")
		}
		return sb.String()
	case b.Evidence != nil:
		return b.Evidence.EvidenceName + " " + b.Evidence.Summary + " " + b.Evidence.Citation
	case b.TwoColumn != nil:
		return b.TwoColumn.LeftTitle + " " + strings.Join(b.TwoColumn.LeftPoints, " ") +
			" " + b.TwoColumn.RightTitle + " " + strings.Join(b.TwoColumn.RightPoints, " ")
	case b.SectionHeader != nil:
		return b.SectionHeader.Title
	case b.Image != nil:
		return b.Image.Caption
	}
	return ""
}

func imagesChanged(o, r *deck.Slide) bool {
	if o.Image != r.Image {
		return true
	}
	oi, ri := imageURIs(o), imageURIs(r)
	if len(oi) != len(ri) {
		return true
	}
	for i := range oi {
		if oi[i] != ri[i] {
			return true
		}
	}
	return false
}

func imageURIs(s *deck.Slide) []string {
	var uris []string
	for i := range s.Blocks {
		if img := s.Blocks[i].Image; img != nil {
			uris = append(uris, img.URI)
		}
	}
	return uris
}
