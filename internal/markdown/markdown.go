// Package markdown handles the three inline color markers used across every
// deck string field: *gold*, ~red~ and _blue_. Markers are single-character,
// non-greedy, non-nesting delimiter pairs; anything unbalanced renders
// literally. Parse, ToHTML and Strip are pure and never fail.
package markdown

import (
	"html"
	"regexp"
	"sort"
	"strings"
)

// Style classifies one parsed segment.
type Style string

const (
	StylePlain Style = "plain"
	StyleGold  Style = "gold"
	StyleRed   Style = "red"
	StyleBlue  Style = "blue"
)

// Segment is a run of text with a single style.
type Segment struct {
	Text  string
	Style Style
}

// Marker colors, shared with the block renderer.
const (
	ColorGold = "#CBA44A"
	ColorRed  = "#B33A3A"
	ColorBlue = "#3A5FB3"
)

var markers = []struct {
	style Style
	re    *regexp.Regexp
}{
	// Order matters: overlap resolution is first-match-wins in this order.
	{StyleGold, regexp.MustCompile(`\*([^*]+?)\*`)},
	{StyleRed, regexp.MustCompile(`~([^~]+?)~`)},
	{StyleBlue, regexp.MustCompile(`_([^_]+?)_`)},
}

type match struct {
	start, end int // span including delimiters
	inner      string
	style      Style
}

// Parse splits text into styled segments. Empty input yields a single plain
// segment with empty text.
func Parse(text string) []Segment {
	if text == "" {
		return []Segment{{Text: "", Style: StylePlain}}
	}

	var accepted []match
	for _, m := range markers {
		for _, loc := range m.re.FindAllStringSubmatchIndex(text, -1) {
			c := match{start: loc[0], end: loc[1], inner: text[loc[2]:loc[3]], style: m.style}
			if overlapsAny(c, accepted) {
				// A later marker kind crossing an accepted span stays literal.
				continue
			}
			accepted = append(accepted, c)
		}
	}
	sort.Slice(accepted, func(i, j int) bool { return accepted[i].start < accepted[j].start })

	var segs []Segment
	pos := 0
	for _, m := range accepted {
		if m.start > pos {
			segs = append(segs, Segment{Text: text[pos:m.start], Style: StylePlain})
		}
		segs = append(segs, Segment{Text: m.inner, Style: m.style})
		pos = m.end
	}
	if pos < len(text) {
		segs = append(segs, Segment{Text: text[pos:], Style: StylePlain})
	}
	if len(segs) == 0 {
		return []Segment{{Text: text, Style: StylePlain}}
	}
	return segs
}

func overlapsAny(c match, accepted []match) bool {
	for _, a := range accepted {
		if c.start < a.end && a.start < c.end {
			return true
		}
	}
	return false
}

// ToHTML renders markers as colored spans and escapes everything else.
func ToHTML(text string) string {
	segs := Parse(text)
	var b strings.Builder
	for _, s := range segs {
		esc := html.EscapeString(s.Text)
		switch s.Style {
		case StyleGold:
			b.WriteString(`<span style="color:` + ColorGold + `;font-weight:600">` + esc + `</span>`)
		case StyleRed:
			b.WriteString(`<span style="color:` + ColorRed + `;font-weight:600">` + esc + `</span>`)
		case StyleBlue:
			b.WriteString(`<span style="color:` + ColorBlue + `;font-weight:600">` + esc + `</span>`)
		default:
			b.WriteString(esc)
		}
	}
	return b.String()
}

// Strip removes recognized markers and returns plain text.
func Strip(text string) string {
	segs := Parse(text)
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	return b.String()
}
