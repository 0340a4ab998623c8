// Package render turns validated decks into deterministic HTML: RenderBlock
// maps one block to a fragment, Renderer composes slides into a paged
// A4-landscape document ready for a PDF printer.
package render

import (
	"fmt"
	"html"
	"strings"

	"midnightcourt/internal/deck"
	"midnightcourt/internal/markdown"
)

const (
	gold = markdown.ColorGold
	red  = markdown.ColorRed
	blue = markdown.ColorBlue
)

// imageWidthPx maps the image size enum to a rendered width.
func imageWidthPx(size deck.ImageSize) int {
	switch size {
	case deck.SizeSmall:
		return 220
	case deck.SizeLarge:
		return 480
	default:
		return 340
	}
}

// RenderBlock maps a block to an HTML fragment. It is pure: the same block
// always yields the same string, an empty or invalid block yields "".
// Every text field is treated as inline markdown, never raw HTML.
func RenderBlock(b deck.Block) string {
	switch b.Type {
	case deck.KindText:
		return renderText(b.Text)
	case deck.KindParagraph:
		return renderParagraph(b.Paragraph)
	case deck.KindQuote:
		return renderQuote(b.Quote)
	case deck.KindCallout:
		return renderCallout(b.Callout)
	case deck.KindTimeline:
		return renderTimeline(b.Timeline)
	case deck.KindEvidence:
		return renderEvidence(b.Evidence)
	case deck.KindTwoColumn:
		return renderTwoColumn(b.TwoColumn)
	case deck.KindSectionHeader:
		return renderSectionHeader(b.SectionHeader)
	case deck.KindDivider:
		return renderDivider(b.Divider)
	case deck.KindImage:
		return renderImage(b.Image)
	}
	return ""
}

func renderText(d *deck.TextData) string {
	if d == nil {
		return ""
	}
	var points []string
	for _, p := range d.Points {
		if strings.TrimSpace(p) == "" {
			continue
		}
		points = append(points, `<div class="point">`+markdown.ToHTML(p)+`</div>`)
	}
	if len(points) == 0 {
		return ""
	}
	return `<div class="points">` + strings.Join(points, "") + `</div>`
}

func renderParagraph(d *deck.ParagraphData) string {
	if d == nil || strings.TrimSpace(d.Text) == "" {
		return ""
	}
	return `<p class="paragraph">` + markdown.ToHTML(d.Text) + `</p>`
}

func renderQuote(d *deck.QuoteData) string {
	if d == nil || strings.TrimSpace(d.Quote) == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<div class="quote" style="border-left:3px solid ` + gold + `;padding:12px 18px;font-style:italic">`)
	b.WriteString(`<span class="quote-mark">&#8220;</span>`)
	b.WriteString(markdown.ToHTML(d.Quote))
	b.WriteString(`<span class="quote-mark">&#8221;</span>`)
	if strings.TrimSpace(d.Citation) != "" {
		b.WriteString(`<div class="quote-citation" style="font-style:normal;font-size:12px;color:#777;margin-top:6px">&mdash; ` + markdown.ToHTML(d.Citation) + `</div>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func renderCallout(d *deck.CalloutData) string {
	if d == nil {
		return ""
	}
	if strings.TrimSpace(d.Title) == "" && strings.TrimSpace(d.Description) == "" {
		return ""
	}
	icon, border, bg := "&#8505;", blue, "#EEF2FB"
	switch d.Variant {
	case deck.CalloutWarning:
		icon, border, bg = "&#9888;", gold, "#FBF6E9"
	case deck.CalloutCritical:
		icon, border, bg = "&#9940;", red, "#FBEDED"
	}
	var b strings.Builder
	fmt.Fprintf(&b, `<div class="callout" style="border:1px solid %s;background:%s;border-radius:8px;padding:12px 16px">`, border, bg)
	fmt.Fprintf(&b, `<span class="callout-icon">%s</span>`, icon)
	if strings.TrimSpace(d.Title) != "" {
		b.WriteString(`<div class="callout-title" style="font-weight:700">` + markdown.ToHTML(d.Title) + `</div>`)
	}
	if strings.TrimSpace(d.Description) != "" {
		b.WriteString(`<div class="callout-desc">` + markdown.ToHTML(d.Description) + `</div>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func renderTimeline(d *deck.TimelineData) string {
	if d == nil {
		return ""
	}
	var events []deck.TimelineEvent
	for _, ev := range d.Events {
		if strings.TrimSpace(ev.Date) == "" && strings.TrimSpace(ev.Event) == "" {
			continue
		}
		events = append(events, ev)
	}
	if len(events) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<div class="timeline">`)
	for i, ev := range events {
		date, text := ev.Date, ev.Event
		if strings.TrimSpace(date) == "" {
			date = "No date"
		}
		if strings.TrimSpace(text) == "" {
			text = "No event"
		}
		b.WriteString(`<div class="timeline-row">`)
		b.WriteString(`<span class="timeline-dot" style="background:` + gold + `"></span>`)
		b.WriteString(`<span class="timeline-date" style="font-weight:600">` + markdown.ToHTML(date) + `</span>`)
		b.WriteString(`<span class="timeline-event">` + markdown.ToHTML(text) + `</span>`)
		b.WriteString(`</div>`)
		if i < len(events)-1 {
			b.WriteString(`<div class="timeline-connector" style="border-left:2px solid ` + gold + `;height:14px;margin-left:4px"></div>`)
		}
	}
	b.WriteString(`</div>`)
	return b.String()
}

func renderEvidence(d *deck.EvidenceData) string {
	if d == nil {
		return ""
	}
	if strings.TrimSpace(d.EvidenceName) == "" && strings.TrimSpace(d.Summary) == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<div class="evidence" style="border:1px solid #ddd;border-radius:8px;padding:10px 14px">`)
	if strings.TrimSpace(d.EvidenceName) != "" {
		b.WriteString(`<div class="evidence-name" style="font-weight:700">` + markdown.ToHTML(d.EvidenceName) + `</div>`)
	}
	if strings.TrimSpace(d.Summary) != "" {
		b.WriteString(`<div class="evidence-summary">` + markdown.ToHTML(d.Summary) + `</div>`)
	}
	if strings.TrimSpace(d.Citation) != "" {
		b.WriteString(`<div class="evidence-citation" style="font-size:12px;color:#777">` + markdown.ToHTML(d.Citation) + `</div>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func renderTwoColumn(d *deck.TwoColumnData) string {
	if d == nil {
		return ""
	}
	left := nonEmpty(d.LeftPoints)
	right := nonEmpty(d.RightPoints)
	if len(left) == 0 && len(right) == 0 {
		return ""
	}
	leftTitle := d.LeftTitle
	if strings.TrimSpace(leftTitle) == "" {
		leftTitle = "Arguments"
	}
	rightTitle := d.RightTitle
	if strings.TrimSpace(rightTitle) == "" {
		rightTitle = "Counter Arguments"
	}
	var b strings.Builder
	b.WriteString(`<div class="two-column" style="display:flex;gap:24px">`)
	b.WriteString(renderColumn(leftTitle, left))
	b.WriteString(renderColumn(rightTitle, right))
	b.WriteString(`</div>`)
	return b.String()
}

func renderColumn(title string, points []string) string {
	var b strings.Builder
	b.WriteString(`<div class="column" style="flex:1">`)
	b.WriteString(`<div class="column-title" style="font-weight:700;color:` + gold + `">` + markdown.ToHTML(title) + `</div>`)
	for _, p := range points {
		b.WriteString(`<div class="point">` + markdown.ToHTML(p) + `</div>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func nonEmpty(points []string) []string {
	var out []string
	for _, p := range points {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func renderSectionHeader(d *deck.SectionHeaderData) string {
	if d == nil || strings.TrimSpace(d.Title) == "" {
		return ""
	}
	return `<div class="section-header" style="text-align:center;font-size:26px;font-weight:700">` + markdown.ToHTML(d.Title) + `</div>`
}

// gradientOpacities is the fixed decreasing-then-increasing ramp of the
// five-bar gradient divider.
var gradientOpacities = []string{"0.9", "0.5", "0.2", "0.5", "0.9"}

func renderDivider(d *deck.DividerData) string {
	if d == nil {
		return ""
	}
	switch d.Style {
	case deck.DividerDotted:
		return `<div class="divider" style="border-top:2px dotted ` + gold + `"></div>`
	case deck.DividerGradient:
		var b strings.Builder
		b.WriteString(`<div class="divider divider-gradient">`)
		for _, o := range gradientOpacities {
			fmt.Fprintf(&b, `<div class="divider-bar" style="height:2px;background:%s;opacity:%s"></div>`, gold, o)
		}
		b.WriteString(`</div>`)
		return b.String()
	default:
		// solid, and the fallback for anything unrecognized
		return `<div class="divider" style="height:2px;background:` + gold + `"></div>`
	}
}

func renderImage(d *deck.ImageData) string {
	if d == nil || strings.TrimSpace(d.URI) == "" {
		return ""
	}
	size := d.Size
	if size == "" {
		size = deck.SizeMedium
	}
	switch d.Layout {
	case deck.LayoutFloatLeft, deck.LayoutFloatRight:
		// Hidden marker; the deck renderer groups adjacent floats into rows.
		return fmt.Sprintf(
			`<div class="image-marker" style="display:none" data-layout="%s" data-size="%s" data-uri="%s" data-caption="%s"></div>`,
			d.Layout, size, html.EscapeString(d.URI), html.EscapeString(d.Caption))
	default:
		return renderCenteredImage(d.URI, d.Caption, size)
	}
}

func renderCenteredImage(uri, caption string, size deck.ImageSize) string {
	var b strings.Builder
	b.WriteString(`<div class="image-block" style="text-align:center">`)
	fmt.Fprintf(&b, `<img src="%s" style="width:%dpx;max-width:100%%;border-radius:8px">`, html.EscapeString(uri), imageWidthPx(size))
	if strings.TrimSpace(caption) != "" {
		b.WriteString(`<div class="image-caption" style="font-size:12px;color:#777">` + markdown.ToHTML(caption) + `</div>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}
