package render

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"midnightcourt/internal/deck"
	"midnightcourt/internal/markdown"
)

// Renderer composes slide fragments into a paged HTML document and inlines
// every image as a data URI. One bad block or one failed image fetch never
// fails the whole render; schema-invalid decks do.
type Renderer struct {
	Fetcher Fetcher
	Log     *zap.Logger
	// Now is injectable for deterministic footers in tests.
	Now func() time.Time

	cache *lru.Cache[string, string]
}

func NewRenderer(fetcher Fetcher, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{
		Fetcher: fetcher,
		Log:     log,
		cache:   newImageCache(),
	}
}

const pageCSS = `@page { size: A4 landscape; margin: 0 }
* { box-sizing: border-box }
body { margin: 0; font-family: Georgia, 'Times New Roman', serif; color: #1A1A2E }
.slide { width: 297mm; height: 210mm; padding: 18mm 22mm; page-break-after: always; position: relative; background: #FDFCF8; overflow: hidden }
.slide-number { position: absolute; top: 10mm; right: 12mm; font-size: 12px; color: #999 }
.slide h1 { font-size: 34px; margin: 0 0 4px 0 }
.slide h2 { font-size: 20px; font-weight: 400; color: #555; margin: 0 0 14px 0 }
.rule { height: 3px; width: 64px; background: ` + markdown.ColorGold + `; margin: 6px 0 16px 0 }
.point { margin: 6px 0; padding-left: 14px; position: relative }
.point::before { content: '•'; position: absolute; left: 0; color: ` + markdown.ColorGold + ` }
.slide-footer { position: absolute; bottom: 8mm; left: 22mm; right: 22mm; display: flex; justify-content: space-between; font-size: 11px; color: #999 }
.image-row { display: flex; gap: 16px; justify-content: center; margin: 10px 0 }
`

// RenderDeck produces a single self-contained UTF-8 HTML document with one
// .slide per slide. Cancellation is observed between slides and between
// image fetches.
func (r *Renderer) RenderDeck(ctx context.Context, d *deck.Deck) (string, error) {
	if err := deck.Validate(d, deck.ModeTemplate); err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<title>" + html.EscapeString(markdown.Strip(d.Title)) + "</title>\n")
	b.WriteString("<style>\n" + pageCSS + "</style>\n</head>\n<body>\n")

	for i := range d.Slides {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("render: cancelled at slide %d: %w", i, err)
		}
		slide, err := r.renderSlide(ctx, &d.Slides[i], i+1, len(d.Slides))
		if err != nil {
			return "", err
		}
		b.WriteString(slide)
	}

	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}

func (r *Renderer) renderSlide(ctx context.Context, s *deck.Slide, number, total int) (string, error) {
	var b strings.Builder
	b.WriteString(`<div class="slide">`)
	fmt.Fprintf(&b, `<div class="slide-number">%d / %d</div>`, number, total)

	if s.Image != "" {
		uri, err := r.dataURI(ctx, s.Image)
		if err != nil {
			if ctx.Err() != nil {
				return "", fmt.Errorf("render: cancelled fetching slide image: %w", ctx.Err())
			}
			// Non-fatal: the slide just loses its hero image.
			r.Log.Error("slide image fetch failed",
				zap.Int("slide", number-1),
				zap.String("url", s.Image),
				zap.Error(err))
		} else if uri != "" {
			fmt.Fprintf(&b, `<img class="slide-image" src="%s" style="width:100%%;max-height:60mm;object-fit:cover;border-radius:8px">`, uri)
		}
	}

	b.WriteString(`<h1>` + markdown.ToHTML(s.Title) + `</h1>`)
	b.WriteString(`<div class="rule"></div>`)
	if strings.TrimSpace(s.Subtitle) != "" {
		b.WriteString(`<h2>` + markdown.ToHTML(s.Subtitle) + `</h2>`)
	}

	var frags []string
	for _, blk := range s.Blocks {
		if frag := RenderBlock(blk); frag != "" {
			frags = append(frags, frag)
		}
	}
	body := groupFloatMarkers(strings.Join(frags, "\n"))
	body, err := r.inlineImages(ctx, body)
	if err != nil {
		return "", err
	}
	b.WriteString(body)

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	fmt.Fprintf(&b, `<div class="slide-footer"><span>Midnight Court</span><span>%s</span></div>`,
		now().Format("2 January 2006"))
	b.WriteString(`</div>` + "\n")
	return b.String(), nil
}

var (
	markerRe    = regexp.MustCompile(`<div class="image-marker" style="display:none" data-layout="(floatLeft|floatRight)" data-size="([a-z]+)" data-uri="([^"]*)" data-caption="([^"]*)"></div>`)
	markerRunRe = regexp.MustCompile(`(?:<div class="image-marker"[^>]*></div>\s*)+`)
	imgSrcRe    = regexp.MustCompile(`<img([^>]*) src="(https?://[^"]*)"([^>]*)>`)
)

// groupFloatMarkers rewrites runs of adjacent floatLeft/floatRight markers:
// pairs become a flex row, an unpaired trailing marker becomes a centered
// image at its declared size.
func groupFloatMarkers(body string) string {
	return markerRunRe.ReplaceAllStringFunc(body, func(run string) string {
		matches := markerRe.FindAllStringSubmatch(run, -1)
		if len(matches) == 0 {
			// Not a recognized marker shape; leave it hidden.
			return run
		}
		var b strings.Builder
		for len(matches) >= 2 {
			left, right := matches[0], matches[1]
			matches = matches[2:]
			b.WriteString(`<div class="image-row">`)
			b.WriteString(floatImg(left))
			b.WriteString(floatImg(right))
			b.WriteString(`</div>`)
		}
		for _, m := range matches {
			b.WriteString(renderCenteredImage(html.UnescapeString(m[3]), html.UnescapeString(m[4]), deck.ImageSize(m[2])))
		}
		return b.String()
	})
}

func floatImg(m []string) string {
	uri, size, caption := m[3], deck.ImageSize(m[2]), m[4]
	var b strings.Builder
	b.WriteString(`<div class="image-cell" style="text-align:center">`)
	fmt.Fprintf(&b, `<img src="%s" style="width:%dpx;max-width:100%%;border-radius:8px">`, uri, imageWidthPx(size))
	if strings.TrimSpace(caption) != "" {
		b.WriteString(`<div class="image-caption" style="font-size:12px;color:#777">` + caption + `</div>`)
	}
	b.WriteString(`</div>`)
	return b.String()
}

// inlineImages replaces every remaining external <img> src with a data URI.
// A failed fetch drops that tag and logs; it never fails the slide.
func (r *Renderer) inlineImages(ctx context.Context, body string) (string, error) {
	var fetchErr error
	out := imgSrcRe.ReplaceAllStringFunc(body, func(tag string) string {
		if fetchErr != nil {
			return tag
		}
		if err := ctx.Err(); err != nil {
			fetchErr = fmt.Errorf("render: cancelled inlining images: %w", err)
			return tag
		}
		m := imgSrcRe.FindStringSubmatch(tag)
		uri, err := r.dataURI(ctx, html.UnescapeString(m[2]))
		if err != nil {
			r.Log.Error("block image fetch failed", zap.String("url", m[2]), zap.Error(err))
			return ""
		}
		return `<img` + m[1] + ` src="` + uri + `"` + m[3] + `>`
	})
	if fetchErr != nil {
		return "", fetchErr
	}
	return out, nil
}
