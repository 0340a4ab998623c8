package deck

import (
	"midnightcourt/internal/util/uid"
)

// Normalize coerces a parsed LLM deck toward the grammar without failing:
// slide and block counts are clamped, unknown-kind blocks are dropped,
// missing block IDs are assigned, and TotalSlides is recomputed.
// Validate still runs afterwards; Normalize only fixes what can be fixed
// mechanically.
func Normalize(d *Deck) {
	if d == nil {
		return
	}
	if len(d.Slides) > MaxSlides {
		d.Slides = d.Slides[:MaxSlides]
	}

	var existing []string
	for _, s := range d.Slides {
		for _, b := range s.Blocks {
			if b.ID != "" {
				existing = append(existing, b.ID)
			}
		}
	}
	gen := uid.NewGenerator(existing...)

	for i := range d.Slides {
		s := &d.Slides[i]
		if len(s.Blocks) > MaxBlocksPerSlide {
			s.Blocks = s.Blocks[:MaxBlocksPerSlide]
		}
		kept := s.Blocks[:0]
		for _, b := range s.Blocks {
			if b.Payload() == nil {
				continue
			}
			if b.ID == "" {
				b.ID = gen.Next(string(b.Type))
			}
			kept = append(kept, b)
		}
		s.Blocks = kept
	}
	d.TotalSlides = len(d.Slides)
}
