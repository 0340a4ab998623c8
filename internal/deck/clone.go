package deck

// Clone returns a deep copy. Refinement merges into a copy so that a failed
// refinement never leaves the caller's deck partially mutated.
func (d *Deck) Clone() *Deck {
	if d == nil {
		return nil
	}
	out := *d
	out.Slides = make([]Slide, len(d.Slides))
	for i := range d.Slides {
		out.Slides[i] = d.Slides[i].Clone()
	}
	if d.RefinementHistory != nil {
		out.RefinementHistory = make([]RefinementRecord, len(d.RefinementHistory))
		for i, r := range d.RefinementHistory {
			out.RefinementHistory[i] = r.clone()
		}
	}
	if d.GeneratedAt != nil {
		t := *d.GeneratedAt
		out.GeneratedAt = &t
	}
	if d.LastModified != nil {
		t := *d.LastModified
		out.LastModified = &t
	}
	return &out
}

// Clone returns a deep copy of the slide.
func (s Slide) Clone() Slide {
	out := s
	out.Blocks = make([]Block, len(s.Blocks))
	for i := range s.Blocks {
		out.Blocks[i] = s.Blocks[i].Clone()
	}
	if s.SuggestedImages != nil {
		out.SuggestedImages = append([]string(nil), s.SuggestedImages...)
	}
	if s.ModifiedAt != nil {
		t := *s.ModifiedAt
		out.ModifiedAt = &t
	}
	return out
}

// Clone returns a deep copy of the block, including its payload.
func (b Block) Clone() Block {
	out := b
	switch {
	case b.Text != nil:
		v := *b.Text
		v.Points = append([]string(nil), b.Text.Points...)
		out.Text = &v
	case b.Paragraph != nil:
		v := *b.Paragraph
		out.Paragraph = &v
	case b.Quote != nil:
		v := *b.Quote
		out.Quote = &v
	case b.Callout != nil:
		v := *b.Callout
		out.Callout = &v
	case b.Timeline != nil:
		v := *b.Timeline
		v.Events = append([]TimelineEvent(nil), b.Timeline.Events...)
		out.Timeline = &v
	case b.Evidence != nil:
		v := *b.Evidence
		out.Evidence = &v
	case b.TwoColumn != nil:
		v := *b.TwoColumn
		v.LeftPoints = append([]string(nil), b.TwoColumn.LeftPoints...)
		v.RightPoints = append([]string(nil), b.TwoColumn.RightPoints...)
		out.TwoColumn = &v
	case b.SectionHeader != nil:
		v := *b.SectionHeader
		out.SectionHeader = &v
	case b.Divider != nil:
		v := *b.Divider
		out.Divider = &v
	case b.Image != nil:
		v := *b.Image
		out.Image = &v
	}
	return out
}

func (r RefinementRecord) clone() RefinementRecord {
	out := r
	out.TargetSlides = append([]int(nil), r.TargetSlides...)
	out.PreservedSlides = append([]int(nil), r.PreservedSlides...)
	return out
}
