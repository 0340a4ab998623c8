// Package uid generates short stable identifiers shaped "<slug>-<hash>",
// with "-N" suffixes on collision.
package uid

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"
)

// Generator hands out unique IDs and remembers everything it has issued,
// including IDs reserved up front.
type Generator struct {
	used    map[string]struct{}
	counter map[string]int
	seq     int
}

// NewGenerator creates a generator with optional pre-reserved IDs.
func NewGenerator(existing ...string) *Generator {
	g := &Generator{
		used:    make(map[string]struct{}, len(existing)+8),
		counter: make(map[string]int, len(existing)+8),
	}
	for _, id := range existing {
		id = strings.TrimSpace(id)
		if id != "" {
			g.used[id] = struct{}{}
		}
	}
	return g
}

// Next returns a unique ID derived from name. Each call salts the hash with
// an issue sequence number; colliding with a reserved ID appends an
// increasing numeric suffix.
func (g *Generator) Next(name string) string {
	if g == nil {
		g = NewGenerator()
	}
	g.seq++
	base := baseID(name, g.seq)
	if _, taken := g.used[base]; !taken {
		g.used[base] = struct{}{}
		g.counter[base] = 1
		return base
	}
	n := g.counter[base]
	if n < 1 {
		n = 1
	}
	for {
		n++
		candidate := fmt.Sprintf("%s-%d", base, n)
		if _, taken := g.used[candidate]; taken {
			continue
		}
		g.used[candidate] = struct{}{}
		g.counter[base] = n
		return candidate
	}
}

func baseID(name string, seq int) string {
	slug := slugify(name)
	if slug == "" {
		slug = "block"
	}
	h := fnv.New64a()
	_, _ = fmt.Fprintf(h, "%s#%d", name, seq)
	return fmt.Sprintf("%s-%08x", slug, uint32(h.Sum64()))
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	dash := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
		} else if !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
