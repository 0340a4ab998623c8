// Package schema holds the declarative JSON-schema documents used to
// constrain LLM responses. The slide-deck schema is the single wire contract
// shared by generation and refinement; a separate in-process validator
// (internal/deck) re-checks responses because providers drift.
package schema

import "midnightcourt/internal/deck"

// Doc is a JSON Schema document (draft-compatible subset).
type Doc = map[string]any

func obj(props Doc, required ...string) Doc {
	out := Doc{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

func arr(items Doc) Doc { return Doc{"type": "array", "items": items} }

func str() Doc { return Doc{"type": "string"} }

func enum(values ...string) Doc {
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return Doc{"type": "string", "enum": vals}
}

// SlideDeck returns the top-level response schema for deck generation and
// refinement. Per slide it requires title and blocks; each block requires
// {type, data} with type drawn from the block grammar.
func SlideDeck() Doc {
	kinds := make([]string, 0, 10)
	for _, k := range deck.Kinds() {
		kinds = append(kinds, string(k))
	}
	block := obj(Doc{
		"id":   str(),
		"type": enum(kinds...),
		"data": Doc{"type": "object"},
	}, "type", "data")

	slide := obj(Doc{
		"title":           str(),
		"subtitle":        str(),
		"blocks":          arr(block),
		"image":           str(),
		"suggestedImages": arr(str()),
	}, "title", "blocks")

	return obj(Doc{
		"title":       str(),
		"totalSlides": Doc{"type": "integer"},
		"slides":      arr(slide),
	}, "title", "slides")
}

// CitationSearchResults constrains LLM-assisted citation lookups.
func CitationSearchResults() Doc {
	result := obj(Doc{
		"caseName": str(),
		"citation": str(),
		"court":    str(),
		"year":     str(),
		"summary":  str(),
	}, "caseName", "citation")
	return obj(Doc{"results": arr(result)}, "results")
}

// CitationDetails constrains a single-citation detail lookup.
func CitationDetails() Doc {
	return obj(Doc{
		"caseName":  str(),
		"citation":  str(),
		"court":     str(),
		"year":      str(),
		"bench":     str(),
		"holding":   str(),
		"principle": str(),
		"summary":   str(),
	}, "caseName", "citation", "summary")
}

// ImageSearchResults normalizes image-provider responses.
func ImageSearchResults() Doc {
	result := obj(Doc{
		"id":        str(),
		"url":       str(),
		"thumbnail": str(),
		"source":    enum("pexels", "unsplash"),
	}, "id", "url", "source")
	return obj(Doc{"results": arr(result)}, "results")
}
