package generator

import (
	"context"
	"fmt"

	"midnightcourt/internal/llm"
	"midnightcourt/internal/llmclient"
	"midnightcourt/internal/prompt"
	"midnightcourt/internal/schema"
	"midnightcourt/internal/util/jsonutil"
)

// Citation is one LLM-assisted case-law lookup result.
type Citation struct {
	CaseName  string `json:"caseName" prompt_desc:"Full case name as reported."`
	Citation  string `json:"citation" prompt_desc:"Reporter citation, e.g. (2017) 10 SCC 1."`
	Court     string `json:"court,omitempty"`
	Year      string `json:"year,omitempty"`
	Summary   string `json:"summary,omitempty" prompt_desc:"One-sentence holding."`
	Principle string `json:"principle,omitempty"`
}

type citationResults struct {
	Results []Citation `json:"results"`
}

var citationPromptSpec = prompt.ApplyPresets(prompt.StructuredSpec{
	Purpose:      "Find reported case law relevant to the query, for citation on legal slides.",
	OutputFields: prompt.MustFieldsFromStruct(Citation{}),
	Constraints: []string{
		"Return only cases you are confident actually exist; fewer accurate results beat padded lists.",
		"Limit to five results.",
	},
	ResponseJSON: schema.CitationSearchResults(),
	OutputFormat: "JSON only.",
	Language:     "English",
}, prompt.PresetStrictJSON(), prompt.PresetLegalAccuracy())

// LookupCitations runs an optional LLM-assisted citation search.
func (g *Generator) LookupCitations(ctx context.Context, query string) ([]Citation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	build := prompt.StructuredBuilder(citationPromptSpec)
	p, err := build(ctx, map[string]string{"query": query})
	if err != nil {
		return nil, err
	}
	ctx = llm.WithOperation(ctx, "citations")
	resp, err := g.LLM.Generate(ctx, llmclient.Request{
		Prompt: p,
		Schema: schema.CitationSearchResults(),
		Model:  g.Model,
	})
	if err != nil {
		return nil, err
	}
	var out citationResults
	if err := jsonutil.UnmarshalFlex(resp.Payload(), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidModelOutput, err)
	}
	return out.Results, nil
}
