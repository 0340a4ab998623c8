// Package analyzer extracts structure from a free-form case description:
// legal entities, case type, completeness, and a suggested slide count.
// Everything here is regex-driven and pure; empty or short input yields an
// empty Analysis, never an error.
package analyzer

import (
	"regexp"
	"strings"
)

// Entities are the legal references recognized in the input, deduplicated
// preserving first occurrence.
type Entities struct {
	Articles []string `json:"articles"`
	Sections []string `json:"sections"`
	Cases    []string `json:"cases"`
	Years    []string `json:"years"`
	Parties  []string `json:"parties"`
}

// Elements flags which building blocks of a case the input already covers.
type Elements struct {
	HasFacts       bool `json:"hasFacts"`
	HasLegalIssues bool `json:"hasLegalIssues"`
	HasStatutes    bool `json:"hasStatutes"`
	HasArguments   bool `json:"hasArguments"`
	HasEvidence    bool `json:"hasEvidence"`
	HasCitations   bool `json:"hasCitations"`
}

// Analysis is the structured summary the orchestrator feeds into prompts.
type Analysis struct {
	CaseType            string   `json:"caseType"`
	Completeness        int      `json:"completeness"`
	Elements            Elements `json:"elements"`
	DetectedEntities    Entities `json:"detectedEntities"`
	Suggestions         []string `json:"suggestions"`
	EstimatedSlideCount int      `json:"estimatedSlideCount"`
	InputLength         int      `json:"inputLength"`
}

// ValidationResult wraps Analysis with hard errors and soft warnings.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Analysis Analysis `json:"analysis"`
}

const (
	MinInputLen = 100
	MaxInputLen = 3000
)

var (
	reArticle = regexp.MustCompile(`(?i)\barticle\s+\d+[A-Za-z]?\b`)
	reSection = regexp.MustCompile(`(?i)\bsection\s+\d+[A-Za-z]?(?:\s+(?:of\s+)?(?:the\s+)?(?:IPC|CrPC|CPC))?\b`)
	reCase    = regexp.MustCompile(`\b[A-Z][\w.']*(?:\s+[A-Z][\w.']*)*\s+vs?\.?\s+[A-Z][\w.']*(?:\s+(?:of|the|and)\s+[A-Z][\w.']*|\s+[A-Z][\w.']*)*`)
	reYear    = regexp.MustCompile(`\(\d{4}\)`)
	reParty   = regexp.MustCompile(`(?i)\b(?:petitioner|respondent|plaintiff|defendant|appellant|accused)s?\b[:\s]+([A-Z][A-Za-z .]{2,40})`)

	reFacts     = regexp.MustCompile(`(?i)\b(facts?|incident|occurred|happened|background|events?)\b`)
	reIssues    = regexp.MustCompile(`(?i)\b(issues?|questions? of law|whether|contentions?|dispute)\b`)
	reStatutes  = regexp.MustCompile(`(?i)\b(acts?|statutes?|code|ipc|crpc|cpc|article|section)\b`)
	reArguments = regexp.MustCompile(`(?i)\b(argu(?:e|ed|ment)s?|submit(?:ted|s)?|contend(?:ed|s)?|claim(?:ed|s)?)\b`)
	reEvidence  = regexp.MustCompile(`(?i)\b(evidence|witness(?:es)?|exhibits?|testimony|documents?|proof|records?)\b`)
	reCitations = regexp.MustCompile(`(?i)(\bvs?\.|\bAIR\b|\bSCC\b|\bjudgments?\b|\bheld\b|\bprecedents?\b)`)
)

// caseTypeKeywords score the input per category; declaration order breaks
// ties, zero score means "general".
var caseTypeKeywords = []struct {
	label    string
	keywords []string
}{
	{"constitutional", []string{
		"constitution", "constitutional", "fundamental right", "article", "writ",
		"supreme court", "amendment", "judicial review", "basic structure", "directive principles",
	}},
	{"criminal", []string{
		"ipc", "crpc", "criminal", "murder", "theft", "bail", "accused",
		"prosecution", "fir", "offence", "charge sheet", "conviction",
	}},
	{"civil", []string{
		"contract", "property", "damages", "civil", "tort", "breach",
		"agreement", "compensation", "injunction", "specific performance",
	}},
	{"procedural", []string{
		"procedure", "cpc", "appeal", "revision", "jurisdiction",
		"limitation", "interim", "stay", "notice", "petition",
	}},
}

// ExtractEntities runs the fixed entity regexes over text. Exported because
// the refinement engine reuses it for focus-keyword extraction.
func ExtractEntities(text string) Entities {
	parties := make([]string, 0)
	for _, m := range reParty.FindAllStringSubmatch(text, -1) {
		parties = append(parties, strings.TrimRight(strings.TrimSpace(m[1]), "."))
	}
	return Entities{
		Articles: dedupe(reArticle.FindAllString(text, -1)),
		Sections: dedupe(reSection.FindAllString(text, -1)),
		Cases:    dedupe(reCase.FindAllString(text, -1)),
		Years:    dedupe(reYear.FindAllString(text, -1)),
		Parties:  dedupe(parties),
	}
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		key := strings.ToLower(it)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}

// DetectCaseType scores the input against the four keyword lists. Highest
// score wins, ties resolve to declaration order, zero means "general".
func DetectCaseType(text string) string {
	lower := strings.ToLower(text)
	best, bestScore := "general", 0
	for _, ct := range caseTypeKeywords {
		score := 0
		for _, kw := range ct.keywords {
			score += strings.Count(lower, kw)
		}
		if score > bestScore {
			best, bestScore = ct.label, score
		}
	}
	return best
}

func detectElements(text string, ents Entities) Elements {
	return Elements{
		HasFacts:       reFacts.MatchString(text),
		HasLegalIssues: reIssues.MatchString(text),
		HasStatutes:    len(ents.Articles) > 0 || len(ents.Sections) > 0 || reStatutes.MatchString(text),
		HasArguments:   reArguments.MatchString(text),
		HasEvidence:    reEvidence.MatchString(text),
		HasCitations:   len(ents.Cases) > 0 || len(ents.Years) > 0 || reCitations.MatchString(text),
	}
}

// completeness is a length component (stepped at 100/300/600 chars, max 30)
// plus a weighted element component, capped at 100. Adding content never
// lowers the score.
func completeness(n int, el Elements) int {
	score := 0
	switch {
	case n >= 600:
		score = 30
	case n >= 300:
		score = 20
	case n >= 100:
		score = 10
	}
	if el.HasFacts {
		score += 15
	}
	if el.HasLegalIssues {
		score += 15
	}
	if el.HasStatutes {
		score += 15
	}
	if el.HasArguments {
		score += 10
	}
	if el.HasEvidence {
		score += 8
	}
	if el.HasCitations {
		score += 7
	}
	if score > 100 {
		score = 100
	}
	return score
}

func estimateSlideCount(n int, el Elements) int {
	var count int
	switch {
	case n < 200:
		count = 3
	case n < 500:
		count = 4
	case n < 1000:
		count = 5
	case n < 1500:
		count = 6
	case n < 2000:
		count = 7
	default:
		count = 8
	}
	rich := 0
	for _, ok := range []bool{el.HasArguments, el.HasEvidence, el.HasCitations} {
		if ok {
			rich++
		}
	}
	if rich >= 2 {
		count++
	}
	if count < 3 {
		count = 3
	}
	if count > 8 {
		count = 8
	}
	return count
}

// suggestions walks a fixed decision table in priority order; at most three
// are returned.
func suggestions(text string, caseType string, el Elements) []string {
	var out []string
	add := func(cond bool, s string) {
		if cond && len(out) < 3 {
			out = append(out, s)
		}
	}
	add(!el.HasFacts, "Add the key facts of the case: what happened, when, and who was involved")
	add(!el.HasLegalIssues, "State the legal issues or questions of law to be decided")
	add(!el.HasStatutes, "Cite the applicable statutes, articles, or sections")
	add(!el.HasArguments, "Summarize the main arguments of both sides")
	add(!el.HasEvidence, "List the key evidence, exhibits, or witness testimony")
	add(!el.HasCitations, "Add case-law citations or precedents that support your position")
	add(caseType == "general", "Clarify the area of law (constitutional, criminal, civil, or procedural)")
	add(len(text) < 300, "Provide more detail so the slides can go deeper than a summary")
	return out
}

// Analyze produces the full structured summary for the input.
func Analyze(text string) Analysis {
	text = strings.TrimSpace(text)
	ents := ExtractEntities(text)
	el := detectElements(text, ents)
	caseType := DetectCaseType(text)
	return Analysis{
		CaseType:            caseType,
		Completeness:        completeness(len(text), el),
		Elements:            el,
		DetectedEntities:    ents,
		Suggestions:         suggestions(text, caseType, el),
		EstimatedSlideCount: estimateSlideCount(len(text), el),
		InputLength:         len(text),
	}
}

// Validate applies the hard length bounds and soft quality warnings. The
// Analysis is always populated, valid or not.
func Validate(text string) ValidationResult {
	a := Analyze(text)
	res := ValidationResult{Analysis: a, Errors: []string{}, Warnings: []string{}}
	n := len(strings.TrimSpace(text))
	if n < MinInputLen {
		res.Errors = append(res.Errors, "Input too short (minimum 100 characters for quality results)")
	}
	if n > MaxInputLen {
		res.Errors = append(res.Errors, "Input too long (maximum 3000 characters)")
	}
	if len(res.Errors) == 0 {
		if a.Completeness < 30 {
			res.Warnings = append(res.Warnings, "Input may be too vague to produce quality slides")
		}
		if a.CaseType == "general" && !a.Elements.HasStatutes && !a.Elements.HasCitations {
			res.Warnings = append(res.Warnings, "No legal references detected; slides may be generic")
		}
	}
	res.Valid = len(res.Errors) == 0
	return res
}
