// Package refine applies targeted, generator-mediated edits to an existing
// slide deck. Free-form user instructions are classified into an action,
// resolved to a set of slide indices, and turned into a single refinement
// prompt; the refined slides are merged back into a deep copy of the
// original deck with a change diff and a history record.
package refine

import (
	"regexp"
	"strconv"
	"strings"

	"midnightcourt/internal/analyzer"
)

// Action names the edit intent detected in the user's instructions.
type Action string

const (
	ActionAddDetail    Action = "add_detail"
	ActionExpand       Action = "expand"
	ActionCondense     Action = "condense"
	ActionChangeFocus  Action = "change_focus"
	ActionAddMissing   Action = "add_missing"
	ActionReorder      Action = "reorder"
	ActionAdjustFormat Action = "adjust_format"
	ActionGeneral      Action = "general"
)

// Parsed is the structured reading of one instruction string.
type Parsed struct {
	Action       Action
	TargetSlides []int
	Focus        []string
}

// actionPatterns is priority ordered: the first matching pattern wins, so
// narrower intents must precede the broad ones (add_detail before
// add_missing, expand before general).
var actionPatterns = []struct {
	action Action
	re     *regexp.Regexp
}{
	{ActionAddDetail, regexp.MustCompile(`(?i)\b(?:add|give|include|provide)\b[^.]*\bdetails?\b|\bmore detail|\belaborate\b|\bflesh out\b`)},
	{ActionExpand, regexp.MustCompile(`(?i)\bexpand\b|\blengthen\b|\bmore (?:content|information|depth)\b|\bgo deeper\b`)},
	{ActionCondense, regexp.MustCompile(`(?i)\bcondense\b|\bshorten\b|\btrim\b|\bsummari[sz]e\b|\bmore concise\b|\bbriefer\b|\btoo long\b`)},
	{ActionChangeFocus, regexp.MustCompile(`(?i)\bfocus\b|\bemphasi[sz]e\b|\bhighlight\b|\bcenter on\b|\bconcentrate on\b`)},
	{ActionAddMissing, regexp.MustCompile(`(?i)\badd\b|\binclude\b|\binsert\b|\bmissing\b|\bcover\b`)},
	{ActionReorder, regexp.MustCompile(`(?i)\breorder\b|\brearrange\b|\bmove\b|\bswap\b|\border of\b|\bearlier\b|\blater\b`)},
	{ActionAdjustFormat, regexp.MustCompile(`(?i)\bformat\b|\blayout\b|\bbullet\b|\btimeline\b|\btwo.?column\b|\bconvert\b|\brestructure\b`)},
}

var (
	reSlideRef = regexp.MustCompile(`(?i)\bslides?\s+(\d+(?:\s*(?:,|and)\s*\d+)*)`)
	reSlideNum = regexp.MustCompile(`\d+`)
	reQuoted   = regexp.MustCompile("\"([^\"]+)\"|'([^']+)'|“([^”]+)”")
)

// ParseInstructions classifies one free-form instruction string. Slide
// references are one-based in user text and zero-based in the result;
// references below slide 1 are dropped.
func ParseInstructions(instructions string) Parsed {
	p := Parsed{Action: ActionGeneral}
	for _, ap := range actionPatterns {
		if ap.re.MatchString(instructions) {
			p.Action = ap.action
			break
		}
	}
	p.TargetSlides = parseSlideRefs(instructions)
	p.Focus = parseFocus(instructions)
	return p
}

func parseSlideRefs(instructions string) []int {
	var out []int
	seen := map[int]bool{}
	for _, m := range reSlideRef.FindAllStringSubmatch(instructions, -1) {
		for _, num := range reSlideNum.FindAllString(m[1], -1) {
			n, err := strconv.Atoi(num)
			if err != nil {
				continue
			}
			idx := n - 1
			if idx < 0 || seen[idx] {
				continue
			}
			seen[idx] = true
			out = append(out, idx)
		}
	}
	return out
}

// parseFocus collects quoted spans plus any legal citations (articles,
// sections, case names) mentioned in the instructions.
func parseFocus(instructions string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		key := strings.ToLower(s)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, s)
	}
	for _, m := range reQuoted.FindAllStringSubmatch(instructions, -1) {
		for _, g := range m[1:] {
			if g != "" {
				add(g)
			}
		}
	}
	ents := analyzer.ExtractEntities(instructions)
	for _, s := range ents.Articles {
		add(s)
	}
	for _, s := range ents.Sections {
		add(s)
	}
	for _, s := range ents.Cases {
		add(s)
	}
	return out
}
