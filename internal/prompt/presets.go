package prompt

// Preset holds reusable constraints and rules for structured prompts.
type Preset struct {
	Constraints []string
	Rules       []string
}

// ApplyPresets prepends preset constraints/rules to a spec.
func ApplyPresets(spec StructuredSpec, presets ...Preset) StructuredSpec {
	if len(presets) == 0 {
		return spec
	}
	var merged Preset
	for _, p := range presets {
		merged.Constraints = append(merged.Constraints, p.Constraints...)
		merged.Rules = append(merged.Rules, p.Rules...)
	}
	spec.Constraints = append(merged.Constraints, spec.Constraints...)
	spec.Rules = append(merged.Rules, spec.Rules...)
	return spec
}

// PresetStrictJSON enforces strict JSON-only output.
func PresetStrictJSON() Preset {
	return Preset{
		Constraints: []string{
			"Return strict JSON only.",
			"Match the schema exactly; no extra fields.",
			"No markdown fences, comments, or trailing commas.",
		},
	}
}

// PresetLegalAccuracy keeps generated content anchored to the input.
func PresetLegalAccuracy() Preset {
	return Preset{
		Constraints: []string{
			"Be legally accurate; never invent case names, citations, statutes, or section numbers.",
			"Use only facts, parties, and authorities present in the input.",
		},
	}
}

// PresetInlineMarkers teaches the three color markers used in slide text.
func PresetInlineMarkers() Preset {
	return Preset{
		Rules: []string{
			"Emphasize key phrases with inline markers: *text* for gold (key holdings), ~text~ for red (violations, risks), _text_ for blue (statutes, citations).",
			"Never nest markers and keep marked spans short.",
		},
	}
}
