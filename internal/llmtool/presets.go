package llmtool

// PromptPreset is a reusable block of constraints and rules.
type PromptPreset struct {
	Constraints []string
	Rules       []string
}

// ApplyPresets returns spec with the presets' lines placed before its own,
// presets in the order given. spec itself is not modified.
func ApplyPresets(spec StructuredPromptSpec, presets ...PromptPreset) StructuredPromptSpec {
	var constraints, rules []string
	for _, p := range presets {
		constraints = append(constraints, p.Constraints...)
		rules = append(rules, p.Rules...)
	}
	spec.Constraints = append(constraints, spec.Constraints...)
	spec.Rules = append(rules, spec.Rules...)
	return spec
}

// PresetStrictJSON is for requests decoded with CompleteInto.
func PresetStrictJSON() PromptPreset {
	return PromptPreset{
		Constraints: []string{
			"Return strict JSON only.",
			"Use exactly the fields listed under OUTPUT.",
			"No markdown fences or comments around the JSON.",
		},
	}
}

// PresetNoInvent prevents fabricated sub-routines and dependencies.
func PresetNoInvent() PromptPreset {
	return PromptPreset{
		Constraints: []string{
			"Do not invent sub-routine names, module names, or line ranges; use only what appears in the input.",
		},
	}
}

// PresetSourceOnly asks for a bare source file as the whole reply.
func PresetSourceOnly() PromptPreset {
	return PromptPreset{
		Constraints: []string{
			"Reply with the complete source file only.",
			"No markdown fences and no explanation before or after the code.",
		},
	}
}

// PresetCautious encourages explicit uncertainty.
func PresetCautious() PromptPreset {
	return PromptPreset{
		Rules: []string{
			"Avoid guessing; if unsure, lower the confidence or leave optional fields empty.",
		},
	}
}
