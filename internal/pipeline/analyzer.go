package pipeline

import (
	"context"
	"fmt"
	"strings"

	"refactorgen/internal/llm"
	"refactorgen/internal/llmtool"
	t "refactorgen/internal/types"
)

// ResponsibilityAnalyzer asks the completion backend to group a model's
// sub-routines into responsibility clusters.
type ResponsibilityAnalyzer struct {
	LLM      StructuredCompleter
	Language string
}

type analyzeResponse struct {
	Clusters []t.ResponsibilityCluster `json:"responsibility_clusters"`
}

var analyzePromptSpec = llmtool.StructuredPromptSpec{
	Background: "Each cluster becomes a candidate module. A sub-routine may appear in more than one cluster when it is genuinely shared.",
	OutputFields: []llmtool.PromptField{
		{Name: "responsibility_clusters", Type: "[]Cluster", Required: true, Description: "Each {name, description, related_subroutines, suggested_module_name, confidence}."},
	},
	Constraints: []string{
		"related_subroutines lists sub-routine names exactly as given in INPUT.",
		"confidence is a number between 0 and 1.",
		"suggested_module_name is a fully qualified module name, or null.",
	},
	OutputFormat: "JSON only.",
	Language:     "English",
}

type analyzeInput struct {
	Module       string       `json:"module"`
	Dependencies []string     `json:"dependencies"`
	Subroutines  []analyzeSub `json:"subroutines"`
}

type analyzeSub struct {
	Name         string   `json:"name"`
	Dependencies []string `json:"dependencies"`
}

// Analyze returns the model's responsibility clusters. Confidence is clamped
// into [0,1] and clusters without a name are dropped.
func (a *ResponsibilityAnalyzer) Analyze(ctx context.Context, model *t.StructuralModel) ([]t.ResponsibilityCluster, error) {
	in := analyzeInput{Module: model.Name, Dependencies: model.Dependencies}
	for _, s := range model.Subroutines {
		in.Subroutines = append(in.Subroutines, analyzeSub{Name: s.Name, Dependencies: s.Dependencies})
	}
	spec := analyzePromptSpec
	spec.Purpose = fmt.Sprintf("Group the sub-routines of a %s module by responsibility.", language(a.Language))
	system, err := llmtool.Render(llmtool.ApplyPresets(spec, llmtool.PresetStrictJSON(), llmtool.PresetNoInvent(), llmtool.PresetCautious()), in)
	if err != nil {
		return nil, err
	}
	prompt := "Module content:\n" + model.Content + "\n"

	var resp analyzeResponse
	ctx = llm.WithUnit(ctx, "analyze:"+model.Name)
	if err := a.LLM.CompleteInto(ctx, system, prompt, &resp); err != nil {
		return nil, err
	}

	out := make([]t.ResponsibilityCluster, 0, len(resp.Clusters))
	for _, c := range resp.Clusters {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			continue
		}
		c.Confidence = clamp01(c.Confidence)
		if c.SuggestedModuleName != nil && strings.TrimSpace(*c.SuggestedModuleName) == "" {
			c.SuggestedModuleName = nil
		}
		if c.RelatedSubroutines == nil {
			c.RelatedSubroutines = []string{}
		}
		out = append(out, c)
	}
	return out, nil
}

func clamp01(v float64) float64 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
