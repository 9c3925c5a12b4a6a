package types

// Structural model -----------------------------------------------------------------

// StructuralModel is the parsed shape of one source unit. It is built once by
// the parser (or loaded from a saved analysis) and treated as read-only.
type StructuralModel struct {
	Name         string       `json:"name" yaml:"name"`
	Path         string       `json:"path" yaml:"path"`
	Content      string       `json:"content" yaml:"content"`
	Subroutines  []Subroutine `json:"subroutines" yaml:"subroutines"`
	Dependencies []string     `json:"dependencies" yaml:"dependencies"`
	// ResponsibilityClusters are produced by the analyzer and persisted with
	// the model so a saved analysis can be proposed on later.
	ResponsibilityClusters []ResponsibilityCluster `json:"responsibility_clusters" yaml:"responsibility_clusters"`
}

// Subroutine names are unique within a model; the name is the join key used
// by clusters and proposals.
type Subroutine struct {
	Name         string   `json:"name" yaml:"name"`
	Code         string   `json:"code" yaml:"code"`
	LineStart    int      `json:"line_start" yaml:"line_start"`
	LineEnd      int      `json:"line_end" yaml:"line_end"`
	Dependencies []string `json:"dependencies" yaml:"dependencies"`
}

// ResponsibilityCluster groups sub-routine names (references, not copies)
// that appear to serve one responsibility.
type ResponsibilityCluster struct {
	Name                string   `json:"name" yaml:"name"`
	Description         string   `json:"description" yaml:"description"`
	RelatedSubroutines  []string `json:"related_subroutines" yaml:"related_subroutines"`
	SuggestedModuleName *string  `json:"suggested_module_name" yaml:"suggested_module_name"`
	Confidence          float64  `json:"confidence" yaml:"confidence"`
}

// SubroutineByName returns the sub-routine with the exact given name.
func (m *StructuralModel) SubroutineByName(name string) (Subroutine, bool) {
	if m == nil {
		return Subroutine{}, false
	}
	for _, s := range m.Subroutines {
		if s.Name == name {
			return s, true
		}
	}
	return Subroutine{}, false
}

// Suggested returns the cluster's suggested module name, or "" when absent.
func (c ResponsibilityCluster) Suggested() string {
	if c.SuggestedModuleName == nil {
		return ""
	}
	return *c.SuggestedModuleName
}
