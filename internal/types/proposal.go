package types

// Proposal outputs -----------------------------------------------------------------

// ModuleProposal is one synthesized module covering one responsibility cluster.
// Subroutines are owned copies taken from the original model.
type ModuleProposal struct {
	Name           string       `json:"name" yaml:"name"`
	Responsibility string       `json:"responsibility" yaml:"responsibility"`
	Subroutines    []Subroutine `json:"subroutines" yaml:"subroutines"`
	// Dependencies is a set; it is kept sorted so output is stable.
	Dependencies  []string `json:"dependencies" yaml:"dependencies"`
	GeneratedCode string   `json:"suggested_code" yaml:"suggested_code"`
	Confidence    float64  `json:"confidence" yaml:"confidence"`
}

// SubroutineNames lists the names of the module's sub-routines in order.
func (p ModuleProposal) SubroutineNames() []string {
	out := make([]string, 0, len(p.Subroutines))
	for _, s := range p.Subroutines {
		out = append(out, s.Name)
	}
	return out
}

// RefactoringProposal is the terminal artifact of a pipeline run.
type RefactoringProposal struct {
	OriginalModel    StructuralModel  `json:"original_module" yaml:"original_module"`
	SuggestedModules []ModuleProposal `json:"suggested_modules" yaml:"suggested_modules"`
	Impact           ImpactReport     `json:"impact" yaml:"impact"`
}

type ImpactReport struct {
	Complexity        int        `json:"complexity" yaml:"complexity"`
	Effort            EffortTier `json:"effort" yaml:"effort"`
	EffortDescription string     `json:"effort_description" yaml:"effort_description"`
	Risks             []string   `json:"risks" yaml:"risks"`
	Benefits          []string   `json:"benefits" yaml:"benefits"`
}

// ValidationResult is the outcome of checking a proposal's dependencies and
// sub-routine references. Issues are errors in the proposal; warnings are not.
type ValidationResult struct {
	Valid    bool     `json:"is_valid" yaml:"is_valid"`
	Issues   []string `json:"issues" yaml:"issues"`
	Warnings []string `json:"warnings" yaml:"warnings"`
}
