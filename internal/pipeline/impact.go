package pipeline

import (
	"fmt"

	t "refactorgen/internal/types"
)

// maintenanceModules is the module count above which the split itself is
// flagged as a maintenance risk.
const maintenanceModules = 5

// Estimate scores a synthesis result. complexity is the module count plus
// the number of sub-routines claimed by more than one module.
func Estimate(modules []t.ModuleProposal, idx *t.AssignmentIndex) t.ImpactReport {
	duplicated := len(idx.Duplicated())
	complexity := len(modules) + duplicated
	tier := TierFor(complexity)

	risks := []string{}
	if duplicated > 0 {
		risks = append(risks, fmt.Sprintf("%d sub-routine(s) are claimed by more than one module and will be duplicated", duplicated))
	}
	if len(modules) > maintenanceModules {
		risks = append(risks, fmt.Sprintf("%d new modules add maintenance overhead", len(modules)))
	}
	benefits := []string{
		fmt.Sprintf("Responsibilities split into %d focused module(s)", len(modules)),
		"Smaller modules can be tested in isolation",
		"Clearer boundaries reduce coupling between responsibilities",
	}

	return t.ImpactReport{
		Complexity:        complexity,
		Effort:            tier,
		EffortDescription: tier.Description(),
		Risks:             risks,
		Benefits:          benefits,
	}
}

// TierFor maps complexity to effort: <= 2 Low, 3-5 Medium, > 5 High.
func TierFor(complexity int) t.EffortTier {
	switch {
	case complexity <= 2:
		return t.EffortLow
	case complexity <= 5:
		return t.EffortMedium
	default:
		return t.EffortHigh
	}
}
