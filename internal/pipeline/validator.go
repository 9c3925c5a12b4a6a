package pipeline

import (
	"fmt"
	"slices"
	"strings"

	t "refactorgen/internal/types"
)

// Validate checks a proposal against its original model. Issues are facts
// that make the proposal wrong (unknown or altered sub-routines, two modules
// writing the same file); warnings are duplication and dependencies the
// original module never declared.
func Validate(p *t.RefactoringProposal, ns t.Namespace) t.ValidationResult {
	res := t.ValidationResult{Issues: []string{}, Warnings: []string{}}
	if p == nil {
		res.Issues = append(res.Issues, "proposal is empty")
		return res
	}
	ns = ns.Normalize()
	orig := &p.OriginalModel

	declared := map[string]struct{}{}
	for _, d := range orig.Dependencies {
		declared[strings.TrimSpace(d)] = struct{}{}
	}
	paths := map[string]string{}
	owners := map[string][]string{}
	var ownerOrder []string

	for _, m := range p.SuggestedModules {
		for _, s := range m.Subroutines {
			o, ok := orig.SubroutineByName(s.Name)
			switch {
			case !ok:
				res.Issues = append(res.Issues, fmt.Sprintf("%s: sub-routine %q is not in %s", m.Name, s.Name, orig.Name))
			case o.Code != s.Code:
				res.Issues = append(res.Issues, fmt.Sprintf("%s: sub-routine %q differs from the original", m.Name, s.Name))
			}
			if _, seen := owners[s.Name]; !seen {
				ownerOrder = append(ownerOrder, s.Name)
			}
			owners[s.Name] = append(owners[s.Name], m.Name)
		}

		rel := ns.RelPath(m.Name)
		if prev, clash := paths[rel]; clash {
			res.Issues = append(res.Issues, fmt.Sprintf("%s and %s both map to %s", prev, m.Name, rel))
		} else {
			paths[rel] = m.Name
		}

		for _, d := range m.Dependencies {
			if _, ok := declared[d]; !ok {
				res.Warnings = append(res.Warnings, fmt.Sprintf("%s: dependency %s is not declared by %s", m.Name, d, orig.Name))
			}
		}
	}

	for _, name := range ownerOrder {
		mods := slices.Compact(slices.Clone(owners[name]))
		if len(mods) > 1 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("sub-routine %q is duplicated in %s", name, strings.Join(mods, ", ")))
		}
	}

	res.Valid = len(res.Issues) == 0
	return res
}
