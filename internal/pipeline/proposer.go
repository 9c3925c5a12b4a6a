package pipeline

import (
	"context"
	"log"

	"refactorgen/internal/apperr"
	t "refactorgen/internal/types"
)

// Proposer runs filter -> synthesize -> estimate for one structural model.
// Threshold is used as given; callers normally start from DefaultThreshold.
type Proposer struct {
	Synth     *Synthesizer
	Threshold float64
	Logger    *log.Logger
}

func NewProposer(synth *Synthesizer, threshold float64, logger *log.Logger) *Proposer {
	if logger == nil {
		logger = log.Default()
	}
	return &Proposer{Synth: synth, Threshold: threshold, Logger: logger}
}

// Propose builds the refactoring proposal for model. It fails with a
// validation error when there is nothing to synthesize and propagates the
// first synthesis failure unchanged.
func (p *Proposer) Propose(ctx context.Context, model *t.StructuralModel) (*t.RefactoringProposal, error) {
	if model == nil || len(model.ResponsibilityClusters) == 0 {
		return nil, apperr.New(apperr.KindValidation, "propose", "no responsibility clusters found to base refactoring on")
	}
	selected := Select(model.ResponsibilityClusters, p.Threshold)
	if len(selected) == 0 {
		return nil, apperr.New(apperr.KindValidation, "propose",
			"none of %d responsibility cluster(s) reach confidence %.2f", len(model.ResponsibilityClusters), p.Threshold)
	}
	p.logger().Printf("propose: %s: %d of %d cluster(s) selected at threshold %.2f", model.Name, len(selected), len(model.ResponsibilityClusters), p.Threshold)

	syn, err := p.Synth.Synthesize(ctx, model, selected)
	if err != nil {
		return nil, err
	}
	return &t.RefactoringProposal{
		OriginalModel:    *model,
		SuggestedModules: syn.Modules,
		Impact:           Estimate(syn.Modules, syn.Index),
	}, nil
}

func (p *Proposer) logger() *log.Logger {
	if p.Logger == nil {
		return log.Default()
	}
	return p.Logger
}
