package pipeline

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/sync/errgroup"

	"refactorgen/internal/llm"
	"refactorgen/internal/llmtool"
	t "refactorgen/internal/types"
)

// Completer is the plain-text side of the inference gateway.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Synthesizer turns selected clusters into module proposals, one generation
// request per cluster.
type Synthesizer struct {
	LLM       Completer
	Namespace t.Namespace
	// Language names the source language in prompts ("Perl" when empty).
	Language string
	// Jobs bounds concurrent generation requests; <= 0 means one at a time.
	Jobs   int
	Logger *log.Logger
}

// Synthesis is the synthesizer output: proposals in cluster order plus the
// assignment index the impact estimator reads.
type Synthesis struct {
	Modules []t.ModuleProposal
	Index   *t.AssignmentIndex
}

// clusterUnit is one resolved cluster, ready for generation.
type clusterUnit struct {
	cluster t.ResponsibilityCluster
	module  string
	subs    []t.Subroutine
	deps    []string
}

// Synthesize builds one ModuleProposal per cluster. Any generation failure
// aborts the whole run; no partial result is returned.
func (s *Synthesizer) Synthesize(ctx context.Context, model *t.StructuralModel, clusters []t.ResponsibilityCluster) (Synthesis, error) {
	if s.LLM == nil {
		return Synthesis{}, fmt.Errorf("synthesizer: no completer configured")
	}
	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}
	ns := s.Namespace.Normalize()

	idx := t.NewAssignmentIndex()
	units := make([]clusterUnit, len(clusters))
	for i, c := range clusters {
		subs := resolveSubroutines(model, c.RelatedSubroutines)
		for _, sub := range subs {
			idx.Record(sub.Name, c.Name)
		}
		if len(subs) < len(c.RelatedSubroutines) {
			logger.Printf("synth: cluster %q: skipped %d unknown or repeated sub-routine reference(s)", c.Name, len(c.RelatedSubroutines)-len(subs))
		}
		units[i] = clusterUnit{
			cluster: c,
			module:  ModuleName(model.Name, c, ns),
			subs:    subs,
			deps:    unionDependencies(subs),
		}
	}

	system := s.systemPrompt()
	jobs := s.Jobs
	if jobs <= 0 {
		jobs = 1
	}
	codes := make([]string, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, u := range units {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			uctx := llm.WithUnit(gctx, "cluster:"+u.cluster.Name)
			code, err := s.LLM.Complete(uctx, system, BuildPrompt(model.Name, u.module, u.cluster, u.subs))
			if err != nil {
				return fmt.Errorf("cluster %q: %w", u.cluster.Name, err)
			}
			codes[i] = code
			logger.Printf("synth: %s <- cluster %q (%d sub-routine(s))", u.module, u.cluster.Name, len(u.subs))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Synthesis{}, err
	}

	modules := make([]t.ModuleProposal, len(units))
	for i, u := range units {
		modules[i] = t.ModuleProposal{
			Name:           u.module,
			Responsibility: u.cluster.Description,
			Subroutines:    u.subs,
			Dependencies:   u.deps,
			GeneratedCode:  codes[i],
			Confidence:     u.cluster.Confidence,
		}
	}
	return Synthesis{Modules: modules, Index: idx}, nil
}

// resolveSubroutines copies the named sub-routines out of model in the order
// given. Unknown names and repeats within the same list are skipped.
func resolveSubroutines(model *t.StructuralModel, names []string) []t.Subroutine {
	out := make([]t.Subroutine, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		sub, ok := model.SubroutineByName(name)
		if !ok {
			continue
		}
		seen[name] = struct{}{}
		sub.Dependencies = slices.Clone(sub.Dependencies)
		out = append(out, sub)
	}
	return out
}

func unionDependencies(subs []t.Subroutine) []string {
	set := map[string]struct{}{}
	for _, s := range subs {
		for _, d := range s.Dependencies {
			if d = strings.TrimSpace(d); d != "" {
				set[d] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(set))
	for d := range set {
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}

// ModuleName is the cluster's suggested module name when present, otherwise
// the original module name joined with the cluster name stripped of
// whitespace.
func ModuleName(original string, c t.ResponsibilityCluster, ns t.Namespace) string {
	if s := strings.TrimSpace(c.Suggested()); s != "" {
		return s
	}
	stripped := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, c.Name)
	return ns.Join(original, stripped)
}

// BuildPrompt renders the per-cluster generation request. Source bodies are
// joined by blank lines in resolved order; an empty list still yields a
// prompt.
func BuildPrompt(original, target string, c t.ResponsibilityCluster, subs []t.Subroutine) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Original module: %s\n", original)
	fmt.Fprintf(&b, "Target module: %s\n", target)
	fmt.Fprintf(&b, "Responsibility: %s\n", c.Name)
	fmt.Fprintf(&b, "Description: %s\n", c.Description)
	fmt.Fprintf(&b, "Confidence: %.2f\n", c.Confidence)
	b.WriteString("\nSub-routines:\n")
	codes := make([]string, 0, len(subs))
	for _, s := range subs {
		codes = append(codes, s.Code)
	}
	b.WriteString(strings.Join(codes, "\n\n"))
	b.WriteString("\n")
	return b.String()
}

func (s *Synthesizer) systemPrompt() string {
	lang := language(s.Language)
	return llmtool.MustRender(llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
		Purpose:    fmt.Sprintf("Write the %s module named under 'Target module' that takes over one responsibility of 'Original module'.", lang),
		Background: "The original module is being split by responsibility. You receive the sub-routines assigned to this responsibility.",
		Constraints: []string{
			"Declare the target module name exactly as given.",
			"Keep the behaviour of every sub-routine you receive.",
			"Import what the moved sub-routines use; drop imports they do not need.",
		},
		Rules: []string{
			"If no sub-routines are given, write a minimal module skeleton for the responsibility.",
		},
		OutputFormat: fmt.Sprintf("%s source code only.", lang),
		Language:     "English",
	}, llmtool.PresetSourceOnly(), llmtool.PresetNoInvent()))
}
