package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"refactorgen/internal/apperr"
	"refactorgen/internal/llm"
	"refactorgen/internal/llmtool"
	t "refactorgen/internal/types"
)

// StructuredCompleter is the JSON side of the inference gateway.
// *llm.Gateway implements it.
type StructuredCompleter interface {
	CompleteInto(ctx context.Context, system, prompt string, out any) error
}

// ModelParser asks the completion backend for the structure of one source
// file. It never inspects the code itself.
type ModelParser struct {
	LLM      StructuredCompleter
	Language string
}

type parsedSubroutine struct {
	Name         string   `json:"name"`
	Code         string   `json:"code"`
	LineStart    int      `json:"line_start"`
	LineEnd      int      `json:"line_end"`
	Dependencies []string `json:"dependencies"`
}

type parseResponse struct {
	PackageName  *string            `json:"package_name"`
	Subroutines  []parsedSubroutine `json:"subroutines"`
	Dependencies []string           `json:"dependencies"`
}

// Validate rejects replies that would break the model's invariants, so the
// gateway retries them as schema failures.
func (r *parseResponse) Validate() error {
	var errs []error
	seen := map[string]struct{}{}
	for i, s := range r.Subroutines {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("subroutines[%d]: name is empty", i))
			continue
		}
		if _, dup := seen[name]; dup {
			errs = append(errs, fmt.Errorf("subroutines[%d]: duplicate name %q", i, name))
		}
		seen[name] = struct{}{}
		if s.LineEnd < s.LineStart {
			errs = append(errs, fmt.Errorf("subroutines[%d] %s: line_end %d before line_start %d", i, name, s.LineEnd, s.LineStart))
		}
	}
	return errors.Join(errs...)
}

var parsePromptSpec = llmtool.StructuredPromptSpec{
	Background: "The file is one module. Sub-routine bodies are copied verbatim so they can be moved into new modules later.",
	OutputFields: []llmtool.PromptField{
		{Name: "package_name", Type: "string", Required: false, Description: "Declared package/module name."},
		{Name: "subroutines", Type: "[]Subroutine", Required: true, Description: "Each {name, code, line_start, line_end, dependencies}; code is the complete definition."},
		{Name: "dependencies", Type: "[]string", Required: true, Description: "All module/package dependencies of the file."},
	},
	Constraints: []string{
		"Line numbers are 1-based and line_start <= line_end.",
		"Sub-routine names are unique.",
	},
	OutputFormat: "JSON only.",
	Language:     "English",
}

// Parse reads path and returns its structural model. The model name falls
// back to the file stem when the reply carries no package name.
func (p *ModelParser) Parse(ctx context.Context, path string) (*t.StructuralModel, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindIO, "read "+path, err)
	}
	spec := parsePromptSpec
	spec.Purpose = fmt.Sprintf("Analyze this %s module and extract its structure.", language(p.Language))
	system, err := llmtool.Render(llmtool.ApplyPresets(spec, llmtool.PresetStrictJSON(), llmtool.PresetNoInvent()), nil)
	if err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf("Path: %s\n\nModule content:\n%s\n", path, content)

	var resp parseResponse
	ctx = llm.WithUnit(ctx, "parse:"+filepath.Base(path))
	if err := p.LLM.CompleteInto(ctx, system, prompt, &resp); err != nil {
		return nil, err
	}

	name := ""
	if resp.PackageName != nil {
		name = strings.TrimSpace(*resp.PackageName)
	}
	if name == "" {
		name = fileStem(path)
	}
	subs := make([]t.Subroutine, 0, len(resp.Subroutines))
	for _, s := range resp.Subroutines {
		subs = append(subs, t.Subroutine{
			Name:         strings.TrimSpace(s.Name),
			Code:         s.Code,
			LineStart:    s.LineStart,
			LineEnd:      s.LineEnd,
			Dependencies: nonNil(s.Dependencies),
		})
	}
	return &t.StructuralModel{
		Name:                   name,
		Path:                   path,
		Content:                string(content),
		Subroutines:            subs,
		Dependencies:           nonNil(resp.Dependencies),
		ResponsibilityClusters: []t.ResponsibilityCluster{},
	}, nil
}

func fileStem(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		return t.UnknownModule
	}
	return stem
}

func language(l string) string {
	if l == "" {
		return "Perl"
	}
	return l
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
