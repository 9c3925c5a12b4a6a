package llmtool

import (
	"fmt"
	"strings"

	"refactorgen/internal/util/jsonutil"
)

// PromptField is one field of the expected JSON reply.
type PromptField struct {
	Name        string
	Type        string
	Required    bool
	Description string
}

func (f PromptField) line() string {
	need := "optional"
	if f.Required {
		need = "required"
	}
	head := fmt.Sprintf("- %s (%s, %s)", strings.TrimSpace(f.Name), f.Type, need)
	if f.Description == "" {
		return head
	}
	return head + ": " + f.Description
}

// StructuredPromptSpec is the system preamble of one request kind.
// OutputFields is empty for free-text replies such as generated code.
type StructuredPromptSpec struct {
	Purpose      string
	Background   string
	OutputFields []PromptField
	Constraints  []string
	Rules        []string
	OutputFormat string
	Language     string
}

type section struct {
	title string
	body  string
}

// Render lays spec out as [TITLE] blocks, skipping empty ones. A non-nil
// input is embedded as indented JSON under [INPUT].
func Render(spec StructuredPromptSpec, input any) (string, error) {
	if strings.TrimSpace(spec.Purpose) == "" {
		return "", fmt.Errorf("llmtool: purpose is empty")
	}
	var in string
	if input != nil {
		b, err := jsonutil.MarshalNoEscapeIndent(input, "  ")
		if err != nil {
			return "", fmt.Errorf("llmtool: encode input: %w", err)
		}
		in = string(b)
	}

	fields := make([]string, 0, len(spec.OutputFields))
	for _, f := range spec.OutputFields {
		if strings.TrimSpace(f.Name) != "" {
			fields = append(fields, f.line())
		}
	}
	sections := []section{
		{"PURPOSE", spec.Purpose},
		{"BACKGROUND", spec.Background},
		{"INPUT", in},
		{"OUTPUT", strings.Join(fields, "\n")},
		{"CONSTRAINTS", bullets(spec.Constraints)},
		{"RULES", bullets(spec.Rules)},
		{"OUTPUT_FORMAT", spec.OutputFormat},
		{"LANGUAGE", spec.Language},
	}

	blocks := make([]string, 0, len(sections))
	for _, s := range sections {
		body := strings.TrimRight(s.body, "\n")
		if strings.TrimSpace(body) == "" {
			continue
		}
		blocks = append(blocks, "["+s.title+"]\n"+body)
	}
	return strings.Join(blocks, "\n\n") + "\n", nil
}

// MustRender renders a package-level spec without input and panics on error.
func MustRender(spec StructuredPromptSpec) string {
	out, err := Render(spec, nil)
	if err != nil {
		panic(err)
	}
	return out
}

func bullets(items []string) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			lines = append(lines, "- "+item)
		}
	}
	return strings.Join(lines, "\n")
}
