package llmtool

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_Sections(t *testing.T) {
	spec := StructuredPromptSpec{
		Purpose:      "Describe a Perl module.",
		Background:   "Input is one source file.",
		OutputFormat: "JSON only.",
		Language:     "English",
		OutputFields: []PromptField{
			{Name: "package_name", Type: "string", Required: true, Description: "Declared package."},
			{Name: "notes", Type: "[]string"},
		},
		Constraints: []string{"No markdown."},
		Rules:       []string{"Be concise.", "  "},
	}

	out, err := Render(spec, map[string]any{"path": "lib/A.pm"})
	require.NoError(t, err)

	for _, sec := range []string{
		"[PURPOSE]", "[BACKGROUND]", "[INPUT]", "[OUTPUT]", "[CONSTRAINTS]",
		"[RULES]", "[OUTPUT_FORMAT]", "[LANGUAGE]",
	} {
		assert.Contains(t, out, sec)
	}
	assert.Contains(t, out, "- package_name (string, required): Declared package.")
	assert.Contains(t, out, "- notes ([]string, optional)")
	assert.Contains(t, out, `"path": "lib/A.pm"`)
	assert.Contains(t, out, "[RULES]\n- Be concise.\n\n[OUTPUT_FORMAT]")
	assert.True(t, strings.HasPrefix(out, "[PURPOSE]\nDescribe a Perl module.\n\n[BACKGROUND]\n"))
	assert.True(t, strings.HasSuffix(out, "[LANGUAGE]\nEnglish\n"))
}

func TestRender_OmitsEmptySections(t *testing.T) {
	out, err := Render(StructuredPromptSpec{Purpose: "Write code."}, nil)
	require.NoError(t, err)
	assert.Equal(t, "[PURPOSE]\nWrite code.\n", out)
}

func TestRender_RequiresPurpose(t *testing.T) {
	_, err := Render(StructuredPromptSpec{}, nil)
	assert.Error(t, err)
	assert.Panics(t, func() { MustRender(StructuredPromptSpec{}) })
}

func TestApplyPresets_PrependsInOrder(t *testing.T) {
	spec := ApplyPresets(StructuredPromptSpec{Constraints: []string{"own"}}, PresetStrictJSON(), PresetNoInvent())
	require.Len(t, spec.Constraints, 5)
	assert.Equal(t, "Return strict JSON only.", spec.Constraints[0])
	assert.Equal(t, "own", spec.Constraints[4])
	assert.Len(t, ApplyPresets(StructuredPromptSpec{}).Constraints, 0)
}
