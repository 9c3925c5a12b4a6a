package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refactorgen/internal/types"
)

func TestValidate_CleanProposal(t *testing.T) {
	model := sampleModel()
	load, _ := model.SubroutineByName("load_invoice")
	prop := &types.RefactoringProposal{
		OriginalModel: *model,
		SuggestedModules: []types.ModuleProposal{
			{Name: "App::Billing::Store", Subroutines: []types.Subroutine{load}, Dependencies: []string{"DBI"}},
		},
	}
	res := Validate(prop, types.DefaultNamespace())
	assert.True(t, res.Valid)
	assert.Empty(t, res.Issues)
	assert.Empty(t, res.Warnings)
}

func TestValidate_ReportsIssuesAndWarnings(t *testing.T) {
	model := sampleModel()
	save, _ := model.SubroutineByName("save_invoice")
	altered := save
	altered.Code = "sub save_invoice { die }"

	prop := &types.RefactoringProposal{
		OriginalModel: *model,
		SuggestedModules: []types.ModuleProposal{
			{Name: "App::Store", Subroutines: []types.Subroutine{save}, Dependencies: []string{"DBI", "Moose"}},
			{Name: "App:: Store", Subroutines: []types.Subroutine{altered, {Name: "ghost"}}},
		},
	}
	res := Validate(prop, types.DefaultNamespace())
	assert.False(t, res.Valid)
	require.Len(t, res.Issues, 3)
	assert.Contains(t, res.Issues[0], `"save_invoice" differs`)
	assert.Contains(t, res.Issues[1], `"ghost" is not in App::Billing`)
	assert.Contains(t, res.Issues[2], "both map to App/Store.pm")

	require.Len(t, res.Warnings, 2)
	assert.Contains(t, res.Warnings[0], "dependency Moose is not declared")
	assert.Contains(t, res.Warnings[1], `"save_invoice" is duplicated in App::Store, App:: Store`)
}

func TestValidate_NilProposal(t *testing.T) {
	res := Validate(nil, types.Namespace{})
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.Issues)
}
