package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refactorgen/internal/apperr"
	"refactorgen/internal/llm"
	llmclient "refactorgen/internal/llm/client"
	"refactorgen/internal/types"
)

// replyClient answers JSON requests from a fixed list of replies; the last
// reply repeats.
type replyClient struct {
	mu      sync.Mutex
	replies []string
	calls   int
	prompts []string
	systems []string
}

func (c *replyClient) Name() string                { return "reply" }
func (c *replyClient) Close() error                { return nil }
func (c *replyClient) CountTokens(text string) int { return llmclient.CountTokens(text) }
func (c *replyClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	raw, err := c.GenerateJSON(ctx, system, prompt)
	return string(raw), err
}
func (c *replyClient) GenerateJSON(ctx context.Context, system, prompt string) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := min(c.calls, len(c.replies)-1)
	c.calls++
	c.prompts = append(c.prompts, prompt)
	c.systems = append(c.systems, system)
	return json.RawMessage(c.replies[i]), nil
}

func gatewayFor(replies ...string) (*llm.Gateway, *replyClient) {
	cli := &replyClient{replies: replies}
	gw := llm.NewGateway(cli, llm.Policy{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}, quiet())
	return gw, cli
}

func TestPropose_EndToEndScenario(t *testing.T) {
	model := sampleModel()
	model.ResponsibilityClusters = []types.ResponsibilityCluster{
		{Name: "Persistence", Description: "db", RelatedSubroutines: []string{"load_invoice", "save_invoice"}, Confidence: 0.9},
		{Name: "Formatting", Description: "fmt", RelatedSubroutines: []string{"format_total"}, Confidence: 0.5},
	}
	p := NewProposer(&Synthesizer{LLM: &recordingCompleter{}, Logger: quiet()}, DefaultThreshold, quiet())

	prop, err := p.Propose(context.Background(), model)
	require.NoError(t, err)
	require.Len(t, prop.SuggestedModules, 1)
	assert.Equal(t, "App::Billing::Persistence", prop.SuggestedModules[0].Name)
	assert.Equal(t, 1, prop.Impact.Complexity)
	assert.Equal(t, types.EffortLow, prop.Impact.Effort)
	assert.Equal(t, model.Name, prop.OriginalModel.Name)
}

func TestPropose_ValidationFailures(t *testing.T) {
	p := NewProposer(&Synthesizer{LLM: &recordingCompleter{}, Logger: quiet()}, DefaultThreshold, quiet())

	_, err := p.Propose(context.Background(), sampleModel())
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "no responsibility clusters")

	weak := sampleModel()
	weak.ResponsibilityClusters = []types.ResponsibilityCluster{{Name: "x", Confidence: 0.3}}
	_, err = p.Propose(context.Background(), weak)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestPropose_SynthesisFailurePropagates(t *testing.T) {
	model := sampleModel()
	model.ResponsibilityClusters = []types.ResponsibilityCluster{{Name: "A", Confidence: 1}}
	boom := apperr.New(apperr.KindAIService, "cluster:A", "unavailable")
	stub := &recordingCompleter{fail: map[string]error{"App::Billing::A": boom}}
	p := NewProposer(&Synthesizer{LLM: stub, Logger: quiet()}, DefaultThreshold, quiet())

	prop, err := p.Propose(context.Background(), model)
	assert.Nil(t, prop)
	assert.ErrorIs(t, err, boom)
}

func TestModelParser_Parse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Billing.pm")
	require.NoError(t, os.WriteFile(path, []byte("package App::Billing;\nsub a { 1 }\n1;\n"), 0o644))

	gw, cli := gatewayFor("```json\n" + `{"package_name":"App::Billing","subroutines":[{"name":"a","code":"sub a { 1 }","line_start":2,"line_end":2,"dependencies":["POSIX"]}],"dependencies":["POSIX"]}` + "\n```")
	m, err := (&ModelParser{LLM: gw}).Parse(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "App::Billing", m.Name)
	assert.Equal(t, path, m.Path)
	assert.Contains(t, m.Content, "sub a { 1 }")
	require.Len(t, m.Subroutines, 1)
	assert.Equal(t, types.Subroutine{Name: "a", Code: "sub a { 1 }", LineStart: 2, LineEnd: 2, Dependencies: []string{"POSIX"}}, m.Subroutines[0])
	assert.Equal(t, []string{"POSIX"}, m.Dependencies)
	assert.Equal(t, []types.ResponsibilityCluster{}, m.ResponsibilityClusters)
	assert.Contains(t, cli.prompts[0], "Module content:\npackage App::Billing;")
	assert.Contains(t, cli.systems[0], "[OUTPUT]\n- package_name (string, optional)")
}

func TestModelParser_FallsBackToFileStem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Legacy.pm")
	require.NoError(t, os.WriteFile(path, []byte("1;\n"), 0o644))
	gw, _ := gatewayFor(`{"subroutines":[],"dependencies":[]}`)

	m, err := (&ModelParser{LLM: gw}).Parse(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Legacy", m.Name)
	assert.Equal(t, []types.Subroutine{}, m.Subroutines)
}

func TestModelParser_RejectedReplyDoesNotLeakIntoRetry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Billing.pm")
	require.NoError(t, os.WriteFile(path, []byte("1;\n"), 0o644))
	gw, cli := gatewayFor(
		`{"package_name":"Hallucinated::Name","subroutines":[{"name":"a","line_start":5,"line_end":1}],"dependencies":["Bogus"]}`,
		`{"subroutines":[],"dependencies":[]}`,
	)

	m, err := (&ModelParser{LLM: gw}).Parse(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, cli.calls)
	assert.Equal(t, "Billing", m.Name)
	assert.Equal(t, []types.Subroutine{}, m.Subroutines)
	assert.Equal(t, []string{}, m.Dependencies)
}

func TestModelParser_InvalidReplyIsRetriedThenParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Dup.pm")
	require.NoError(t, os.WriteFile(path, []byte("1;\n"), 0o644))
	gw, cli := gatewayFor(`{"subroutines":[{"name":"a","line_start":1,"line_end":1},{"name":"a","line_start":2,"line_end":2}],"dependencies":[]}`)

	_, err := (&ModelParser{LLM: gw}).Parse(context.Background(), path)
	require.Error(t, err)
	assert.Equal(t, apperr.KindParse, apperr.KindOf(err))
	assert.Equal(t, 3, cli.calls)
	assert.Contains(t, err.Error(), "duplicate name")
}

func TestModelParser_MissingFileIsIOError(t *testing.T) {
	gw, cli := gatewayFor(`{}`)
	_, err := (&ModelParser{LLM: gw}).Parse(context.Background(), filepath.Join(t.TempDir(), "nope.pm"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindIO, apperr.KindOf(err))
	assert.Zero(t, cli.calls)
}

func TestResponsibilityAnalyzer_CleansClusters(t *testing.T) {
	gw, cli := gatewayFor(`{"responsibility_clusters":[
		{"name":" Persistence ","description":"db","related_subroutines":["load_invoice"],"suggested_module_name":"App::Billing::Store","confidence":1.4},
		{"name":"","description":"nameless","related_subroutines":["x"],"confidence":0.9},
		{"name":"Formatting","description":"fmt","suggested_module_name":" ","confidence":-0.2}
	]}`)
	clusters, err := (&ResponsibilityAnalyzer{LLM: gw}).Analyze(context.Background(), sampleModel())
	require.NoError(t, err)
	require.Len(t, clusters, 2)

	assert.Equal(t, "Persistence", clusters[0].Name)
	assert.Equal(t, 1.0, clusters[0].Confidence)
	assert.Equal(t, "App::Billing::Store", clusters[0].Suggested())

	assert.Equal(t, "Formatting", clusters[1].Name)
	assert.Equal(t, 0.0, clusters[1].Confidence)
	assert.Nil(t, clusters[1].SuggestedModuleName)
	assert.Equal(t, []string{}, clusters[1].RelatedSubroutines)

	assert.Contains(t, cli.systems[0], `"name": "save_invoice"`)
}
