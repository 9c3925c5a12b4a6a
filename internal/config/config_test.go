package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "refactorgen.toml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.7, cfg.Pipeline.Threshold)
	assert.Equal(t, 4, cfg.LLM.Retry.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.LLM.Retry.InitialDelay.Duration)
	assert.Equal(t, "::", cfg.Layout.Separator)
	assert.Equal(t, ".pm", cfg.Layout.Extension)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, `
[llm]
provider = "groq"
model = "llama-3.1-8b-instant"

[llm.retry]
max_attempts = 6
initial_delay = "50ms"
max_elapsed = "10s"

[pipeline]
threshold = 0.8
jobs = 2

[layout]
separator = "."
extension = "py"
`)
	t.Setenv("REFACTORGEN_THRESHOLD", "0.65")
	t.Setenv("GROQ_API_KEY", "k")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "groq", cfg.LLM.Provider)
	assert.Equal(t, "llama-3.1-8b-instant", cfg.LLM.Model)
	assert.Equal(t, 6, cfg.LLM.Retry.MaxAttempts)
	assert.Equal(t, 50*time.Millisecond, cfg.LLM.Retry.InitialDelay.Duration)
	assert.Equal(t, 10*time.Second, cfg.LLM.Retry.MaxElapsed.Duration)
	assert.Equal(t, 0.65, cfg.Pipeline.Threshold, "env overrides file")
	assert.Equal(t, 2, cfg.Pipeline.Jobs)
	assert.Equal(t, "k", cfg.LLM.GroqAPIKey)
	assert.Equal(t, ".py", cfg.Layout.Extension, "extension is normalized")
}

func TestLoad_RejectsBadValues(t *testing.T) {
	path := writeFile(t, `
[llm]
provider = "openai"
[pipeline]
threshold = 1.5
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "threshold")
	assert.Contains(t, err.Error(), "openai")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestApplyEnv_IgnoresMalformedNumbers(t *testing.T) {
	cfg := Default()
	env := map[string]string{"REFACTORGEN_JOBS": "many", "LLM_RPS": "1.5", "ARTIFACT_S3_USE_SSL": "false"}
	applyEnv(&cfg, func(k string) string { return env[k] })
	assert.Equal(t, 4, cfg.Pipeline.Jobs)
	assert.Equal(t, 1.5, cfg.LLM.RPS)
	assert.False(t, cfg.Publish.UseSSL)
}

func TestPublishConfig_Enabled(t *testing.T) {
	assert.False(t, PublishConfig{}.Enabled())
	assert.True(t, PublishConfig{Endpoint: "minio:9000", Bucket: "b"}.Enabled())
}
