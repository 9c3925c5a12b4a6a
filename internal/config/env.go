package config

import (
	"strconv"
	"strings"
	"time"
)

// applyEnv overlays environment variables onto cfg. getenv is injected so
// tests do not depend on the process environment.
func applyEnv(cfg *Config, getenv func(string) string) {
	get := func(key string) string { return strings.TrimSpace(getenv(key)) }

	setString(&cfg.LLM.Provider, get("REFACTORGEN_PROVIDER"))
	setString(&cfg.LLM.Model, get("REFACTORGEN_MODEL"))
	setString(&cfg.LLM.GeminiAPIKey, get("GEMINI_API_KEY"))
	setString(&cfg.LLM.GroqAPIKey, get("GROQ_API_KEY"))
	setString(&cfg.LLM.GroqBaseURL, get("GROQ_BASE_URL"))
	setFloat(&cfg.LLM.RPS, firstNonEmpty(get("LLM_RPS"), get("REFACTORGEN_RPS")))
	setInt(&cfg.LLM.Burst, firstNonEmpty(get("LLM_BURST"), get("REFACTORGEN_BURST")))
	setInt(&cfg.LLM.Retry.MaxAttempts, get("LLM_MAX_ATTEMPTS"))
	setDuration(&cfg.LLM.Retry.InitialDelay, get("LLM_RETRY_INITIAL_DELAY"))
	setDuration(&cfg.LLM.Retry.MaxElapsed, get("LLM_RETRY_MAX_ELAPSED"))

	setFloat(&cfg.Pipeline.Threshold, get("REFACTORGEN_THRESHOLD"))
	setInt(&cfg.Pipeline.Jobs, get("REFACTORGEN_JOBS"))
	setString(&cfg.Pipeline.Language, get("REFACTORGEN_LANGUAGE"))

	setString(&cfg.Store.PostgresDSN, get("ANALYSIS_STORE_PG_DSN"))
	setInt(&cfg.Store.CacheSize, get("ANALYSIS_STORE_CACHE_SIZE"))

	setString(&cfg.Publish.Endpoint, get("ARTIFACT_S3_ENDPOINT"))
	setString(&cfg.Publish.Region, get("ARTIFACT_S3_REGION"))
	setString(&cfg.Publish.AccessKey, get("ARTIFACT_S3_ACCESS_KEY"))
	setString(&cfg.Publish.SecretKey, get("ARTIFACT_S3_SECRET_KEY"))
	setString(&cfg.Publish.Bucket, get("ARTIFACT_S3_BUCKET"))
	setString(&cfg.Publish.Prefix, get("ARTIFACT_S3_PREFIX"))
	if raw := get("ARTIFACT_S3_USE_SSL"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			cfg.Publish.UseSSL = v
		}
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v string) {
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func setFloat(dst *float64, v string) {
	if v == "" {
		return
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		*dst = f
	}
}

func setDuration(dst *Duration, v string) {
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil {
		dst.Duration = d
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
