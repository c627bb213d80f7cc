package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "http://localhost:5173", cfg.ClientOrigin)
	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, "gemini-2.5-flash", cfg.ModelName)
	assert.Equal(t, 60*time.Second, cfg.AITimeout)
	assert.Equal(t, 1, cfg.AIParseRetries)
	assert.Equal(t, 8000, cfg.MaxCodeLength)
	assert.Equal(t, 5, cfg.RateLimitRequests)
	assert.Equal(t, 60*time.Second, cfg.RateLimitWindow)
	assert.Equal(t, "codesage.db", cfg.SQLitePath)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("AI_TIMEOUT", "10s")
	t.Setenv("MAX_CODE_LENGTH", "500")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, "gpt-4o-mini", cfg.ModelName, "model default should follow the provider")
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, 10*time.Second, cfg.AITimeout)
	assert.Equal(t, 500, cfg.MaxCodeLength)
}

func TestLoadConfigWithoutEnvFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	// No .env in the working directory; environment variables alone must be
	// enough to start.
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "7070")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.ServerPort)
}

func TestLoadConfigMalformedEnvFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("%%% not env syntax\n=\n"), 0o600))
	t.Chdir(dir)

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigModelNameOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("MODEL_NAME", "codellama:13b")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "codellama:13b", cfg.ModelName)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-positive timeout", "AI_TIMEOUT", "0s"},
		{"non-positive code length", "MAX_CODE_LENGTH", "0"},
		{"negative parse retries", "AI_PARSE_RETRIES", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
