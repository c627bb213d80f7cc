// Package config loads application configuration from environment variables
// and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application's configuration values.
type Config struct {
	ServerPort   string
	ClientOrigin string
	LogLevel     string
	LogFormat    string

	LLMProvider  string
	GeminiAPIKey string
	OpenAIAPIKey string
	OllamaHost   string
	ModelName    string

	AITimeout      time.Duration
	AIParseRetries int
	MaxCodeLength  int

	RateLimitRequests int
	RateLimitWindow   time.Duration

	DatabaseURL string
	SQLitePath  string
	UploadDir   string

	JWTSecret string
	JWTTTL    time.Duration

	GitHubToken string
}

// LoadConfig reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates required fields. It uses the Viper
// library to handle configuration loading and precedence.
func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("CLIENT_ORIGIN", "http://localhost:5173")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("LLM_PROVIDER", "gemini")
	viper.SetDefault("OLLAMA_HOST", "http://localhost:11434")
	viper.SetDefault("AI_TIMEOUT", "60s")
	viper.SetDefault("AI_PARSE_RETRIES", 1)
	viper.SetDefault("MAX_CODE_LENGTH", 8000)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 5)
	viper.SetDefault("RATE_LIMIT_WINDOW", "60s")
	viper.SetDefault("SQLITE_PATH", "codesage.db")
	viper.SetDefault("UPLOAD_DIR", "")
	viper.SetDefault("JWT_TTL", "720h") // 30 days

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A malformed .env is worth failing on; a missing one is not. With an
		// explicit config file viper surfaces the missing case as a plain
		// *fs.PathError, not ConfigFileNotFoundError.
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read .env file: %w", err)
		}
	}

	// Model name defaults depend on the provider.
	modelName := viper.GetString("MODEL_NAME")
	if modelName == "" {
		switch viper.GetString("LLM_PROVIDER") {
		case "gemini":
			modelName = "gemini-2.5-flash"
		case "openai":
			modelName = "gpt-4o-mini"
		default:
			modelName = "gemma3:latest"
		}
	}

	cfg := &Config{
		ServerPort:        viper.GetString("SERVER_PORT"),
		ClientOrigin:      viper.GetString("CLIENT_ORIGIN"),
		LogLevel:          viper.GetString("LOG_LEVEL"),
		LogFormat:         viper.GetString("LOG_FORMAT"),
		LLMProvider:       viper.GetString("LLM_PROVIDER"),
		GeminiAPIKey:      viper.GetString("GEMINI_API_KEY"),
		OpenAIAPIKey:      viper.GetString("OPENAI_API_KEY"),
		OllamaHost:        viper.GetString("OLLAMA_HOST"),
		ModelName:         modelName,
		AITimeout:         viper.GetDuration("AI_TIMEOUT"),
		AIParseRetries:    viper.GetInt("AI_PARSE_RETRIES"),
		MaxCodeLength:     viper.GetInt("MAX_CODE_LENGTH"),
		RateLimitRequests: viper.GetInt("RATE_LIMIT_REQUESTS"),
		RateLimitWindow:   viper.GetDuration("RATE_LIMIT_WINDOW"),
		DatabaseURL:       viper.GetString("DATABASE_URL"),
		SQLitePath:        viper.GetString("SQLITE_PATH"),
		UploadDir:         viper.GetString("UPLOAD_DIR"),
		JWTSecret:         viper.GetString("JWT_SECRET"),
		JWTTTL:            viper.GetDuration("JWT_TTL"),
		GitHubToken:       viper.GetString("GITHUB_TOKEN"),
	}

	if cfg.AITimeout <= 0 {
		return nil, fmt.Errorf("AI_TIMEOUT must be a positive duration")
	}
	if cfg.MaxCodeLength <= 0 {
		return nil, fmt.Errorf("MAX_CODE_LENGTH must be positive")
	}
	if cfg.AIParseRetries < 0 {
		return nil, fmt.Errorf("AI_PARSE_RETRIES cannot be negative")
	}

	return cfg, nil
}
