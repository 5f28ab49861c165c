package file

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/vox/internal/core/domain"
	"github.com/custodia-labs/vox/internal/logger"
)

// Environment variables that take precedence over stored API keys.
const (
	EnvElevenLabsAPIKey = "ELEVEN_LABS_API_KEY"
	EnvOpenAIAPIKey     = "OPENAI_API_KEY"
	EnvAnthropicAPIKey  = "ANTHROPIC_API_KEY"
	EnvGeminiAPIKey     = "GEMINI_API_KEY"
)

// LoadEnv loads <home>/.env and then ./.env into the process environment.
// Variables already set are never replaced, and missing files are skipped.
// It returns the files that were loaded.
func LoadEnv(home string) ([]string, error) {
	candidates := []string{".env"}
	if home != "" {
		candidates = append([]string{filepath.Join(home, ".env")}, candidates...)
	}

	var loaded []string
	for _, path := range candidates {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, err
		}
		logger.Debug("loaded environment from %s", path)
		loaded = append(loaded, path)
	}
	return loaded, nil
}

// ApplyEnvOverrides replaces API keys in settings with any set in the
// environment. It does not persist anything.
func ApplyEnvOverrides(settings *domain.AppSettings) {
	if settings == nil {
		return
	}
	if key := providerKey(settings.Embedding.Provider); key != "" {
		settings.Embedding.APIKey = key
	}
	if key := providerKey(settings.LLM.Provider); key != "" {
		settings.LLM.APIKey = key
	}
	if key := os.Getenv(EnvElevenLabsAPIKey); key != "" {
		settings.Voice.ElevenLabsAPIKey = key
	}
}

func providerKey(p domain.AIProvider) string {
	switch p {
	case domain.AIProviderOpenAI:
		return os.Getenv(EnvOpenAIAPIKey)
	case domain.AIProviderAnthropic:
		return os.Getenv(EnvAnthropicAPIKey)
	case domain.AIProviderGemini:
		return os.Getenv(EnvGeminiAPIKey)
	default:
		return ""
	}
}
