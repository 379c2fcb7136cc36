// Package config holds the connection settings for talking to a concrete
// LLM vendor (provider, model, retry/timeout policy) and the run-level
// settings that parameterize one optimization run.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/weave-labs/gepa/utils"
)

// ProviderConfig holds per-vendor connection settings, loaded from the
// environment the same way the original gollm library loads its LLM config.
type ProviderConfig struct {
	Provider      string        `env:"LLM_PROVIDER"       envDefault:"openai"`
	Model         string        `env:"LLM_MODEL"          envDefault:"gpt-4o-mini"`
	Temperature   float64       `env:"LLM_TEMPERATURE"    envDefault:"0.7"`
	MaxTokens     int           `env:"LLM_MAX_TOKENS"     envDefault:"1024"`
	Timeout       time.Duration `env:"LLM_TIMEOUT"        envDefault:"60s"`
	MaxRetries    int           `env:"LLM_MAX_RETRIES"    envDefault:"3"`
	RetryDelay    time.Duration `env:"LLM_RETRY_DELAY"    envDefault:"2s"`
	LogLevel      utils.LogLevel `env:"LLM_LOG_LEVEL"      envDefault:"WARN"`
	EnableCaching bool          `env:"LLM_ENABLE_CACHING" envDefault:"false"`
	APIKeys       map[string]string
	ExtraHeaders  map[string]string
}

// LoadProviderConfig reads ProviderConfig from the environment and
// populates APIKeys from any <PROVIDER>_API_KEY variable found.
func LoadProviderConfig() (*ProviderConfig, error) {
	cfg := &ProviderConfig{APIKeys: make(map[string]string), ExtraHeaders: make(map[string]string)}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	loadAPIKeys(cfg)
	return cfg, nil
}

func loadAPIKeys(cfg *ProviderConfig) {
	for _, envVar := range os.Environ() {
		key, value, found := strings.Cut(envVar, "=")
		if !found || !strings.HasSuffix(strings.ToUpper(key), "_API_KEY") {
			continue
		}
		provider := strings.TrimSuffix(strings.ToUpper(key), "_API_KEY")
		cfg.APIKeys[strings.ToLower(provider)] = value
	}
}
