package providers

import (
	"fmt"
	"sync"
)

// Registry manages the registration and retrieval of LLM providers.
// It provides thread-safe access to provider constructors and their
// wire-protocol configurations.
type Registry struct {
	providers map[string]ProviderConstructor
	configs   map[string]ProviderConfig
	mutex     sync.RWMutex
}

// NewRegistry creates a registry containing the given providers. With no
// names given, all known providers (openai, anthropic, groq, ollama, and
// the test-only mock) are registered.
func NewRegistry(providerNames ...string) *Registry {
	registry := &Registry{
		providers: make(map[string]ProviderConstructor),
		configs:   make(map[string]ProviderConfig),
	}

	known := knownConstructors()
	for name, cfg := range standardConfigs() {
		registry.configs[name] = cfg
	}

	if len(providerNames) == 0 {
		for name, constructor := range known {
			registry.providers[name] = constructor
		}
		return registry
	}
	for _, name := range providerNames {
		if constructor, ok := known[name]; ok {
			registry.providers[name] = constructor
		}
	}
	return registry
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// GetDefaultRegistry returns the package-wide registry of standard
// provider configurations, used by GenericProvider to resolve its wire
// dialect by name.
func GetDefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

func knownConstructors() map[string]ProviderConstructor {
	return map[string]ProviderConstructor{
		"openai": func(apiKey, model string, extraHeaders map[string]string) Provider {
			return NewGenericProvider(apiKey, model, "openai", extraHeaders)
		},
		"anthropic": func(apiKey, model string, extraHeaders map[string]string) Provider {
			return NewGenericProvider(apiKey, model, "anthropic", extraHeaders)
		},
		"groq": func(apiKey, model string, extraHeaders map[string]string) Provider {
			return NewGenericProvider(apiKey, model, "groq", extraHeaders)
		},
		"ollama": func(apiKey, model string, extraHeaders map[string]string) Provider {
			return NewOllamaProvider(apiKey, model, extraHeaders)
		},
		"mock": func(apiKey, model string, extraHeaders map[string]string) Provider {
			return NewMockProvider(apiKey, model, extraHeaders)
		},
	}
}

func standardConfigs() map[string]ProviderConfig {
	return map[string]ProviderConfig{
		"openai": {
			Name:            "openai",
			Endpoint:        "https://api.openai.com/v1/chat/completions",
			Type:            TypeOpenAI,
			AuthHeader:      "Authorization",
			AuthPrefix:      "Bearer ",
			RequiredHeaders: map[string]string{"Content-Type": "application/json"},
			SupportsSchema:  true,
		},
		"groq": {
			Name:            "groq",
			Endpoint:        "https://api.groq.com/openai/v1/chat/completions",
			Type:            TypeOpenAI,
			AuthHeader:      "Authorization",
			AuthPrefix:      "Bearer ",
			RequiredHeaders: map[string]string{"Content-Type": "application/json"},
			SupportsSchema:  true,
		},
		"anthropic": {
			Name:       "anthropic",
			Endpoint:   "https://api.anthropic.com/v1/messages",
			Type:       TypeAnthropic,
			AuthHeader: "x-api-key",
			RequiredHeaders: map[string]string{
				"Content-Type":      "application/json",
				"anthropic-version": AnthropicVersion,
			},
			SupportsSchema: true,
		},
	}
}

// GetProviderConfig returns the configuration for a named provider.
func (r *Registry) GetProviderConfig(name string) (ProviderConfig, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	cfg, exists := r.configs[name]
	return cfg, exists
}

// RegisterProviderConfig registers or overrides a provider configuration.
func (r *Registry) RegisterProviderConfig(name string, cfg ProviderConfig) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.configs[name] = cfg
}

// Register adds a new provider constructor to the registry.
func (r *Registry) Register(name string, constructor ProviderConstructor) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.providers[name] = constructor
}

// Get instantiates a provider by name.
func (r *Registry) Get(name, apiKey, model string, extraHeaders map[string]string) (Provider, error) {
	r.mutex.RLock()
	constructor, exists := r.providers[name]
	r.mutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
	return constructor(apiKey, model, extraHeaders), nil
}
