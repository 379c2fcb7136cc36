// Package providers implements HTTP request/response translation for
// concrete LLM vendors behind a single Provider interface. It supports
// OpenAI, Anthropic, Groq, and Ollama, giving the llmclient package a
// uniform way to prepare a request body, send it, and parse the result.
package providers

import (
	"github.com/weave-labs/gepa/utils"
)

// Provider defines the complete interface that all LLM providers must implement.
type Provider interface {
	Name() string
	Endpoint() string
	Headers() map[string]string
	SetExtraHeaders(extraHeaders map[string]string)
	SetOption(key string, value any)
	SetLogger(logger utils.Logger)

	// PrepareRequest builds a plain-text generation request body.
	PrepareRequest(prompt string, options map[string]any) ([]byte, error)
	// PrepareRequestWithSchema builds a structured-output request body
	// constrained by schema, which is a *jsonschema.Schema in practice.
	PrepareRequestWithSchema(prompt string, options map[string]any, schema any) ([]byte, error)
	// ParseResponse extracts the generated text from a raw HTTP response body.
	ParseResponse(body []byte) (string, error)

	SupportsJSONSchema() bool
}

// ProviderType selects which wire dialect GenericProvider speaks.
type ProviderType string

const (
	TypeOpenAI    ProviderType = "openai"
	TypeAnthropic ProviderType = "anthropic"
)

// ProviderConfig holds the static shape of a provider's wire protocol.
type ProviderConfig struct {
	Name            string
	Endpoint        string
	Type            ProviderType
	AuthHeader      string
	AuthPrefix      string
	RequiredHeaders map[string]string
	EndpointParams  map[string]string
	SupportsSchema  bool
}

// ProviderConstructor creates a new provider instance given credentials.
type ProviderConstructor func(apiKey, model string, extraHeaders map[string]string) Provider
