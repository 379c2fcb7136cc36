package providers

// Common keys used across multiple providers
const (
	// KeySystemPrompt is the common key for system prompts across providers
	KeySystemPrompt = "system_prompt"

	// KeyTemperature is the common key for sampling temperature
	KeyTemperature = "temperature"

	// KeyMaxTokens is the common key for the response length cap
	KeyMaxTokens = "max_tokens"
)

// Provider-specific constants
const (
	AnthropicVersion = "2023-06-01" // anthropic-version header value
)
