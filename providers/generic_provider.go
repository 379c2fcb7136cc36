package providers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/weave-labs/gepa/utils"
)

// GenericProvider speaks either the OpenAI-compatible chat-completions
// dialect or the Anthropic messages dialect, selected by its ProviderConfig.
// OpenAI, Groq, and any other OpenAI-compatible vendor share this
// implementation; only the endpoint, auth header, and model name differ.
type GenericProvider struct {
	options      map[string]any
	logger       utils.Logger
	extraHeaders map[string]string
	apiKey       string
	model        string
	config       ProviderConfig
}

// NewGenericProvider builds a provider from a named configuration
// registered in the default registry.
func NewGenericProvider(apiKey, model, providerName string, extraHeaders map[string]string) Provider {
	if extraHeaders == nil {
		extraHeaders = make(map[string]string)
	}
	cfg, ok := GetDefaultRegistry().GetProviderConfig(providerName)
	if !ok {
		panic(fmt.Sprintf("provider configuration for %q not found", providerName))
	}
	return &GenericProvider{
		apiKey:       apiKey,
		model:        model,
		config:       cfg,
		extraHeaders: extraHeaders,
		options:      make(map[string]any),
		logger:       utils.NewLogger(utils.LogLevelWarn),
	}
}

func (p *GenericProvider) Name() string { return p.config.Name }

func (p *GenericProvider) Endpoint() string {
	return strings.ReplaceAll(p.config.Endpoint, "{model}", p.model)
}

func (p *GenericProvider) Headers() map[string]string {
	headers := make(map[string]string, len(p.config.RequiredHeaders)+len(p.extraHeaders)+1)
	for k, v := range p.config.RequiredHeaders {
		headers[k] = v
	}
	if p.apiKey != "" {
		headers[p.config.AuthHeader] = p.config.AuthPrefix + p.apiKey
	}
	for k, v := range p.extraHeaders {
		headers[k] = v
	}
	return headers
}

func (p *GenericProvider) SetExtraHeaders(extraHeaders map[string]string) {
	if extraHeaders == nil {
		extraHeaders = make(map[string]string)
	}
	p.extraHeaders = extraHeaders
}

func (p *GenericProvider) SetOption(key string, value any) {
	p.options[key] = value
}

func (p *GenericProvider) SetLogger(logger utils.Logger) {
	p.logger = logger
}

func (p *GenericProvider) SupportsJSONSchema() bool {
	return p.config.SupportsSchema
}

func (p *GenericProvider) PrepareRequest(prompt string, options map[string]any) ([]byte, error) {
	merged := p.mergeOptions(options)
	switch p.config.Type {
	case TypeOpenAI:
		return p.prepareOpenAIRequest(prompt, merged, nil)
	case TypeAnthropic:
		return p.prepareAnthropicRequest(prompt, merged, nil)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", p.config.Type)
	}
}

func (p *GenericProvider) PrepareRequestWithSchema(prompt string, options map[string]any, schema any) ([]byte, error) {
	if !p.config.SupportsSchema {
		return nil, fmt.Errorf("provider %s does not support structured output", p.config.Name)
	}
	merged := p.mergeOptions(options)
	switch p.config.Type {
	case TypeOpenAI:
		return p.prepareOpenAIRequest(prompt, merged, schema)
	case TypeAnthropic:
		return p.prepareAnthropicRequest(prompt, merged, schema)
	default:
		return nil, fmt.Errorf("structured output unsupported for provider type: %s", p.config.Type)
	}
}

func (p *GenericProvider) ParseResponse(body []byte) (string, error) {
	switch p.config.Type {
	case TypeOpenAI:
		return p.parseOpenAIResponse(body)
	case TypeAnthropic:
		return p.parseAnthropicResponse(body)
	default:
		return "", fmt.Errorf("unsupported provider type: %s", p.config.Type)
	}
}

func (p *GenericProvider) mergeOptions(options map[string]any) map[string]any {
	merged := make(map[string]any, len(p.options)+len(options))
	for k, v := range p.options {
		merged[k] = v
	}
	for k, v := range options {
		merged[k] = v
	}
	return merged
}

type openAIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	ResponseFormat *openAIResponseFormat `json:"response_format,omitempty"`
	Model          string                `json:"model"`
	Messages       []openAIChatMessage   `json:"messages"`
	Temperature    float64               `json:"temperature,omitempty"`
	MaxTokens      int                   `json:"max_tokens,omitempty"`
}

type openAIResponseFormat struct {
	JSONSchema openAIJSONSchemaBox `json:"json_schema"`
	Type       string              `json:"type"`
}

type openAIJSONSchemaBox struct {
	Schema *jsonschema.Schema `json:"schema"`
	Name   string             `json:"name"`
	Strict bool               `json:"strict"`
}

func (p *GenericProvider) prepareOpenAIRequest(prompt string, options map[string]any, schema any) ([]byte, error) {
	messages := []openAIChatMessage{}
	if system, ok := options[KeySystemPrompt].(string); ok && system != "" {
		messages = append(messages, openAIChatMessage{Role: "system", Content: system})
	}
	messages = append(messages, openAIChatMessage{Role: "user", Content: prompt})

	req := openAIRequest{
		Model:    p.model,
		Messages: messages,
	}
	if temp, ok := options[KeyTemperature].(float64); ok {
		req.Temperature = temp
	}
	if maxTokens, ok := options[KeyMaxTokens].(int); ok {
		req.MaxTokens = maxTokens
	}
	if s, ok := schema.(*jsonschema.Schema); ok && s != nil {
		req.ResponseFormat = &openAIResponseFormat{
			Type: "json_schema",
			JSONSchema: openAIJSONSchemaBox{
				Name:   "response",
				Schema: s,
				Strict: true,
			},
		}
	}
	return json.Marshal(req)
}

type openAIResponse struct {
	Choices []struct {
		Message openAIChatMessage `json:"message"`
	} `json:"choices"`
}

func (p *GenericProvider) parseOpenAIResponse(body []byte) (string, error) {
	var resp openAIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parse openai-compatible response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai-compatible response had no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	System      string             `json:"system,omitempty"`
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
}

func (p *GenericProvider) prepareAnthropicRequest(prompt string, options map[string]any, schema any) ([]byte, error) {
	req := anthropicRequest{
		Model:     p.model,
		MaxTokens: 4096,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	}
	if system, ok := options[KeySystemPrompt].(string); ok {
		req.System = system
	}
	if temp, ok := options[KeyTemperature].(float64); ok {
		req.Temperature = temp
	}
	if maxTokens, ok := options[KeyMaxTokens].(int); ok {
		req.MaxTokens = maxTokens
	}
	if s, ok := schema.(*jsonschema.Schema); ok && s != nil {
		encoded, err := json.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("encode schema: %w", err)
		}
		req.System = strings.TrimSpace(req.System + "\n\nRespond only with JSON matching this schema:\n" + string(encoded))
	}
	return json.Marshal(req)
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (p *GenericProvider) parseAnthropicResponse(body []byte) (string, error) {
	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parse anthropic response: %w", err)
	}
	var sb bytes.Buffer
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}
