package providers

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/weave-labs/gepa/utils"
)

// OllamaProvider implements Provider for a locally hosted Ollama server.
// Its wire format is simple enough that it is not worth folding into
// GenericProvider: no auth header, and the chat endpoint is fixed.
type OllamaProvider struct {
	options  map[string]any
	logger   utils.Logger
	endpoint string
	model    string
}

func NewOllamaProvider(_, model string, _ map[string]string) Provider {
	return &OllamaProvider{
		model:    model,
		endpoint: "http://localhost:11434/api/chat",
		options:  make(map[string]any),
		logger:   utils.NewLogger(utils.LogLevelWarn),
	}
}

func (p *OllamaProvider) Name() string     { return "ollama" }
func (p *OllamaProvider) Endpoint() string { return p.endpoint }

func (p *OllamaProvider) Headers() map[string]string {
	return map[string]string{"Content-Type": "application/json"}
}
func (p *OllamaProvider) SetExtraHeaders(map[string]string) {}
func (p *OllamaProvider) SetOption(key string, value any)   { p.options[key] = value }
func (p *OllamaProvider) SetLogger(logger utils.Logger)     { p.logger = logger }
func (p *OllamaProvider) SupportsJSONSchema() bool          { return true }

// SetEndpoint overrides the default local endpoint, used to point at a
// remote Ollama deployment.
func (p *OllamaProvider) SetEndpoint(endpoint string) { p.endpoint = endpoint }

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaRequest struct {
	Format   *jsonschema.Schema `json:"format,omitempty"`
	Model    string             `json:"model"`
	Messages []ollamaMessage    `json:"messages"`
	Stream   bool               `json:"stream"`
}

func (p *OllamaProvider) PrepareRequest(prompt string, options map[string]any) ([]byte, error) {
	return p.prepare(prompt, options, nil)
}

func (p *OllamaProvider) PrepareRequestWithSchema(prompt string, options map[string]any, schema any) ([]byte, error) {
	return p.prepare(prompt, options, schema)
}

func (p *OllamaProvider) prepare(prompt string, options map[string]any, schema any) ([]byte, error) {
	messages := []ollamaMessage{}
	if system, ok := options[KeySystemPrompt].(string); ok && system != "" {
		messages = append(messages, ollamaMessage{Role: "system", Content: system})
	}
	messages = append(messages, ollamaMessage{Role: "user", Content: prompt})

	req := ollamaRequest{
		Model:    p.model,
		Messages: messages,
		Stream:   false,
	}
	if s, ok := schema.(*jsonschema.Schema); ok {
		req.Format = s
	}
	return json.Marshal(req)
}

type ollamaResponse struct {
	Message ollamaMessage `json:"message"`
}

func (p *OllamaProvider) ParseResponse(body []byte) (string, error) {
	var resp ollamaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parse ollama response: %w", err)
	}
	return resp.Message.Content, nil
}
