package providers

import (
	"encoding/json"
	"errors"

	"github.com/weave-labs/gepa/utils"
)

// MockProvider implements Provider for use in tests, returning a queue of
// canned responses instead of talking to a real vendor.
type MockProvider struct {
	options       map[string]any
	logger        utils.Logger
	extraHeaders  map[string]string
	responseText  string
	errorMsg      string
	endpoint      string
	model         string
	responses     []string
	currentIndex  int
	shouldError   bool
	loopResponses bool
}

// NewMockProvider creates a new mock provider instance for testing.
func NewMockProvider(endpoint, model string, extraHeaders map[string]string) Provider {
	if extraHeaders == nil {
		extraHeaders = make(map[string]string)
	}
	return &MockProvider{
		endpoint:     endpoint,
		model:        model,
		extraHeaders: extraHeaders,
		options:      make(map[string]any),
		logger:       utils.NewLogger(utils.LogLevelWarn),
		responseText: "mock response",
	}
}

// SetMockResponse configures the single response text returned absent a queue.
func (p *MockProvider) SetMockResponse(response string) { p.responseText = response }

// SetMockError configures the mock to return an error from PrepareRequest/ParseResponse.
func (p *MockProvider) SetMockError(shouldError bool, errorMsg string) {
	p.shouldError = shouldError
	p.errorMsg = errorMsg
}

// SetResponses configures a list of responses returned in sequence, one per
// call to ParseResponse. With loop=false, the queue errors once exhausted.
func (p *MockProvider) SetResponses(responses []string, loop bool) {
	p.responses = responses
	p.currentIndex = 0
	p.loopResponses = loop
}

func (p *MockProvider) SetLogger(logger utils.Logger)                  { p.logger = logger }
func (p *MockProvider) Name() string                                   { return "mock" }
func (p *MockProvider) Endpoint() string                               { return p.endpoint }
func (p *MockProvider) SetOption(key string, value any)                { p.options[key] = value }
func (p *MockProvider) SupportsJSONSchema() bool                       { return true }
func (p *MockProvider) SetExtraHeaders(headers map[string]string)      { p.extraHeaders = headers }

func (p *MockProvider) Headers() map[string]string {
	headers := map[string]string{"Content-Type": "application/json"}
	for k, v := range p.extraHeaders {
		headers[k] = v
	}
	return headers
}

func (p *MockProvider) PrepareRequest(prompt string, options map[string]any) ([]byte, error) {
	if p.shouldError {
		return nil, errors.New(p.errorMsg)
	}
	body := map[string]any{"model": p.model, "prompt": prompt}
	for k, v := range options {
		body[k] = v
	}
	return json.Marshal(body)
}

func (p *MockProvider) PrepareRequestWithSchema(prompt string, options map[string]any, _ any) ([]byte, error) {
	return p.PrepareRequest(prompt, options)
}

func (p *MockProvider) ParseResponse(_ []byte) (string, error) {
	if p.shouldError {
		return "", errors.New(p.errorMsg)
	}
	if len(p.responses) == 0 {
		return p.responseText, nil
	}
	if p.currentIndex >= len(p.responses) {
		if p.loopResponses {
			p.currentIndex = 0
		} else {
			return "", errors.New("mock responses exhausted")
		}
	}
	response := p.responses[p.currentIndex]
	p.currentIndex++
	return response, nil
}
