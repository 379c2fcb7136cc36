package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/weave-labs/gepa/providers"
	"github.com/weave-labs/gepa/types"
	"github.com/weave-labs/gepa/utils"
)

// HTTPModelClient implements ModelClient by sending a providers.Provider's
// prepared request over HTTP, retrying up to MaxRetries times with a fixed
// delay between attempts, the pattern the teacher's llm.go Generate loop
// uses.
type HTTPModelClient struct {
	Provider   providers.Provider
	client     *http.Client
	logger     utils.Logger
	MaxRetries int
	RetryDelay time.Duration
}

// NewHTTPModelClient builds a client around the given provider. timeout
// bounds each individual HTTP round trip; callers additionally wrap calls
// in context.WithTimeout per spec.md's per-call timeout requirement.
func NewHTTPModelClient(provider providers.Provider, logger utils.Logger, timeout time.Duration, maxRetries int, retryDelay time.Duration) *HTTPModelClient {
	if logger == nil {
		logger = utils.NewLogger(utils.LogLevelOff)
	}
	return &HTTPModelClient{
		Provider:   provider,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
		MaxRetries: maxRetries,
		RetryDelay: retryDelay,
	}
}

func (c *HTTPModelClient) TextGenerate(ctx context.Context, modelID, system string, messages []types.Message, _ []types.Tool) (TextResult, error) {
	prompt := renderMessages(messages)
	text, err := c.generate(ctx, prompt, system, nil)
	if err != nil {
		return TextResult{}, err
	}
	return TextResult{
		Steps: []Step{{Text: text}},
		Text:  text,
	}, nil
}

func (c *HTTPModelClient) StructuredGenerate(ctx context.Context, modelID, system, prompt string, schema *jsonschema.Schema) (string, error) {
	return c.generate(ctx, prompt, system, schema)
}

func (c *HTTPModelClient) ObjectGenerate(ctx context.Context, modelID string, schema *jsonschema.Schema, prompt string) (json.RawMessage, error) {
	text, err := c.generate(ctx, prompt, "", schema)
	if err != nil {
		return nil, err
	}
	if !json.Valid([]byte(text)) {
		return nil, NewError(ErrorTypeSchema, "object generation did not return valid JSON", nil)
	}
	return json.RawMessage(text), nil
}

func renderMessages(messages []types.Message) string {
	var buf bytes.Buffer
	for _, m := range messages {
		fmt.Fprintf(&buf, "%s: %s\n", m.Role, m.Text())
	}
	return buf.String()
}

func (c *HTTPModelClient) generate(ctx context.Context, prompt, system string, schema *jsonschema.Schema) (string, error) {
	options := map[string]any{}
	if system != "" {
		options[providers.KeySystemPrompt] = system
	}

	var lastErr error
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		result, err := c.attempt(ctx, prompt, options, schema)
		if err == nil {
			return result, nil
		}
		lastErr = err
		c.logger.Warn("generation attempt failed", "attempt", attempt+1, "error", err)

		if attempt < c.MaxRetries {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(c.RetryDelay):
			}
		}
	}
	return "", fmt.Errorf("failed after %d attempts: %w", c.MaxRetries+1, lastErr)
}

func (c *HTTPModelClient) attempt(ctx context.Context, prompt string, options map[string]any, schema *jsonschema.Schema) (string, error) {
	var body []byte
	var err error
	if schema != nil {
		body, err = c.Provider.PrepareRequestWithSchema(prompt, options, schema)
	} else {
		body, err = c.Provider.PrepareRequest(prompt, options)
	}
	if err != nil {
		return "", NewError(ErrorTypeRequest, "failed to prepare request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Provider.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", NewError(ErrorTypeRequest, "failed to build request", err)
	}
	for k, v := range c.Provider.Headers() {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", NewError(ErrorTypeRequest, "request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewError(ErrorTypeResponse, "failed to read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", NewError(ErrorTypeAPI, fmt.Sprintf("status %d: %s", resp.StatusCode, string(respBody)), nil)
	}

	text, err := c.Provider.ParseResponse(respBody)
	if err != nil {
		return "", NewError(ErrorTypeResponse, "failed to parse response", err)
	}
	return text, nil
}
