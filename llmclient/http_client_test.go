package llmclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weave-labs/gepa/llmclient"
	"github.com/weave-labs/gepa/providers"
	"github.com/weave-labs/gepa/types"
)

func newTestServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPModelClientTextGenerate(t *testing.T) {
	srv := newTestServer(t, http.StatusOK)
	mock := providers.NewMockProvider(srv.URL, "mock-model", nil).(*providers.MockProvider)
	mock.SetMockResponse("hello back")

	client := llmclient.NewHTTPModelClient(mock, nil, time.Second, 0, 0)
	result, err := client.TextGenerate(context.Background(), "mock-model", "system", []types.Message{
		{Role: types.RoleUser, Content: []types.Part{types.TextPart("hi")}},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello back", result.Text)
	require.Len(t, result.Steps, 1)
}

func TestHTTPModelClientObjectGenerateRejectsNonJSON(t *testing.T) {
	srv := newTestServer(t, http.StatusOK)
	mock := providers.NewMockProvider(srv.URL, "mock-model", nil).(*providers.MockProvider)
	mock.SetMockResponse("not json")

	client := llmclient.NewHTTPModelClient(mock, nil, time.Second, 0, 0)
	_, err := client.ObjectGenerate(context.Background(), "mock-model", nil, "prompt")
	require.Error(t, err)
}

func TestHTTPModelClientSurfacesAPIErrorAfterRetries(t *testing.T) {
	srv := newTestServer(t, http.StatusInternalServerError)
	mock := providers.NewMockProvider(srv.URL, "mock-model", nil).(*providers.MockProvider)

	client := llmclient.NewHTTPModelClient(mock, nil, time.Second, 2, time.Millisecond)
	_, err := client.TextGenerate(context.Background(), "mock-model", "", []types.Message{
		{Role: types.RoleUser, Content: []types.Part{types.TextPart("hi")}},
	}, nil)
	require.Error(t, err, "a persistent 500 must exhaust retries and surface as an error")
}
