package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.veridex.engine/internal/models"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc, family string) (*Gateway, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	gw := NewGateway([]Backend{
		{Name: "test", Family: family, BaseURL: srv.URL, APIKey: "k"},
	}, nil, nil)
	return gw, srv
}

func userMessage(content string) []models.Message {
	return []models.Message{{Role: "user", Content: content}}
}

// =============================================================================
// OpenAI family
// =============================================================================

func TestCallOpenAI_ExtractsContent(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":"1","choices":[{"message":{"role":"assistant","content":"hello"}}]}`))
	}, FamilyOpenAI)

	c, err := gw.Call(context.Background(), models.ModelRef{Provider: "test", Model: "m"}, userMessage("hi"), CallOptions{})
	require.NoError(t, err)
	assert.Equal(t, "hello", c.Text)
	assert.NotEmpty(t, c.Raw)
}

func TestCallOpenAI_FallsBackToReasoning(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"","reasoning":"thought"}}]}`))
	}, FamilyOpenAI)

	c, err := gw.Call(context.Background(), models.ModelRef{Provider: "test", Model: "m"}, userMessage("hi"), CallOptions{})
	require.NoError(t, err)
	assert.Equal(t, "thought", c.Text)
}

func TestCallOpenAI_EmptyResponseUsesDefault(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}, FamilyOpenAI)

	c, err := gw.Call(context.Background(), models.ModelRef{Provider: "test", Model: "m"}, userMessage("hi"), CallOptions{DefaultText: "[no response]"})
	require.NoError(t, err)
	assert.Equal(t, "[no response]", c.Text)
}

func TestCallOpenAI_NonOKIsUpstreamError(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`rate limited`))
	}, FamilyOpenAI)

	_, err := gw.Call(context.Background(), models.ModelRef{Provider: "test", Model: "m"}, userMessage("hi"), CallOptions{})
	require.Error(t, err)
	assert.True(t, IsUpstream(err))

	var ue *UpstreamCallError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusTooManyRequests, ue.Status)
	assert.Equal(t, "rate limited", ue.Body)
}

func TestCallOpenAI_ZDRThreadedIntoRequest(t *testing.T) {
	var got map[string]any
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}, FamilyOpenAI)

	_, err := gw.Call(context.Background(), models.ModelRef{Provider: "test", Model: "m"}, userMessage("hi"), CallOptions{ZDR: true})
	require.NoError(t, err)
	assert.Equal(t, false, got["store"])
}

func TestCallOpenAI_NoZDROmitsStore(t *testing.T) {
	var got map[string]any
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}, FamilyOpenAI)

	_, err := gw.Call(context.Background(), models.ModelRef{Provider: "test", Model: "m"}, userMessage("hi"), CallOptions{})
	require.NoError(t, err)
	_, present := got["store"]
	assert.False(t, present)
}

// =============================================================================
// Anthropic family
// =============================================================================

func TestCallAnthropic_SystemPromptLifted(t *testing.T) {
	var got map[string]any
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"answer"}]}`))
	}, FamilyAnthropic)

	msgs := []models.Message{
		{Role: "system", Content: "you are a skeptic"},
		{Role: "user", Content: "evaluate this"},
	}
	c, err := gw.Call(context.Background(), models.ModelRef{Provider: "test", Model: "m"}, msgs, CallOptions{})
	require.NoError(t, err)
	assert.Equal(t, "answer", c.Text)
	assert.Equal(t, "you are a skeptic", got["system"])

	sent, ok := got["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, sent, 1)
}

func TestCallAnthropic_JoinsTextBlocks(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"a"},{"type":"thinking"},{"type":"text","text":"b"}]}`))
	}, FamilyAnthropic)

	c, err := gw.Call(context.Background(), models.ModelRef{Provider: "test", Model: "m"}, userMessage("hi"), CallOptions{})
	require.NoError(t, err)
	assert.Equal(t, "ab", c.Text)
}

func TestCallAnthropic_ZDRHeader(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.Header.Get("X-Zero-Data-Retention"))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	}, FamilyAnthropic)

	_, err := gw.Call(context.Background(), models.ModelRef{Provider: "test", Model: "m"}, userMessage("hi"), CallOptions{ZDR: true})
	require.NoError(t, err)
}

func TestCallAnthropic_EmptyContentUsesDefault(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}, FamilyAnthropic)

	c, err := gw.Call(context.Background(), models.ModelRef{Provider: "test", Model: "m"}, userMessage("hi"), CallOptions{DefaultText: "[empty]"})
	require.NoError(t, err)
	assert.Equal(t, "[empty]", c.Text)
}

// =============================================================================
// Gateway dispatch
// =============================================================================

func TestCall_UnknownBackend(t *testing.T) {
	gw := NewGateway(nil, nil, nil)
	_, err := gw.Call(context.Background(), models.ModelRef{Provider: "missing", Model: "m"}, userMessage("hi"), CallOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")
	assert.False(t, IsUpstream(err))
}

func TestCall_UnknownFamily(t *testing.T) {
	gw := NewGateway([]Backend{{Name: "weird", Family: "smoke-signals", BaseURL: "http://localhost"}}, nil, nil)
	_, err := gw.Call(context.Background(), models.ModelRef{Provider: "weird", Model: "m"}, userMessage("hi"), CallOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend family")
}
