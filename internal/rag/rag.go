// Package rag defines the context provider collaborator used to enrich
// Round-1 prompts with grounding snippets. Retrieval internals live in a
// separate service; the engine only consumes ranked text.
package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Snippet is one ranked grounding snippet.
type Snippet struct {
	SourceID string  `json:"source_id"`
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
}

// ContextProvider returns ranked snippets for a query. Implementations
// are best-effort: callers treat an error or an empty result the same way.
type ContextProvider interface {
	Search(ctx context.Context, query string, k int) ([]Snippet, error)
}

// Nop is a provider that never returns snippets.
type Nop struct{}

func (Nop) Search(ctx context.Context, query string, k int) ([]Snippet, error) {
	return nil, nil
}

const defaultSearchTimeout = 10 * time.Second

// HTTPProvider calls an external search endpoint speaking the
// {query, top_k} → {results: [...]} convention.
type HTTPProvider struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPProvider creates an HTTP-backed context provider.
func NewHTTPProvider(baseURL string, logger *zap.Logger) *HTTPProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPProvider{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultSearchTimeout},
		logger:     logger,
	}
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type searchResponse struct {
	Results []Snippet `json:"results"`
}

// Search posts the query and returns ranked snippets.
func (p *HTTPProvider) Search(ctx context.Context, query string, k int) ([]Snippet, error) {
	body, err := json.Marshal(searchRequest{Query: query, TopK: k})
	if err != nil {
		return nil, fmt.Errorf("rag: failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("rag: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rag: search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("rag: failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rag: search error: %d - %s", resp.StatusCode, string(respBody))
	}

	var parsed searchResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("rag: failed to parse response: %w", err)
	}

	p.logger.Debug("context search completed",
		zap.Int("results", len(parsed.Results)))
	return parsed.Results, nil
}
