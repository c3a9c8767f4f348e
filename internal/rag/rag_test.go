package rag

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPProvider_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "left-handed gardening tools", req.Query)
		assert.Equal(t, 3, req.TopK)

		_ = json.NewEncoder(w).Encode(searchResponse{Results: []Snippet{
			{SourceID: "doc-1", Text: "Market grew 12% in 2025.", Score: 0.91},
			{SourceID: "doc-2", Text: "Niche tools command premium pricing.", Score: 0.84},
		}})
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, nil)
	snippets, err := p.Search(context.Background(), "left-handed gardening tools", 3)
	require.NoError(t, err)
	require.Len(t, snippets, 2)
	assert.Equal(t, "doc-1", snippets[0].SourceID)
	assert.InDelta(t, 0.91, snippets[0].Score, 0.001)
}

func TestHTTPProvider_SearchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index rebuilding", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, nil)
	_, err := p.Search(context.Background(), "query", 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestNop_ReturnsNothing(t *testing.T) {
	snippets, err := Nop{}.Search(context.Background(), "anything", 5)
	assert.NoError(t, err)
	assert.Nil(t, snippets)
}
