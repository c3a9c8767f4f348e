package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"dev.veridex.engine/internal/models"
)

const anthropicVersion = "2023-06-01"

// anthropicRequest is the Anthropic messages API request shape. The
// system prompt travels in its own field, not as a message.
type anthropicRequest struct {
	Model       string           `json:"model"`
	MaxTokens   int              `json:"max_tokens"`
	Temperature float64          `json:"temperature"`
	System      string           `json:"system,omitempty"`
	Messages    []models.Message `json:"messages"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type anthropicResponse struct {
	ID      string                  `json:"id"`
	Content []anthropicContentBlock `json:"content"`
}

func (g *Gateway) callAnthropic(ctx context.Context, backend Backend, model string, messages []models.Message, opts CallOptions) (*models.Completion, error) {
	var system strings.Builder
	chat := make([]models.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == "system" {
			if system.Len() > 0 {
				system.WriteString("\n\n")
			}
			system.WriteString(m.Content)
			continue
		}
		chat = append(chat, m)
	}

	apiReq := anthropicRequest{
		Model:       model,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		System:      system.String(),
		Messages:    chat,
	}

	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to marshal request: %w", backend.Name, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, backend.BaseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create request: %w", backend.Name, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", backend.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	if opts.ZDR {
		httpReq.Header.Set("X-Zero-Data-Retention", "true")
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: API request failed: %w", backend.Name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read response: %w", backend.Name, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamCallError{Backend: backend.Name, Status: resp.StatusCode, Body: string(respBody)}
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("%s: failed to parse response: %w", backend.Name, err)
	}

	var text strings.Builder
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	out := text.String()
	if out == "" {
		out = opts.DefaultText
	}

	return &models.Completion{Text: out, Raw: respBody}, nil
}
