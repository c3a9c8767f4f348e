package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"dev.veridex.engine/internal/models"
)

// openAIRequest is the OpenAI-compatible chat completion request shape.
type openAIRequest struct {
	Model       string           `json:"model"`
	Messages    []models.Message `json:"messages"`
	MaxTokens   int              `json:"max_tokens,omitempty"`
	Temperature float64          `json:"temperature"`
	// Store false opts the request out of provider-side retention.
	Store *bool `json:"store,omitempty"`
}

type openAIChoiceMessage struct {
	Role             string `json:"role"`
	Content          string `json:"content"`
	Reasoning        string `json:"reasoning,omitempty"`
	ReasoningContent string `json:"reasoning_content,omitempty"`
}

type openAIChoice struct {
	Index        int                 `json:"index"`
	Message      openAIChoiceMessage `json:"message"`
	FinishReason string              `json:"finish_reason"`
}

type openAIResponse struct {
	ID      string         `json:"id"`
	Choices []openAIChoice `json:"choices"`
}

func (g *Gateway) callOpenAI(ctx context.Context, backend Backend, model string, messages []models.Message, opts CallOptions) (*models.Completion, error) {
	apiReq := openAIRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	if opts.ZDR {
		f := false
		apiReq.Store = &f
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
	httpReq.Header.Set("Authorization", "Bearer "+backend.APIKey)

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

	var apiResp openAIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return nil, fmt.Errorf("%s: failed to parse response: %w", backend.Name, err)
	}

	text := opts.DefaultText
	if len(apiResp.Choices) > 0 {
		msg := apiResp.Choices[0].Message
		switch {
		case msg.Content != "":
			text = msg.Content
		case msg.Reasoning != "":
			text = msg.Reasoning
		case msg.ReasoningContent != "":
			text = msg.ReasoningContent
		}
	}

	return &models.Completion{Text: text, Raw: respBody}, nil
}
