// Package llm provides the model gateway: a uniform calling convention
// over the registered backend families. The gateway normalizes request
// and response shapes and surfaces non-2xx upstream statuses as typed
// failures. It performs no retries; failure handling belongs to the
// debate orchestrator, per round.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"dev.veridex.engine/internal/metrics"
	"dev.veridex.engine/internal/models"
)

const (
	// FamilyOpenAI is any OpenAI-compatible chat completions endpoint.
	FamilyOpenAI = "openai"
	// FamilyAnthropic is the Anthropic messages API.
	FamilyAnthropic = "anthropic"

	// DefaultTimeout bounds a single backend call.
	DefaultTimeout = 120 * time.Second
	// DefaultMaxTokens applies when the caller sets none.
	DefaultMaxTokens = 2048
)

// CallOptions tune a single gateway call.
type CallOptions struct {
	Temperature float64
	MaxTokens   int
	// ZDR requests zero data retention from the backend: the provider
	// must not retain the input for training.
	ZDR bool
	// DefaultText is returned when the response is well-formed but
	// carries no content and no reasoning text.
	DefaultText string
}

// Backend is a registered model endpoint.
type Backend struct {
	Name    string `yaml:"name"`
	Family  string `yaml:"family"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// UpstreamCallError is a non-2xx response from a model backend.
type UpstreamCallError struct {
	Backend string
	Status  int
	Body    string
}

func (e *UpstreamCallError) Error() string {
	return fmt.Sprintf("%s: API error: %d - %s", e.Backend, e.Status, e.Body)
}

// IsUpstream reports whether err wraps an UpstreamCallError.
func IsUpstream(err error) bool {
	var ue *UpstreamCallError
	return errors.As(err, &ue)
}

// Gateway dispatches calls to registered backends by family.
type Gateway struct {
	backends   map[string]Backend
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewGateway creates a gateway over the given backends.
func NewGateway(backends []Backend, logger *zap.Logger, m *metrics.Metrics) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	byName := make(map[string]Backend, len(backends))
	for _, b := range backends {
		byName[b.Name] = b
	}
	return &Gateway{
		backends:   byName,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logger,
		metrics:    m,
	}
}

// Backends returns the registered backend names.
func (g *Gateway) Backends() []string {
	names := make([]string, 0, len(g.backends))
	for name := range g.backends {
		names = append(names, name)
	}
	return names
}

// Call issues one completion request against the backend named by ref.
func (g *Gateway) Call(ctx context.Context, ref models.ModelRef, messages []models.Message, opts CallOptions) (*models.Completion, error) {
	backend, ok := g.backends[ref.Provider]
	if !ok {
		return nil, fmt.Errorf("gateway: unknown backend %q", ref.Provider)
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}

	start := time.Now()
	var completion *models.Completion
	var err error
	switch backend.Family {
	case FamilyOpenAI:
		completion, err = g.callOpenAI(ctx, backend, ref.Model, messages, opts)
	case FamilyAnthropic:
		completion, err = g.callAnthropic(ctx, backend, ref.Model, messages, opts)
	default:
		return nil, fmt.Errorf("gateway: unknown backend family %q for %q", backend.Family, backend.Name)
	}

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	g.metrics.ObserveModelCall(backend.Name, outcome, time.Since(start))
	g.logger.Debug("model call finished",
		zap.String("backend", backend.Name),
		zap.String("model", ref.Model),
		zap.String("outcome", outcome),
		zap.Duration("duration", time.Since(start)))
	return completion, err
}
