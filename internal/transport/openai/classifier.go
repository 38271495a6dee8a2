// Package openai implements sequence classification over an
// OpenAI-compatible embeddings API (e.g. Nebius).
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/skillserve/skillapi/internal/domain"
	"github.com/skillserve/skillapi/internal/metrics"
	"github.com/skillserve/skillapi/internal/modelapi"
)

const providerName = "openai"

// Classifier scores candidate labels against a query by embedding
// similarity: the query and every label are embedded in one request and
// the cosine similarities form the logits row.
type Classifier struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	logger     *zap.Logger
}

// Config holds the embedding provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Logger     *zap.Logger
}

// NewClassifier creates an OpenAI-compatible embedding classifier.
func NewClassifier(cfg *Config) *Classifier {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return &Classifier{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		logger:     cfg.Logger,
	}
}

// SequenceClassification implements skill.Classifier. The response
// carries a single logits row, one score per label in input order.
func (c *Classifier) SequenceClassification(
	ctx context.Context, queryText string, labels []string,
) (modelapi.SequenceClassificationOutput, error) {
	req := openai.EmbeddingRequest{
		Input:          append([]string{queryText}, labels...),
		Model:          c.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if c.dimensions > 0 {
		req.Dimensions = c.dimensions
	}

	start := time.Now()

	resp, err := c.client.CreateEmbeddings(ctx, req)

	duration := time.Since(start)

	skillLabel := "sequence-classification"

	if err != nil {
		metrics.ModelRequestsTotal.WithLabelValues(providerName, skillLabel, "error").Inc()
		metrics.ModelErrorsTotal.WithLabelValues(providerName, skillLabel, "api_error").Inc()
		return modelapi.SequenceClassificationOutput{}, parseAPIError(err)
	}

	if len(resp.Data) != len(labels)+1 {
		metrics.ModelRequestsTotal.WithLabelValues(providerName, skillLabel, "error").Inc()
		metrics.ModelErrorsTotal.WithLabelValues(providerName, skillLabel, "bad_response").Inc()
		return modelapi.SequenceClassificationOutput{}, fmt.Errorf(
			"embedding response has %d vectors, want %d: %w",
			len(resp.Data), len(labels)+1, domain.ErrModelProviderError)
	}

	metrics.ModelRequestsTotal.WithLabelValues(providerName, skillLabel, "success").Inc()
	metrics.ModelRequestDuration.WithLabelValues(providerName, skillLabel).Observe(duration.Seconds())

	// The API may return vectors out of order; restore input order by Index.
	vectors := make([][]float32, len(labels)+1)
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			metrics.ModelErrorsTotal.WithLabelValues(providerName, skillLabel, "bad_response").Inc()
			return modelapi.SequenceClassificationOutput{}, fmt.Errorf(
				"embedding index %d out of range: %w", d.Index, domain.ErrModelProviderError)
		}
		vectors[d.Index] = d.Embedding
	}

	logits := make([]float64, len(labels))
	for i := range labels {
		logits[i] = cosine(vectors[0], vectors[i+1])
	}

	return modelapi.SequenceClassificationOutput{
		ModelOutputs: modelapi.ModelOutputs{Logits: [][]float64{logits}},
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Classifier) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrModelProviderError for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrModelProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("embedding API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("embedding API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("embedding request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body (Nebius error format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
