// Package inference is an HTTP client for a model inference API exposing
// sequence classification and extractive question answering.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/skillserve/skillapi/internal/domain"
	"github.com/skillserve/skillapi/internal/metrics"
	"github.com/skillserve/skillapi/internal/modelapi"
)

const providerName = "inference"

// Client calls the inference API over HTTP.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// Config holds the inference API settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewClient creates an inference API client.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		logger:  cfg.Logger,
	}
}

type classificationRequest struct {
	Input  [][]string `json:"input"`
	Labels []string   `json:"labels"`
}

type answeringRequest struct {
	Question string `json:"question"`
	Context  string `json:"context,omitempty"`
	TopK     int    `json:"top_k"`
}

// SequenceClassification implements skill.Classifier.
func (c *Client) SequenceClassification(
	ctx context.Context, queryText string, labels []string,
) (modelapi.SequenceClassificationOutput, error) {
	pairs := make([][]string, len(labels))
	for i, label := range labels {
		pairs[i] = []string{queryText, label}
	}

	var out modelapi.SequenceClassificationOutput
	err := c.post(ctx, "/sequence-classification", "sequence-classification",
		classificationRequest{Input: pairs, Labels: labels}, &out)
	if err != nil {
		return modelapi.SequenceClassificationOutput{}, err
	}
	return out, nil
}

// ReadAnswers implements skill.Reader.
func (c *Client) ReadAnswers(ctx context.Context, question, passage string) ([]modelapi.Answer, error) {
	var out modelapi.QuestionAnsweringOutput
	err := c.post(ctx, "/question-answering", "question-answering",
		answeringRequest{Question: question, Context: passage, TopK: 1}, &out)
	if err != nil {
		return nil, err
	}
	if len(out.Answers) == 0 {
		return nil, fmt.Errorf("empty answers in response: %w", domain.ErrModelProviderError)
	}
	return out.Answers[0], nil
}

// HealthCheck probes the API health endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("health request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path, skillLabel string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()

	resp, err := c.http.Do(req)

	duration := time.Since(start)

	if err != nil {
		metrics.ModelRequestsTotal.WithLabelValues(providerName, skillLabel, "error").Inc()
		metrics.ModelErrorsTotal.WithLabelValues(providerName, skillLabel, "network").Inc()
		return fmt.Errorf("inference request failed: %w: %w", err, domain.ErrModelProviderError)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		metrics.ModelRequestsTotal.WithLabelValues(providerName, skillLabel, "error").Inc()
		metrics.ModelErrorsTotal.WithLabelValues(providerName, skillLabel, "network").Inc()
		return fmt.Errorf("read response: %w: %w", err, domain.ErrModelProviderError)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.ModelRequestsTotal.WithLabelValues(providerName, skillLabel, "error").Inc()
		metrics.ModelErrorsTotal.WithLabelValues(providerName, skillLabel, "api_error").Inc()
		return fmt.Errorf("inference API error %d: %s: %w",
			resp.StatusCode, errorDetail(data), domain.ErrModelProviderError)
	}

	if err := json.Unmarshal(data, out); err != nil {
		metrics.ModelRequestsTotal.WithLabelValues(providerName, skillLabel, "error").Inc()
		metrics.ModelErrorsTotal.WithLabelValues(providerName, skillLabel, "bad_response").Inc()
		return fmt.Errorf("decode response: %w: %w", err, domain.ErrModelProviderError)
	}

	metrics.ModelRequestsTotal.WithLabelValues(providerName, skillLabel, "success").Inc()
	metrics.ModelRequestDuration.WithLabelValues(providerName, skillLabel).Observe(duration.Seconds())
	return nil
}

// errorDetail extracts the "detail" field from a JSON error body, falling
// back to the raw body.
func errorDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return string(body)
}
