package openai

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/skillserve/skillapi/internal/domain"
	"github.com/skillserve/skillapi/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterModelMetrics()
	os.Exit(m.Run())
}

type embeddingDatum struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// openaiEmbeddingResponse mirrors the OpenAI-compatible API embedding response.
type openaiEmbeddingResponse struct {
	Object string           `json:"object"`
	Data   []embeddingDatum `json:"data"`
	Model  string           `json:"model"`
	Usage  struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

func embeddingServer(t *testing.T, data []embeddingDatum) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}

		resp := openaiEmbeddingResponse{Object: "list", Model: "test-model", Data: data}
		resp.Usage.PromptTokens = 10
		resp.Usage.TotalTokens = 10

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestClassifier_SequenceClassification(t *testing.T) {
	// Query aligned with the first label, orthogonal to the second.
	server := embeddingServer(t, []embeddingDatum{
		{Object: "embedding", Embedding: []float32{1, 0}, Index: 0},
		{Object: "embedding", Embedding: []float32{1, 0}, Index: 1},
		{Object: "embedding", Embedding: []float32{0, 1}, Index: 2},
	})
	defer server.Close()

	cls := NewClassifier(&Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	out, err := cls.SequenceClassification(context.Background(), "is it raining", []string{"yes", "no"})
	if err != nil {
		t.Fatalf("SequenceClassification failed: %v", err)
	}

	if len(out.ModelOutputs.Logits) != 1 {
		t.Fatalf("expected 1 logits row, got %d", len(out.ModelOutputs.Logits))
	}
	logits := out.ModelOutputs.Logits[0]
	if len(logits) != 2 {
		t.Fatalf("expected 2 logits, got %d", len(logits))
	}
	if math.Abs(logits[0]-1) > 1e-9 {
		t.Errorf("logits[0] = %f, expected 1", logits[0])
	}
	if math.Abs(logits[1]) > 1e-9 {
		t.Errorf("logits[1] = %f, expected 0", logits[1])
	}
}

func TestClassifier_RestoresOrderByIndex(t *testing.T) {
	// Vectors returned out of order; Index wins over position.
	server := embeddingServer(t, []embeddingDatum{
		{Object: "embedding", Embedding: []float32{0, 1}, Index: 2},
		{Object: "embedding", Embedding: []float32{1, 0}, Index: 0},
		{Object: "embedding", Embedding: []float32{1, 0}, Index: 1},
	})
	defer server.Close()

	cls := NewClassifier(&Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	out, err := cls.SequenceClassification(context.Background(), "is it raining", []string{"yes", "no"})
	if err != nil {
		t.Fatalf("SequenceClassification failed: %v", err)
	}

	logits := out.ModelOutputs.Logits[0]
	if logits[0] <= logits[1] {
		t.Errorf("logits = %v, expected first label to score higher", logits)
	}
}

func TestClassifier_CountMismatch(t *testing.T) {
	server := embeddingServer(t, []embeddingDatum{
		{Object: "embedding", Embedding: []float32{1, 0}, Index: 0},
	})
	defer server.Close()

	cls := NewClassifier(&Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	_, err := cls.SequenceClassification(context.Background(), "is it raining", []string{"yes", "no"})
	if !errors.Is(err, domain.ErrModelProviderError) {
		t.Fatalf("error = %v, expected ErrModelProviderError", err)
	}
}

func TestClassifier_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "rate limit exceeded",
				"type":    "rate_limit_error",
			},
		})
	}))
	defer server.Close()

	cls := NewClassifier(&Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	_, err := cls.SequenceClassification(context.Background(), "is it raining", []string{"yes"})
	if !errors.Is(err, domain.ErrModelProviderError) {
		t.Fatalf("error = %v, expected ErrModelProviderError", err)
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2}, []float32{1, 2}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("cosine = %f, want %f", got, tt.want)
			}
		})
	}
}
