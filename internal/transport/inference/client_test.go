package inference

import (
	"context"
	"encoding/json"
	"errors"
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

func newTestClient(url string) *Client {
	return NewClient(&Config{
		BaseURL: url,
		APIKey:  "test-key",
		Logger:  zap.NewNop(),
	})
}

func TestClient_SequenceClassification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sequence-classification" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}

		var req classificationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Input) != 2 {
			t.Errorf("input pairs = %d, want 2", len(req.Input))
		}
		if req.Input[0][0] != "is it raining" || req.Input[0][1] != "yes" {
			t.Errorf("unexpected first pair: %v", req.Input[0])
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"model_outputs": map[string]any{
				"logits": [][]float64{{0.9, 0.1}},
			},
		})
	}))
	defer server.Close()

	out, err := newTestClient(server.URL).SequenceClassification(
		context.Background(), "is it raining", []string{"yes", "no"})
	if err != nil {
		t.Fatalf("SequenceClassification failed: %v", err)
	}

	if len(out.ModelOutputs.Logits) != 1 {
		t.Fatalf("logits rows = %d, want 1", len(out.ModelOutputs.Logits))
	}
	if out.ModelOutputs.Logits[0][0] != 0.9 {
		t.Errorf("logits[0][0] = %f, want 0.9", out.ModelOutputs.Logits[0][0])
	}
}

func TestClient_ReadAnswers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/question-answering" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req answeringRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Question != "who wrote it" {
			t.Errorf("question = %q", req.Question)
		}
		if req.Context != "It was written by Ada." {
			t.Errorf("context = %q", req.Context)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"answers": [][]map[string]any{{
				{"answer": "Ada", "score": 0.83, "start": 18, "end": 21},
			}},
		})
	}))
	defer server.Close()

	answers, err := newTestClient(server.URL).ReadAnswers(
		context.Background(), "who wrote it", "It was written by Ada.")
	if err != nil {
		t.Fatalf("ReadAnswers failed: %v", err)
	}

	if len(answers) != 1 {
		t.Fatalf("answers = %d, want 1", len(answers))
	}
	a := answers[0]
	if a.Answer != "Ada" || a.Score != 0.83 || a.Start != 18 || a.End != 21 {
		t.Errorf("answer = %+v", a)
	}
}

func TestClient_ReadAnswers_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"answers": [][]map[string]any{}})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ReadAnswers(context.Background(), "who", "passage")
	if !errors.Is(err, domain.ErrModelProviderError) {
		t.Fatalf("error = %v, expected ErrModelProviderError", err)
	}
}

func TestClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"detail": "model loading"})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).SequenceClassification(
		context.Background(), "is it raining", []string{"yes"})
	if !errors.Is(err, domain.ErrModelProviderError) {
		t.Fatalf("error = %v, expected ErrModelProviderError", err)
	}
}

func TestClient_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).SequenceClassification(
		context.Background(), "is it raining", []string{"yes"})
	if !errors.Is(err, domain.ErrModelProviderError) {
		t.Fatalf("error = %v, expected ErrModelProviderError", err)
	}
}

func TestClient_HealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if err := newTestClient(server.URL).HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}
}
