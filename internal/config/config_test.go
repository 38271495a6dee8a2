package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	yaml := `
http:
  port: 8080
model:
  provider: inference
  inference:
    base_url: http://models.internal:8000
    api_key: ${SKILLAPI_TEST_MODEL_KEY}
cache:
  addrs: ["localhost:6379"]
logging:
  level: debug
`
	if err := os.WriteFile(filepath.Join(dir, "test.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", dir)
	t.Setenv("SKILLAPI_TEST_MODEL_KEY", "secret-key")

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTP.Port != 8080 {
		t.Errorf("HTTP.Port = %d", cfg.HTTP.Port)
	}
	if cfg.Model.Inference.APIKey != "secret-key" {
		t.Errorf("env expansion failed: %q", cfg.Model.Inference.APIKey)
	}
	if !cfg.Cache.Enabled() {
		t.Error("Cache.Enabled() = false")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}

	// Defaults applied
	if cfg.Cache.KeyPrefix != "skillapi:" {
		t.Errorf("Cache.KeyPrefix = %q", cfg.Cache.KeyPrefix)
	}
	if cfg.Cache.TTLSec != 300 {
		t.Errorf("Cache.TTLSec = %d", cfg.Cache.TTLSec)
	}
	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("HTTP.ReadTimeoutSec = %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Model.Inference.TimeoutSec != 30 {
		t.Errorf("Model.Inference.TimeoutSec = %d", cfg.Model.Inference.TimeoutSec)
	}
}

func TestValidate_UnknownProvider(t *testing.T) {
	cfg := Config{
		HTTP:  HTTPConfig{Port: 8080},
		Model: ModelConfig{Provider: "huggingface"},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestValidate_OpenAIRequiresModel(t *testing.T) {
	cfg := Config{
		HTTP:  HTTPConfig{Port: 8080},
		Model: ModelConfig{Provider: "openai"},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for openai provider without model")
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 70000},
		Model: ModelConfig{
			Provider:  "inference",
			Inference: InferenceConfig{BaseURL: "http://x"},
		},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestCacheConfig_Enabled(t *testing.T) {
	if (CacheConfig{}).Enabled() {
		t.Error("empty cache config reports enabled")
	}
	if !(CacheConfig{Addrs: []string{"localhost:6379"}}).Enabled() {
		t.Error("configured cache reports disabled")
	}
}
