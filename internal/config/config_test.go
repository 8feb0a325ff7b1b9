package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("RAG_TOP_K", "")
	t.Setenv("API_RATE_LIMIT_RPS", "")
	t.Setenv("NATS_SUBJECT", "")

	cfg := Load()
	if cfg.LLMProvider != "ollama" {
		t.Fatalf("expected default provider ollama, got %q", cfg.LLMProvider)
	}
	if cfg.RAGTopK != 3 {
		t.Fatalf("expected default top k 3, got %d", cfg.RAGTopK)
	}
	if cfg.APIRateLimitRPS != 20 {
		t.Fatalf("expected default rate limit 20, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.NATSSubject != "knowledge.ingest" {
		t.Fatalf("expected default subject knowledge.ingest, got %q", cfg.NATSSubject)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("RAG_TOP_K", "5")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")
	t.Setenv("RESILIENCE_ENABLED", "false")

	cfg := Load()
	if cfg.LLMProvider != "openai" {
		t.Fatalf("expected provider override, got %q", cfg.LLMProvider)
	}
	if cfg.OpenAIModel != "gpt-4o" {
		t.Fatalf("expected model override, got %q", cfg.OpenAIModel)
	}
	if cfg.RAGTopK != 5 {
		t.Fatalf("expected top k 5, got %d", cfg.RAGTopK)
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit 2.5, got %v", cfg.APIRateLimitRPS)
	}
	if cfg.ResilienceEnabled {
		t.Fatalf("expected resilience disabled")
	}
}

func TestLoadFallsBackOnUnparsableValues(t *testing.T) {
	t.Setenv("RAG_TOP_K", "not-a-number")
	t.Setenv("API_RATE_LIMIT_RPS", "fast")
	t.Setenv("RESILIENCE_ENABLED", "sometimes")

	cfg := Load()
	if cfg.RAGTopK != 3 {
		t.Fatalf("expected fallback top k 3, got %d", cfg.RAGTopK)
	}
	if cfg.APIRateLimitRPS != 20 {
		t.Fatalf("expected fallback rate limit 20, got %v", cfg.APIRateLimitRPS)
	}
	if !cfg.ResilienceEnabled {
		t.Fatalf("expected fallback resilience enabled")
	}
}
