package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if len(cfg.Sources) != 5 {
		t.Fatalf("expected the five regulator sources, got %d", len(cfg.Sources))
	}

	modes := map[string]int{}
	for _, src := range cfg.Sources {
		modes[src.Mode]++
		if src.Limit != 10 {
			t.Fatalf("source %s limit = %d, want 10", src.Name, src.Limit)
		}
	}
	if modes["feed"] != 3 || modes["page"] != 1 || modes["rendered"] != 1 {
		t.Fatalf("unexpected mode distribution: %v", modes)
	}

	if cfg.OpenAI.RateLimitDelay.Std() != 4500*time.Millisecond {
		t.Fatalf("unexpected rate limit delay: %v", cfg.OpenAI.RateLimitDelay.Std())
	}
	if cfg.HTTP.RetryAttempts != 3 {
		t.Fatalf("unexpected retry attempts: %d", cfg.HTTP.RetryAttempts)
	}
	if cfg.Outputs.CorpusPath != "articles.json" {
		t.Fatalf("unexpected corpus path: %s", cfg.Outputs.CorpusPath)
	}
}

func TestLoadMergesFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := `
logging:
  level: debug
http:
  politenessDelay: 2s
openai:
  rateLimitDelay: 1.5s
sources:
  - name: Test Feed
    url: https://example.org/feed.xml
    mode: feed
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(openAIAPIKeyEnv, "env-key")

	cfg := Load()

	if cfg.Logging.Level != "debug" {
		t.Fatalf("file level not applied: %s", cfg.Logging.Level)
	}
	if cfg.HTTP.PolitenessDelay.Std() != 2*time.Second {
		t.Fatalf("duration not parsed: %v", cfg.HTTP.PolitenessDelay.Std())
	}
	if cfg.OpenAI.RateLimitDelay.Std() != 1500*time.Millisecond {
		t.Fatalf("rate limit delay not applied: %v", cfg.OpenAI.RateLimitDelay.Std())
	}
	if cfg.OpenAI.APIKey != "env-key" {
		t.Fatalf("env override not applied: %q", cfg.OpenAI.APIKey)
	}

	// File sources replace defaults; the missing limit falls back.
	if len(cfg.Sources) != 1 || cfg.Sources[0].Name != "Test Feed" {
		t.Fatalf("file sources not applied: %+v", cfg.Sources)
	}
	if cfg.Sources[0].Limit != 10 {
		t.Fatalf("default limit not applied: %d", cfg.Sources[0].Limit)
	}

	// Defaults survive where the file is silent.
	if cfg.HTTP.Timeout.Std() != 30*time.Second {
		t.Fatalf("default timeout lost: %v", cfg.HTTP.Timeout.Std())
	}
}
