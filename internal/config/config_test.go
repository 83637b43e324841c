package config

import (
	"os"
	"testing"
)

const sampleConfig = `
server:
  host: 127.0.0.1
  port: "9090"
line:
  channel_secret: secret
  channel_access_token: token
llm:
  base_url: https://api.example.com
  api_key: dummy
  model: gpt-4o
  system_prompts:
    - you are a polite assistant
history:
  backend: badger
  path: /tmp/history
  window_size: 5
log:
  level: debug
`

// TestLoad verifies that Load unmarshals a full configuration file.
func TestLoad(t *testing.T) {
	tmp, err := os.CreateTemp(t.TempDir(), "cfg-*.yaml")
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	if _, err := tmp.WriteString(sampleConfig); err != nil {
		t.Fatalf("write: %v", err)
	}
	tmp.Close()

	t.Setenv("CONFIG_PATH", tmp.Name())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("unexpected port: %s", cfg.Server.Port)
	}
	if cfg.Line.ChannelSecret != "secret" {
		t.Fatalf("unexpected channel secret: %s", cfg.Line.ChannelSecret)
	}
	if cfg.History.Backend != "badger" || cfg.History.WindowSize != 5 {
		t.Fatalf("unexpected history config: %+v", cfg.History)
	}
	if len(cfg.LLM.SystemPrompts) != 1 {
		t.Fatalf("unexpected system prompts: %v", cfg.LLM.SystemPrompts)
	}
}

// TestLoad_Defaults verifies defaults applied over a minimal file.
func TestLoad_Defaults(t *testing.T) {
	tmp, err := os.CreateTemp(t.TempDir(), "cfg-*.yaml")
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	minimal := "line:\n  channel_secret: s\n  channel_access_token: t\nllm:\n  api_key: k\n"
	if _, err := tmp.WriteString(minimal); err != nil {
		t.Fatalf("write: %v", err)
	}
	tmp.Close()

	t.Setenv("CONFIG_PATH", tmp.Name())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.History.WindowSize != 3 {
		t.Fatalf("expected default window size 3, got %d", cfg.History.WindowSize)
	}
	if cfg.History.Backend != "sqlite" {
		t.Fatalf("expected default backend sqlite, got %s", cfg.History.Backend)
	}
	if cfg.Line.APIBase != "https://api.line.me" {
		t.Fatalf("expected default api base, got %s", cfg.Line.APIBase)
	}
	if cfg.LLM.Model != "gpt-3.5-turbo" {
		t.Fatalf("expected default model, got %s", cfg.LLM.Model)
	}
}
