package llm

import (
	"testing"

	"github.com/mkarel/prospect/internal/model"
)

func TestNewProvider_Cerebras(t *testing.T) {
	p, err := NewProvider(model.LLMConfig{Provider: "cerebras", APIKey: "test-key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "cerebras" {
		t.Errorf("expected cerebras, got %s", p.Name())
	}
}

func TestNewProvider_DefaultsToCerebras(t *testing.T) {
	p, err := NewProvider(model.LLMConfig{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "cerebras" {
		t.Errorf("expected cerebras default, got %s", p.Name())
	}
}

func TestNewProvider_RequiresAPIKey(t *testing.T) {
	if _, err := NewProvider(model.LLMConfig{Provider: "openai"}); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestNewProvider_Unknown(t *testing.T) {
	if _, err := NewProvider(model.LLMConfig{Provider: "mystery", APIKey: "k"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
