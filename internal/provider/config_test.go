package provider

import (
	"strings"
	"testing"
)

func validConfig(backend Backend) *Config {
	cfg := &Config{
		Backend:     backend,
		Model:       "some-model",
		APIKey:      "key",
		MaxTokens:   4096,
		Temperature: 0.2,
	}
	if backend == BackendAzure {
		cfg.BaseURL = "https://example.openai.azure.com"
		cfg.AzureDeployment = "gpt-4.1"
	}
	return cfg
}

func TestConfigValidate_AllBackends(t *testing.T) {
	t.Parallel()

	for _, backend := range []Backend{BackendOllama, BackendOpenAI, BackendAzure, BackendArk, BackendGemini} {
		backend := backend
		t.Run(string(backend), func(t *testing.T) {
			t.Parallel()
			if err := validConfig(backend).Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestConfigValidate_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		backend Backend
		wantSub string
	}{
		{name: "unknown backend", backend: Backend("watsonx"), mutate: func(*Config) {}, wantSub: "unknown backend"},
		{name: "zero max tokens", backend: BackendOllama, mutate: func(c *Config) { c.MaxTokens = 0 }, wantSub: "max tokens"},
		{name: "temperature too high", backend: BackendOllama, mutate: func(c *Config) { c.Temperature = 1.5 }, wantSub: "temperature"},
		{name: "negative temperature", backend: BackendOllama, mutate: func(c *Config) { c.Temperature = -0.1 }, wantSub: "temperature"},
		{name: "ollama without model", backend: BackendOllama, mutate: func(c *Config) { c.Model = "" }, wantSub: "OLLAMA_MODEL"},
		{name: "openai without key", backend: BackendOpenAI, mutate: func(c *Config) { c.APIKey = "" }, wantSub: "OPENAI_API_KEY"},
		{name: "azure without key", backend: BackendAzure, mutate: func(c *Config) { c.APIKey = "" }, wantSub: "AZURE_OPENAI_API_KEY"},
		{name: "azure without endpoint", backend: BackendAzure, mutate: func(c *Config) { c.BaseURL = "" }, wantSub: "AZURE_OPENAI_ENDPOINT"},
		{name: "azure without deployment", backend: BackendAzure, mutate: func(c *Config) { c.AzureDeployment = "" }, wantSub: "AZURE_OPENAI_DEPLOYMENT"},
		{name: "ark without key", backend: BackendArk, mutate: func(c *Config) { c.APIKey = "" }, wantSub: "ARK_API_KEY"},
		{name: "ark without model", backend: BackendArk, mutate: func(c *Config) { c.Model = "" }, wantSub: "ARK_MODEL"},
		{name: "gemini without key", backend: BackendGemini, mutate: func(c *Config) { c.APIKey = "" }, wantSub: "GOOGLE_API_KEY"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig(tt.backend)
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q does not mention %q", err, tt.wantSub)
			}
		})
	}
}
