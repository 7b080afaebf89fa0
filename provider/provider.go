package provider

import (
	"context"
	"errors"

	"github.com/aminajavaid30/ai-nexus-herald/config"
	"github.com/aminajavaid30/ai-nexus-herald/models"
	openai_provider "github.com/aminajavaid30/ai-nexus-herald/provider/openai"
)

// Client represents different LLM providers
type Client string

const (
	Groq      Client = "groq"
	OpenAI    Client = "openai"
	Anthropic Client = "anthropic"
)

// Provider is the interface that all LLM implementations must satisfy
type Provider interface {
	ChatCompletion(ctx context.Context, messages []models.Message, tools []models.ToolSpec) (models.Message, error)
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// NewProvider creates a new LLM client based on the provided configuration.
// Groq exposes an OpenAI-compatible API, so both share one implementation.
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	switch Client(cfg.Provider) {
	case Groq, OpenAI:
		if cfg.APIKey == "" {
			return nil, errors.New("LLM API key not set")
		}
		return openai_provider.NewClient(openai_provider.Options{
			APIKey:         cfg.APIKey,
			BaseURL:        cfg.BaseURL,
			Model:          cfg.Model,
			EmbeddingModel: cfg.EmbeddingModel,
			Temperature:    cfg.Temperature,
			MaxTokens:      cfg.MaxTokens,
			Timeout:        cfg.Timeout,
		}), nil
	case Anthropic:
		return nil, errors.New("anthropic client not implemented yet")
	default:
		return nil, errors.New("unsupported LLM provider")
	}
}
