// Package llm wraps the configured language model behind a small
// prompt-in, text-out interface.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/raphaelgruber/bookgraph/internal/config"
	"github.com/raphaelgruber/bookgraph/internal/metrics"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// SystemPrompt primes the model for structured literary analysis.
const SystemPrompt = "You are a literary analysis expert who provides responses in well-structured JSON format."

// ErrAPIFailed indicates the model call itself failed (network, auth,
// quota). Use errors.Is() to check for it in calling code.
var ErrAPIFailed = errors.New("llm api call failed")

// Model wraps a langchaingo LLM (or Bedrock) for text generation.
type Model struct {
	llm       llms.Model
	bedrock   *bedrockClient
	modelName string
	metrics   *metrics.Collector
}

// NewModel creates an LLM model based on configuration.
func NewModel(cfg config.Config, mc *metrics.Collector) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		opts := []openai.Option{
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		}
		// An OpenAI-compatible endpoint (SambaNova by default) is allowed.
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.OpenAIBaseURL))
		}
		model, err = openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	case config.ProviderBedrock:
		bc, err := newBedrockClient(cfg.AWSRegion, cfg.LLMModel)
		if err != nil {
			return nil, fmt.Errorf("create bedrock model: %w", err)
		}
		return &Model{
			bedrock:   bc,
			modelName: cfg.LLMModel,
			metrics:   mc,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return &Model{
		llm:       model,
		modelName: cfg.LLMModel,
		metrics:   mc,
	}, nil
}

// Generate generates text based on a prompt.
func (m *Model) Generate(ctx context.Context, prompt string) (string, error) {
	return m.GenerateWithSystem(ctx, SystemPrompt, prompt)
}

// GenerateWithSystem generates text with a system prompt.
func (m *Model) GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	start := time.Now()
	response, err := m.generate(ctx, systemPrompt, userPrompt)
	m.metrics.RecordLLM(metrics.OpLLMGenerate, time.Since(start), len(userPrompt), len(response))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAPIFailed, err)
	}
	return response, nil
}

func (m *Model) generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if m.bedrock != nil {
		return m.bedrock.generate(ctx, systemPrompt, userPrompt)
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	response, err := m.llm.GenerateContent(ctx, messages)
	if err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices")
	}
	return response.Choices[0].Content, nil
}

// Model returns the LLM model name.
func (m *Model) Model() string {
	return m.modelName
}
