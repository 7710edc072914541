// Ollama Provider for locally hosted models.
//
// Information Hiding:
// - Server URL parsing and client creation
// - Option map format (temperature, num_predict, stop)
// - Non-streaming chat request

package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
)

// DefaultOllamaURL is used when no base URL is configured.
const DefaultOllamaURL = "http://localhost:11434"

// OllamaProvider implements the Provider interface for an Ollama server.
// It needs no API key.
type OllamaProvider struct {
	client      *api.Client
	model       string
	maxTokens   int
	temperature float32
	stop        []string
}

// NewOllamaProvider creates a provider talking to baseURL.
func NewOllamaProvider(baseURL, model string, maxTokens uint32, temperature float32) (*OllamaProvider, error) {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}

	return &OllamaProvider{
		client:      api.NewClient(parsedURL, http.DefaultClient),
		model:       model,
		maxTokens:   int(maxTokens),
		temperature: temperature,
	}, nil
}

// Name returns the provider name.
func (p *OllamaProvider) Name() string {
	return "ollama"
}

// Model returns the current model.
func (p *OllamaProvider) Model() string {
	return p.model
}

func (p *OllamaProvider) setStop(stop []string) {
	p.stop = stop
}

// Chat sends a single non-streaming chat request.
func (p *OllamaProvider) Chat(ctx context.Context, messages []ChatMessage) (LLMResponse, error) {
	msgs := make([]api.Message, len(messages))
	for i, m := range messages {
		msgs[i] = api.Message{Role: m.Role, Content: m.Content}
	}

	options := map[string]any{
		"temperature": p.temperature,
		"num_predict": p.maxTokens,
	}
	if len(p.stop) > 0 {
		options["stop"] = p.stop
	}

	stream := false
	req := &api.ChatRequest{
		Model:    p.model,
		Messages: msgs,
		Stream:   &stream,
		Options:  options,
	}

	var out LLMResponse
	err := p.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		out.Content += resp.Message.Content
		if resp.Done {
			out.Usage = &TokenUsage{
				PromptTokens:     uint32(resp.PromptEvalCount),
				CompletionTokens: uint32(resp.EvalCount),
				TotalTokens:      uint32(resp.PromptEvalCount + resp.EvalCount),
			}
		}
		return nil
	})
	if err != nil {
		return LLMResponse{}, fmt.Errorf("chat completion failed: %w", err)
	}
	return out, nil
}

// Verify OllamaProvider implements Provider
var _ Provider = (*OllamaProvider)(nil)
