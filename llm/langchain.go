// LangChain Provider - any OpenAI-compatible endpoint through langchaingo.
//
// Information Hiding:
// - langchaingo client options (token, model, base URL)
// - Flattening chat messages into langchaingo message content

package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// LangChainProvider implements the Provider interface on top of a
// langchaingo llms.Model.
type LangChainProvider struct {
	llm         llms.Model
	model       string
	maxTokens   int
	temperature float64
	stop        []string
}

// NewLangChainProvider creates a provider for an OpenAI-compatible endpoint.
// An empty baseURL uses the public OpenAI API.
func NewLangChainProvider(apiKey, baseURL, model string, maxTokens uint32, temperature float32) (*LangChainProvider, error) {
	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(model),
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create langchaingo client: %w", err)
	}
	return NewLangChainProviderFromModel(client, model, maxTokens, temperature), nil
}

// NewLangChainProviderFromModel wraps an already constructed llms.Model.
func NewLangChainProviderFromModel(m llms.Model, model string, maxTokens uint32, temperature float32) *LangChainProvider {
	return &LangChainProvider{
		llm:         m,
		model:       model,
		maxTokens:   int(maxTokens),
		temperature: float64(temperature),
	}
}

// Name returns the provider name.
func (p *LangChainProvider) Name() string {
	return "langchain"
}

// Model returns the current model.
func (p *LangChainProvider) Model() string {
	return p.model
}

func (p *LangChainProvider) setStop(stop []string) {
	p.stop = stop
}

// Chat sends a chat completion request.
func (p *LangChainProvider) Chat(ctx context.Context, messages []ChatMessage) (LLMResponse, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		content = append(content, llms.TextParts(langchainRole(m.Role), m.Content))
	}

	opts := []llms.CallOption{
		llms.WithMaxTokens(p.maxTokens),
		llms.WithTemperature(p.temperature),
	}
	if len(p.stop) > 0 {
		opts = append(opts, llms.WithStopWords(p.stop))
	}

	resp, err := p.llm.GenerateContent(ctx, content, opts...)
	if err != nil {
		return LLMResponse{}, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return LLMResponse{}, fmt.Errorf("empty response from langchain model")
	}

	choice := resp.Choices[0]
	out := LLMResponse{Content: choice.Content}
	prompt, _ := choice.GenerationInfo["PromptTokens"].(int)
	completion, _ := choice.GenerationInfo["CompletionTokens"].(int)
	if prompt > 0 || completion > 0 {
		out.Usage = &TokenUsage{
			PromptTokens:     uint32(prompt),
			CompletionTokens: uint32(completion),
			TotalTokens:      uint32(prompt + completion),
		}
	}
	return out, nil
}

func langchainRole(role string) llms.ChatMessageType {
	switch role {
	case "system":
		return llms.ChatMessageTypeSystem
	case "assistant":
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}

// Verify LangChainProvider implements Provider
var _ Provider = (*LangChainProvider)(nil)
