// LLMClient - Simple wrapper around providers.

package llm

import (
	"context"
	"sync"
)

// Client wraps a Provider with a simple interface and keeps a running
// token count across calls.
type Client struct {
	provider Provider

	mu    sync.Mutex
	usage TokenUsage
	calls int
}

// NewClient creates a new LLM client from a provider.
func NewClient(provider Provider) *Client {
	return &Client{provider: provider}
}

// Chat sends a chat completion request and returns just the content.
func (c *Client) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	response, err := c.provider.Chat(ctx, messages)
	c.record(response.Usage)
	if err != nil {
		return "", err
	}
	return response.Content, nil
}

// Complete sends prompt as a single user message. It makes Client a Completer.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.Chat(ctx, []ChatMessage{UserMessage(prompt)})
}

// Usage returns the accumulated token usage and number of calls made.
func (c *Client) Usage() (TokenUsage, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usage, c.calls
}

// Provider returns the underlying provider.
func (c *Client) Provider() Provider {
	return c.provider
}

func (c *Client) record(usage *TokenUsage) {
	c.mu.Lock()
	c.calls++
	c.usage.Add(usage)
	c.mu.Unlock()
}

var _ Completer = (*Client)(nil)
