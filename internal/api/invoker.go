package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
)

// Role tags a message with its conversational origin.
type Role string

const (
	// RoleSystem marks instructions that frame the model's behavior.
	RoleSystem Role = "system"
	// RoleUser marks the request content.
	RoleUser Role = "user"
	// RoleAssistant marks prior model output in a conversation.
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged entry in a model request.
type Message struct {
	Role    Role
	Content string
}

// Invoker is the model-invocation boundary the stage agents depend on.
// Implementations are fallible and latency-bearing; callers must treat
// every call as a potential multi-second stall.
type Invoker interface {
	// Invoke sends the ordered messages to the model and returns the
	// generated text, or an error on network, quota, or timeout problems.
	Invoke(ctx context.Context, messages []Message) (string, error)
}

const invokeMaxTokens = 4096

// Invoke sends a single request to the configured model and returns the
// concatenated text of the response. System messages are folded into the
// request's system prompt; the rest become the conversation turns.
// Transport errors are retried up to the configured retry budget.
func (c *Client) Invoke(ctx context.Context, messages []Message) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var system []anthropic.TextBlockParam
	var turns []anthropic.MessageParam
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case RoleAssistant:
			turns = append(turns, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			turns = append(turns, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	if len(turns) == 0 {
		return "", fmt.Errorf("invoke: no user messages")
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		resp, err := c.sdk().Messages.New(ctx, anthropic.MessageNewParams{
			Model:     c.model,
			MaxTokens: invokeMaxTokens,
			System:    system,
			Messages:  turns,
		})
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return "", fmt.Errorf("invoke model: %w", err)
			}
			continue
		}

		c.tracker.Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

		var sb strings.Builder
		for _, block := range resp.Content {
			if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
				sb.WriteString(variant.Text)
			}
		}
		return sb.String(), nil
	}

	return "", fmt.Errorf("invoke model after %d attempts: %w", c.retries+1, lastErr)
}
