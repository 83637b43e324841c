package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/linegpt/relay/internal/store"
)

// CompletionError reports a failed or unusable completion call. The invoker
// never retries; the caller decides what a failed run means.
type CompletionError struct {
	Err error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion: %v", e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

// Invoker shapes completion requests: fixed system prompts first, then the
// conversation window in order, then the new user message last.
type Invoker struct {
	client        Client
	model         string
	systemPrompts []string
}

// NewInvoker creates an Invoker backed by the given client.
func NewInvoker(client Client, model string, systemPrompts []string) *Invoker {
	return &Invoker{
		client:        client,
		model:         model,
		systemPrompts: systemPrompts,
	}
}

// Complete issues one completion request for the window plus the new user
// text and returns the top choice's content.
func (i *Invoker) Complete(ctx context.Context, window []store.Message, userText string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(i.systemPrompts)+len(window)+1)
	for _, prompt := range i.systemPrompts {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: prompt,
		})
	}
	for _, msg := range window {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userText,
	})

	resp, err := i.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    i.model,
		Messages: messages,
	})
	if err != nil {
		return "", &CompletionError{Err: err}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &CompletionError{Err: fmt.Errorf("provider returned no usable choice")}
	}
	return resp.Choices[0].Message.Content, nil
}
