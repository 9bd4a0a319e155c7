package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/jarvis/internal/core"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAI talks to the OpenAI chat completions API through the go-openai SDK.
type OpenAI struct {
	client *openai.Client
	model  string
}

func NewOpenAI(apiKey, model string) *OpenAI {
	return NewOpenAIWithConfig(openai.DefaultConfig(apiKey), model)
}

func NewOpenAIWithConfig(cfg openai.ClientConfig, model string) *OpenAI {
	return &OpenAI{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (o *OpenAI) Chat(ctx context.Context, history []core.Message) (core.Message, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
	})
	if err != nil {
		return core.Message{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return core.Message{}, fmt.Errorf("no choices in response")
	}

	return core.Message{
		Role:    core.RoleAssistant,
		Content: resp.Choices[0].Message.Content,
	}, nil
}
