package llm

import (
	"context"
	"fmt"

	"github.com/conneroisu/groq-go"

	"pitchreel/internal/chat"
	"pitchreel/pkg/prompts"
)

// GroqClient is the fallback reply provider. The groq API is text-only and
// answered in one shot here, so the reply reaches the caller as a single
// chunk; attachments are represented by a placeholder note.
type GroqClient struct {
	client  *groq.Client
	model   groq.ChatModel
	prompts *prompts.Prompts
}

func NewGroqClient(apiKey, model string, p *prompts.Prompts) (*GroqClient, error) {
	client, err := groq.NewClient(apiKey)
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}

	return &GroqClient{
		client:  client,
		model:   groq.ChatModel(model),
		prompts: p,
	}, nil
}

func (c *GroqClient) StreamReply(ctx context.Context, history []chat.Message, onChunk StreamFunc) (string, error) {
	messages := []groq.ChatCompletionMessage{
		{Role: groq.RoleSystem, Content: c.prompts.System.Assistant},
	}
	for _, msg := range history {
		role := groq.RoleUser
		if msg.Role == chat.RoleAssistant {
			role = groq.RoleAssistant
		}
		text := msg.Text
		if msg.Attachment != nil {
			text += fmt.Sprintf("\n[attached %s, %s]", msg.Attachment.Kind, msg.Attachment.MIMEType)
		}
		messages = append(messages, groq.ChatCompletionMessage{Role: role, Content: text})
	}

	resp, err := c.client.ChatCompletion(ctx, groq.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response")
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty response")
	}

	if onChunk != nil {
		onChunk(content)
	}
	return content, nil
}
