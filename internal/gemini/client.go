package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"pitchreel/internal/chat"
	"pitchreel/internal/llm"
	"pitchreel/pkg/prompts"
)

// Client streams assistant replies from Gemini on Vertex AI. Image and
// video attachments are passed inline so the model can reference them when
// drafting the script.
type Client struct {
	client  *genai.Client
	model   string
	prompts *prompts.Prompts
}

func NewClient(ctx context.Context, project, location, model string, p *prompts.Prompts) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  project,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Client{
		client:  client,
		model:   model,
		prompts: p,
	}, nil
}

func (c *Client) StreamReply(ctx context.Context, history []chat.Message, onChunk llm.StreamFunc) (string, error) {
	contents, err := buildContents(history)
	if err != nil {
		return "", err
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: c.prompts.System.Assistant}},
		},
	}

	var reply string
	for resp, err := range c.client.Models.GenerateContentStream(ctx, c.model, contents, config) {
		if err != nil {
			return "", fmt.Errorf("generate: %w", err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			continue
		}
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.Text == "" {
				continue
			}
			reply += part.Text
			if onChunk != nil {
				onChunk(part.Text)
			}
		}
	}

	if reply == "" {
		return "", fmt.Errorf("empty response")
	}
	return reply, nil
}

func buildContents(history []chat.Message) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := genai.RoleUser
		if msg.Role == chat.RoleAssistant {
			role = genai.RoleModel
		}

		var parts []*genai.Part
		if msg.Text != "" {
			parts = append(parts, &genai.Part{Text: msg.Text})
		}
		if msg.Attachment != nil {
			payload, err := msg.Attachment.Bytes()
			if err != nil {
				return nil, fmt.Errorf("attachment on message %d: %w", msg.ID, err)
			}
			parts = append(parts, &genai.Part{
				InlineData: &genai.Blob{
					MIMEType: msg.Attachment.MIMEType,
					Data:     payload,
				},
			})
		}
		if len(parts) == 0 {
			continue
		}

		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}

	if len(contents) == 0 {
		return nil, fmt.Errorf("empty conversation")
	}
	return contents, nil
}
