package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"pitchreel/internal/chat"
	"pitchreel/internal/generation"
	"pitchreel/internal/llm"
	"pitchreel/internal/script"
	"pitchreel/pkg/prompts"
)

// Assistant owns the conversation with the scriptwriting model and the
// script derived from it. The script is never edited directly: it is
// re-extracted from the latest assistant reply after every streamed chunk,
// so whatever the model last said in the standard format is the script.
type Assistant struct {
	llm     llm.Client
	prompts *prompts.Prompts

	mu     sync.Mutex
	conv   *chat.Conversation
	script *script.Data
}

func NewAssistant(client llm.Client, p *prompts.Prompts) *Assistant {
	return &Assistant{
		llm:     client,
		prompts: p,
		conv:    chat.NewConversation(),
	}
}

// Send appends the user turn, streams the assistant reply, and keeps the
// derived script current while chunks arrive. onChunk may be nil.
func (a *Assistant) Send(ctx context.Context, text string, attachment *chat.Attachment, onChunk llm.StreamFunc) (string, error) {
	a.mu.Lock()
	a.conv.AddUser(text, attachment)
	history := a.conv.Messages()
	if err := a.conv.BeginAssistant(); err != nil {
		a.mu.Unlock()
		return "", err
	}
	a.mu.Unlock()

	_, err := a.llm.StreamReply(ctx, history, func(chunk string) {
		a.mu.Lock()
		full, chunkErr := a.conv.AppendChunk(chunk)
		if chunkErr == nil {
			if d := script.Extract(full); d != nil {
				a.script = d
			}
		}
		a.mu.Unlock()

		if onChunk != nil {
			onChunk(chunk)
		}
	})

	a.mu.Lock()
	defer a.mu.Unlock()

	final, endErr := a.conv.EndStream()
	if err != nil {
		return "", fmt.Errorf("assistant reply failed: %w", err)
	}
	if endErr != nil {
		return "", endErr
	}
	if d := script.Extract(final); d != nil {
		a.script = d
	}
	return final, nil
}

// Finalize asks the model for a clean final script, optionally carrying a
// last piece of user direction.
func (a *Assistant) Finalize(ctx context.Context, notes string, onChunk llm.StreamFunc) (string, error) {
	msg, err := a.prompts.RenderFinalize(prompts.FinalizeParams{Notes: strings.TrimSpace(notes)})
	if err != nil {
		return "", err
	}
	return a.Send(ctx, msg, nil, onChunk)
}

// Script returns the latest derived script, or nil when no assistant reply
// has produced one yet.
func (a *Assistant) Script() *script.Data {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.script
}

func (a *Assistant) Messages() []chat.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.conv.Messages()
}

// JobConfig assembles a generation request from the current script and the
// most recent user-supplied image, if any.
func (a *Assistant) JobConfig(kind generation.MediaKind, aspectRatio, resolution string) generation.JobConfig {
	a.mu.Lock()
	defer a.mu.Unlock()

	d := a.script
	if d == nil {
		d = &script.Data{Title: script.DefaultTitle, VisualStyle: script.DefaultStyle}
	}

	return generation.JobConfig{
		Kind:        kind,
		Prompt:      script.BuildPrompt(d),
		AspectRatio: aspectRatio,
		Resolution:  resolution,
		Reference:   chat.SelectReference(a.conv.Messages(), chat.UserImage),
	}
}

// Reset discards the conversation and the derived script.
func (a *Assistant) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.conv = chat.NewConversation()
	a.script = nil
}
