package llm

import (
	"context"

	"pitchreel/internal/chat"
)

// StreamFunc receives each reply fragment as it arrives. Callers typically
// feed the cumulative text to the script extractor on every invocation.
type StreamFunc func(chunk string)

// Client produces the assistant reply for the conversation so far. The
// reply is delivered incrementally through onChunk (providers without a
// streaming API deliver it as a single chunk) and returned in full.
type Client interface {
	StreamReply(ctx context.Context, history []chat.Message, onChunk StreamFunc) (string, error)
}
