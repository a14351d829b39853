package chat

import (
	"errors"
	"fmt"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry in the conversation. Streaming is true only while
// the message is still receiving chunks; text is appended in place and the
// message is frozen when the stream ends.
type Message struct {
	ID         int
	Role       Role
	Text       string
	Attachment *Attachment
	Streaming  bool
}

// Conversation is the ordered, append-only message history. At most one
// message (the assistant reply currently arriving) may be streaming at a
// time.
type Conversation struct {
	messages  []Message
	nextID    int
	streaming int // index of the streaming message, -1 when none
}

var ErrNoStream = errors.New("no streaming message")

func NewConversation() *Conversation {
	return &Conversation{streaming: -1}
}

func (c *Conversation) Len() int {
	return len(c.messages)
}

// Messages returns a copy of the history; callers cannot mutate the
// conversation through it.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) AddUser(text string, attachment *Attachment) Message {
	return c.append(Message{
		Role:       RoleUser,
		Text:       text,
		Attachment: attachment,
	})
}

// BeginAssistant opens the assistant reply that will receive streamed
// chunks. Only one stream may be open at a time.
func (c *Conversation) BeginAssistant() error {
	if c.streaming >= 0 {
		return fmt.Errorf("message %d is still streaming", c.messages[c.streaming].ID)
	}
	c.append(Message{Role: RoleAssistant, Streaming: true})
	c.streaming = len(c.messages) - 1
	return nil
}

// AppendChunk adds streamed text to the open assistant reply and returns
// the cumulative reply text so far.
func (c *Conversation) AppendChunk(chunk string) (string, error) {
	if c.streaming < 0 {
		return "", ErrNoStream
	}
	c.messages[c.streaming].Text += chunk
	return c.messages[c.streaming].Text, nil
}

// EndStream freezes the open assistant reply and returns its final text.
func (c *Conversation) EndStream() (string, error) {
	if c.streaming < 0 {
		return "", ErrNoStream
	}
	c.messages[c.streaming].Streaming = false
	text := c.messages[c.streaming].Text
	c.streaming = -1
	return text, nil
}

func (c *Conversation) append(msg Message) Message {
	c.nextID++
	msg.ID = c.nextID
	c.messages = append(c.messages, msg)
	return msg
}
