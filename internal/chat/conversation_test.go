package chat

import (
	"testing"
)

func TestConversationStreaming(t *testing.T) {
	conv := NewConversation()

	conv.AddUser("make me an ad", nil)
	if err := conv.BeginAssistant(); err != nil {
		t.Fatalf("BeginAssistant() error: %v", err)
	}

	if err := conv.BeginAssistant(); err == nil {
		t.Error("second BeginAssistant() should fail while a stream is open")
	}

	cumulative, err := conv.AppendChunk("# Title\n")
	if err != nil {
		t.Fatalf("AppendChunk() error: %v", err)
	}
	if cumulative != "# Title\n" {
		t.Errorf("cumulative = %q", cumulative)
	}

	cumulative, err = conv.AppendChunk("## Hook\nGo")
	if err != nil {
		t.Fatalf("AppendChunk() error: %v", err)
	}
	if cumulative != "# Title\n## Hook\nGo" {
		t.Errorf("cumulative = %q", cumulative)
	}

	streamingCount := 0
	for _, msg := range conv.Messages() {
		if msg.Streaming {
			streamingCount++
		}
	}
	if streamingCount != 1 {
		t.Errorf("streaming messages = %d, want 1", streamingCount)
	}

	final, err := conv.EndStream()
	if err != nil {
		t.Fatalf("EndStream() error: %v", err)
	}
	if final != "# Title\n## Hook\nGo" {
		t.Errorf("final = %q", final)
	}

	for _, msg := range conv.Messages() {
		if msg.Streaming {
			t.Error("no message should be streaming after EndStream")
		}
	}

	if err := conv.BeginAssistant(); err != nil {
		t.Errorf("BeginAssistant() after EndStream should succeed: %v", err)
	}
}

func TestConversationChunkWithoutStream(t *testing.T) {
	conv := NewConversation()

	if _, err := conv.AppendChunk("x"); err == nil {
		t.Error("AppendChunk() without an open stream should fail")
	}
	if _, err := conv.EndStream(); err == nil {
		t.Error("EndStream() without an open stream should fail")
	}
}

func TestConversationOrderingAndIDs(t *testing.T) {
	conv := NewConversation()
	conv.AddUser("first", nil)
	_ = conv.BeginAssistant()
	_, _ = conv.AppendChunk("reply")
	_, _ = conv.EndStream()
	conv.AddUser("second", nil)

	msgs := conv.Messages()
	if len(msgs) != 3 {
		t.Fatalf("len = %d, want 3", len(msgs))
	}
	for i := 1; i < len(msgs); i++ {
		if msgs[i].ID <= msgs[i-1].ID {
			t.Errorf("IDs not strictly increasing: %d then %d", msgs[i-1].ID, msgs[i].ID)
		}
	}
	if msgs[0].Role != RoleUser || msgs[1].Role != RoleAssistant || msgs[2].Role != RoleUser {
		t.Errorf("unexpected roles: %v %v %v", msgs[0].Role, msgs[1].Role, msgs[2].Role)
	}
}

func TestSelectReference(t *testing.T) {
	imgA := NewAttachment(AttachmentImage, "image/png", []byte("a"))
	imgB := NewAttachment(AttachmentImage, "image/png", []byte("b"))
	vid := NewAttachment(AttachmentVideo, "video/mp4", []byte("v"))

	history := []Message{
		{ID: 1, Role: RoleUser, Attachment: imgA},
		{ID: 2, Role: RoleAssistant, Text: "nice"},
		{ID: 3, Role: RoleUser, Attachment: vid},
		{ID: 4, Role: RoleUser, Attachment: imgB},
		{ID: 5, Role: RoleUser, Text: "go"},
	}

	if got := SelectReference(history, UserImage); got != imgB {
		t.Errorf("UserImage selected %+v, want most recent user image", got)
	}
	if got := SelectReference(history, UserMedia); got != imgB {
		t.Errorf("UserMedia selected %+v, want most recent attachment", got)
	}
	if got := SelectReference(history, nil); got != imgB {
		t.Errorf("nil predicate selected %+v, want most recent attachment", got)
	}

	videoOnly := func(_ *Message, att *Attachment) bool { return att.Kind == AttachmentVideo }
	if got := SelectReference(history, videoOnly); got != vid {
		t.Errorf("video predicate selected %+v", got)
	}

	if got := SelectReference(nil, UserImage); got != nil {
		t.Errorf("empty history should select nil, got %+v", got)
	}
	noAttachments := []Message{{ID: 1, Role: RoleUser, Text: "hi"}}
	if got := SelectReference(noAttachments, UserImage); got != nil {
		t.Errorf("history without attachments should select nil, got %+v", got)
	}
}

func TestAttachmentRoundTrip(t *testing.T) {
	payload := []byte{0x00, 0x01, 0xFF, 0x7F}
	att := NewAttachment(AttachmentImage, "image/png", payload)

	got, err := att.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("payload mismatch: %v vs %v", got, payload)
	}
}
