package chat

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

type AttachmentKind string

const (
	AttachmentImage AttachmentKind = "image"
	AttachmentVideo AttachmentKind = "video"
)

// Attachment is an image or video carried by a message, immutable after
// creation. Payload bytes are held base64-encoded so the struct stays
// printable and comparable.
type Attachment struct {
	Kind     AttachmentKind
	MIMEType string
	Data     string
}

func NewAttachment(kind AttachmentKind, mimeType string, payload []byte) *Attachment {
	return &Attachment{
		Kind:     kind,
		MIMEType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(payload),
	}
}

// LoadAttachment reads a local image or video file. The MIME type is taken
// from the file extension, falling back to content sniffing.
func LoadAttachment(path string) (*Attachment, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType = http.DetectContentType(payload)
	}

	var kind AttachmentKind
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		kind = AttachmentImage
	case strings.HasPrefix(mimeType, "video/"):
		kind = AttachmentVideo
	default:
		return nil, fmt.Errorf("unsupported attachment type %q for %s", mimeType, path)
	}

	return NewAttachment(kind, mimeType, payload), nil
}

func (a *Attachment) Bytes() ([]byte, error) {
	payload, err := base64.StdEncoding.DecodeString(a.Data)
	if err != nil {
		return nil, fmt.Errorf("decode attachment payload: %w", err)
	}
	return payload, nil
}
