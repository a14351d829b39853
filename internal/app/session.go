package app

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"pitchreel/internal/generation"
	"pitchreel/internal/script"
)

type session struct {
	id      string
	dir     string
	baseDir string
}

var sanitizeRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

func newSession(baseDir string) *session {
	return &session{
		id:      time.Now().Format("20060102_150405"),
		baseDir: baseDir,
	}
}

func (s *session) finalize(title string) error {
	sanitized := sanitizeForPath(title)
	if sanitized == "" {
		sanitized = "untitled"
	}
	if len(sanitized) > 50 {
		sanitized = sanitized[:50]
	}

	s.dir = filepath.Join(s.baseDir, fmt.Sprintf("%s_%s", s.id, sanitized))
	return os.MkdirAll(s.dir, 0755)
}

func (s *session) scriptPath() string { return filepath.Join(s.dir, "script.md") }

func (s *session) mediaPath(kind generation.MediaKind, mimeType string) string {
	name := "video" + extensionFor(kind, mimeType)
	if kind == generation.MediaImage {
		name = "image" + extensionFor(kind, mimeType)
	}
	return filepath.Join(s.dir, name)
}

func extensionFor(kind generation.MediaKind, mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "video/mp4":
		return ".mp4"
	}
	if kind == generation.MediaImage {
		return ".png"
	}
	return ".mp4"
}

func sanitizeForPath(s string) string {
	s = strings.ToLower(s)
	s = sanitizeRegex.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// renderScriptMarkdown writes the derived script back out in the same
// format the assistant produces, so the saved file round-trips.
func renderScriptMarkdown(d *script.Data) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n**Style:** %s\n", d.Title, d.VisualStyle)
	if d.Hook != "" {
		fmt.Fprintf(&b, "\n## Hook\n%s\n", d.Hook)
	}
	if d.Body != "" {
		fmt.Fprintf(&b, "\n## Body\n%s\n", d.Body)
	}
	if d.CTA != "" {
		fmt.Fprintf(&b, "\n## CTA\n%s\n", d.CTA)
	}
	return b.String()
}
