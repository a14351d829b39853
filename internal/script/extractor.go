package script

import (
	"regexp"
	"sort"
	"strings"
)

// Data is the structured script extracted from an assistant reply. All
// fields are best-effort: the document usually arrives incomplete, one
// model chunk at a time.
type Data struct {
	Title       string
	VisualStyle string
	Hook        string
	Body        string
	CTA         string
}

const (
	DefaultTitle = "Untitled Video"
	DefaultStyle = "Cinematic, high contrast"
)

var (
	titlePattern   = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	stylePattern   = regexp.MustCompile(`(?im)^[*_]{0,2}style:[*_]{0,2}[ \t]*(.+)$`)
	headingPattern = regexp.MustCompile(`(?m)^##\s+(.+)$`)
)

type sectionKind int

const (
	sectionHook sectionKind = iota
	sectionBody
	sectionCTA
)

type sectionMark struct {
	kind    sectionKind
	start   int // offset of the heading line
	content int // offset just past the heading text
}

// Extract re-derives the full script record from the cumulative document
// text. It returns nil while the document has no recognizable section
// heading yet; a title or style line alone is not a usable script.
//
// Extract is pure and deterministic, so it is safe to call after every
// streamed chunk. Models restate or reorder headings mid-stream, which is
// why the record is rebuilt from scratch instead of patched field by field.
func Extract(markdown string) *Data {
	text := strings.ReplaceAll(markdown, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	marks := findSections(text)
	if len(marks) == 0 {
		return nil
	}
	sort.Slice(marks, func(i, j int) bool { return marks[i].start < marks[j].start })

	data := &Data{
		Title:       DefaultTitle,
		VisualStyle: DefaultStyle,
	}
	if m := titlePattern.FindStringSubmatch(text); m != nil {
		data.Title = strings.TrimSpace(m[1])
	}
	if m := stylePattern.FindStringSubmatch(text); m != nil {
		data.VisualStyle = strings.TrimSpace(m[1])
	}

	for i, mark := range marks {
		end := len(text)
		if i+1 < len(marks) {
			end = marks[i+1].start
		}
		content := strings.TrimSpace(text[mark.content:end])
		switch mark.kind {
		case sectionHook:
			data.Hook = content
		case sectionBody:
			data.Body = content
		case sectionCTA:
			data.CTA = content
		}
	}

	return data
}

// findSections locates the first occurrence of each known section heading.
// The three searches are independent: a document may carry any subset, in
// any order. Matching is by prefix ("## Hook (0-3s)" still counts) because
// models decorate headings freely.
func findSections(text string) []sectionMark {
	seen := make(map[sectionKind]bool, 3)
	var marks []sectionMark

	for _, m := range headingPattern.FindAllStringSubmatchIndex(text, -1) {
		label := strings.ToLower(strings.TrimSpace(text[m[2]:m[3]]))

		var kind sectionKind
		switch {
		case strings.HasPrefix(label, "hook"):
			kind = sectionHook
		case strings.HasPrefix(label, "body"):
			kind = sectionBody
		case strings.HasPrefix(label, "cta"), strings.HasPrefix(label, "call to action"):
			kind = sectionCTA
		default:
			continue
		}

		if seen[kind] {
			continue
		}
		seen[kind] = true
		marks = append(marks, sectionMark{kind: kind, start: m[0], content: m[1]})
	}

	return marks
}
