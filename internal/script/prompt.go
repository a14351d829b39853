package script

import "strings"

// BuildPrompt flattens an extracted script into a generation prompt. The
// non-empty sections are joined as labeled fragments in a fixed order; when
// fewer than two fragments survive, the result would be a degenerate
// one-liner, so title plus style is used instead.
func BuildPrompt(d *Data) string {
	var fragments []string
	appendFragment := func(label, value string) {
		value = strings.TrimSpace(value)
		if value != "" {
			fragments = append(fragments, label+": "+value)
		}
	}

	appendFragment("Visual style", d.VisualStyle)
	appendFragment("Hook", d.Hook)
	appendFragment("Body", d.Body)
	appendFragment("Call to action", d.CTA)

	if len(fragments) < 2 {
		var fallback []string
		for _, value := range []string{d.Title, d.VisualStyle} {
			if value = strings.TrimSpace(value); value != "" {
				fallback = append(fallback, value)
			}
		}
		return strings.Join(fallback, ". ")
	}

	return strings.Join(fragments, "\n")
}
