package prompts

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

const defaultPromptsPath = "prompts.yaml"

const defaultAssistant = `You are a marketing video scriptwriter. Help the user shape their
product idea into a short promotional video script through conversation.

Whenever you present a script, format it exactly as:

# <video title>
**Style:** <visual style, e.g. Cinematic, high contrast>

## Hook
<opening line that grabs attention>

## Body
<the main pitch>

## CTA
<call to action>

Keep every revision in this format so the latest version is always usable.
Ask clarifying questions about the product, audience, and tone when the
user's direction is vague.`

const defaultFinalize = `Produce the final version of the script now, in the standard format,
incorporating everything discussed so far.{{if .Notes}} Final direction from
the user: {{.Notes}}{{end}} Reply with the script only, no commentary.`

type Prompts struct {
	System SystemPrompts `yaml:"system"`
	Draft  DraftPrompts  `yaml:"draft"`
}

type SystemPrompts struct {
	Assistant string `yaml:"assistant"`
}

type DraftPrompts struct {
	Finalize string `yaml:"finalize"`
}

type FinalizeParams struct {
	Notes string
}

// Load reads prompts.yaml from the working directory. A missing file is
// not an error: the built-in prompts are used instead.
func Load() (*Prompts, error) {
	return LoadFrom(defaultPromptsPath)
}

func LoadFrom(path string) (*Prompts, error) {
	var p Prompts

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read prompts file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse prompts file: %w", err)
	}

	applyDefaults(&p)
	return &p, nil
}

func applyDefaults(p *Prompts) {
	if p.System.Assistant == "" {
		p.System.Assistant = defaultAssistant
	}
	if p.Draft.Finalize == "" {
		p.Draft.Finalize = defaultFinalize
	}
}

func (p *Prompts) RenderFinalize(params FinalizeParams) (string, error) {
	return render(p.Draft.Finalize, params)
}

func render(tmpl string, data any) (string, error) {
	t, err := template.New("prompt").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
