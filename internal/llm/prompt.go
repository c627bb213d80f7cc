// Package llm provides the model client, the prompt builder, and the
// normalizer that turns raw model output into the canonical review schema.
package llm

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed prompts/*.prompt
var promptFiles embed.FS

const reviewPromptFile = "prompts/code_review_default.prompt"

// PromptBuilder renders the embedded code-review prompt template. The prompt
// embeds the mandatory output rules, the exact JSON schema with the severity
// enum wording, and the submitted code verbatim; rendering is a pure function
// of the code.
type PromptBuilder struct {
	tmpl *template.Template
}

type promptData struct {
	Code string
}

// NewPromptBuilder parses the embedded prompt template.
func NewPromptBuilder() (*PromptBuilder, error) {
	content, err := promptFiles.ReadFile(reviewPromptFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded prompt file %s: %w", reviewPromptFile, err)
	}

	tmpl, err := template.New("code_review").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("could not parse prompt template: %w", err)
	}

	return &PromptBuilder{tmpl: tmpl}, nil
}

// Build renders the review prompt for the given code.
func (b *PromptBuilder) Build(code string) (string, error) {
	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, promptData{Code: code}); err != nil {
		return "", fmt.Errorf("could not render prompt: %w", err)
	}
	return buf.String(), nil
}
