package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/codesage-ai/codesage/internal/core"
)

// ParseReviewOutput normalizes raw model text into the canonical review
// schema. It tolerates the common quirk of the response being wrapped in a
// markdown code fence, but is otherwise strict: the text must be valid JSON
// and every finding must carry a severity from the fixed enum. Syntactically
// valid but schema-invalid JSON is rejected the same way as garbage output.
//
// All failures wrap core.ErrMalformedOutput so the caller can apply its
// retry policy without inspecting messages.
func ParseReviewOutput(raw string) (*core.ReviewOutput, error) {
	cleaned := stripCodeFence(raw)
	if strings.TrimSpace(cleaned) == "" {
		return nil, fmt.Errorf("%w: empty response", core.ErrMalformedOutput)
	}

	var out core.ReviewOutput
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedOutput, err)
	}

	normalizeSeverities(out.Bugs)
	normalizeSeverities(out.Security)
	normalizeSeverities(out.BestPractices)

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrMalformedOutput, err)
	}

	out.Normalize()
	return &out, nil
}

// normalizeSeverities lowercases and trims severity values in place. Models
// occasionally return "Medium" despite the prompt's exact-enum instruction;
// casing is forgiven, any other deviation is not.
func normalizeSeverities(findings []core.Finding) {
	for i := range findings {
		findings[i].Severity = core.Severity(strings.ToLower(strings.TrimSpace(string(findings[i].Severity))))
	}
}

// stripCodeFence removes a ```json ... ``` (or bare ```) wrapper that some
// models add around their output despite instructions not to.
func stripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	idx := strings.Index(trimmed, "\n")
	if idx < 0 {
		return trimmed
	}
	inner := trimmed[idx+1:]
	if lastFence := strings.LastIndex(inner, "```"); lastFence >= 0 {
		inner = inner[:lastFence]
	}
	return strings.TrimSpace(inner)
}
