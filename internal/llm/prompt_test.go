package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptBuilderBuild(t *testing.T) {
	builder, err := NewPromptBuilder()
	require.NoError(t, err)

	code := "func main() {\n\tfmt.Println(\"hi\")\n}"
	prompt, err := builder.Build(code)
	require.NoError(t, err)

	// The code must appear verbatim at the end of the prompt.
	assert.Contains(t, prompt, code)

	// All five instruction categories and the schema keys must be present.
	for _, want := range []string{
		"bugs", "security", "bestPractices", "summary", "improvedCode",
		`"low", "medium", "high"`,
		"Output ONLY valid JSON",
	} {
		assert.Contains(t, prompt, want)
	}
}

func TestPromptBuilderIsDeterministic(t *testing.T) {
	builder, err := NewPromptBuilder()
	require.NoError(t, err)

	a, err := builder.Build("let x = 1;")
	require.NoError(t, err)
	b, err := builder.Build("let x = 1;")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
