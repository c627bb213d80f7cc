package github

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBlobURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		want      *BlobRef
		wantErrIs error
	}{
		{
			name: "Valid blob URL",
			url:  "https://github.com/octocat/Hello-World/blob/main/README.md",
			want: &BlobRef{Owner: "octocat", Repo: "Hello-World", Branch: "main", Path: "README.md"},
		},
		{
			name: "Nested file path",
			url:  "https://github.com/sevigo/code-warden/blob/develop/internal/llm/parser.go",
			want: &BlobRef{Owner: "sevigo", Repo: "code-warden", Branch: "develop", Path: "internal/llm/parser.go"},
		},
		{
			name:      "Not a URL",
			url:       "not a url at all",
			wantErrIs: ErrInvalidURL,
		},
		{
			name:      "Missing scheme",
			url:       "github.com/octocat/Hello-World/blob/main/README.md",
			wantErrIs: ErrInvalidURL,
		},
		{
			name:      "Wrong host",
			url:       "https://gitlab.com/octocat/Hello-World/blob/main/README.md",
			wantErrIs: ErrNotGitHubHost,
		},
		{
			name:      "Subdomain is not github.com",
			url:       "https://gist.github.com/octocat/Hello-World/blob/main/README.md",
			wantErrIs: ErrNotGitHubHost,
		},
		{
			name:      "Missing blob segment",
			url:       "https://github.com/octocat/Hello-World/tree/main/README.md",
			wantErrIs: ErrNotBlobURL,
		},
		{
			name:      "No trailing file path",
			url:       "https://github.com/octocat/Hello-World/blob/main",
			wantErrIs: ErrIncompleteBlobURL,
		},
		{
			name:      "Blob without branch",
			url:       "https://github.com/octocat/Hello-World/blob",
			wantErrIs: ErrIncompleteBlobURL,
		},
		{
			name:      "Repository root URL",
			url:       "https://github.com/octocat/Hello-World",
			wantErrIs: ErrNotBlobURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBlobURL(tt.url)
			if tt.wantErrIs != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErrIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
