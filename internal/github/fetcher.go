package github

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"
)

// Fetcher retrieves file contents from GitHub.
type Fetcher struct {
	client *github.Client
	logger *slog.Logger
}

// NewFetcher creates a Fetcher. An empty token yields an unauthenticated
// client, which is enough for public repositories; a token raises the rate
// limit and grants access to private ones.
func NewFetcher(ctx context.Context, token string, logger *slog.Logger) *Fetcher {
	var client *github.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		client = github.NewClient(oauth2.NewClient(ctx, ts))
	} else {
		client = github.NewClient(nil)
	}
	return &Fetcher{client: client, logger: logger}
}

// FetchBlob downloads the file a BlobRef points at and returns it as UTF-8
// text. The contents API returns base64; a decode failure is a hard error,
// never silently degraded to an empty string.
func (f *Fetcher) FetchBlob(ctx context.Context, ref *BlobRef) (string, error) {
	f.logger.Debug("fetching file from GitHub",
		"owner", ref.Owner, "repo", ref.Repo, "branch", ref.Branch, "path", ref.Path)

	fileContent, _, _, err := f.client.Repositories.GetContents(ctx, ref.Owner, ref.Repo, ref.Path,
		&github.RepositoryContentGetOptions{Ref: ref.Branch})
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s/%s@%s:%s: %w", ref.Owner, ref.Repo, ref.Branch, ref.Path, err)
	}
	if fileContent == nil {
		return "", fmt.Errorf("%s is a directory, not a file", ref.Path)
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to decode content of %s: %w", ref.Path, err)
	}
	return content, nil
}
