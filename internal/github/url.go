// Package github fetches single files from GitHub for review: it parses
// blob URLs and retrieves their content through the contents API.
package github

import (
	"fmt"
	"net/url"
	"strings"
)

// Each validation rule gets its own error so callers can tell the user what
// exactly was wrong with the URL, not just that it failed.
var (
	ErrInvalidURL        = fmt.Errorf("invalid URL")
	ErrNotGitHubHost     = fmt.Errorf("not a GitHub URL")
	ErrNotBlobURL        = fmt.Errorf("not a valid GitHub blob file URL")
	ErrIncompleteBlobURL = fmt.Errorf("incomplete GitHub blob URL")
)

// BlobRef identifies a single file in a repository at a branch.
type BlobRef struct {
	Owner  string
	Repo   string
	Branch string
	Path   string
}

// ParseBlobURL parses a GitHub blob URL of the form
// https://github.com/{owner}/{repo}/blob/{branch}/{path...}.
//
// Rules are checked in order: the URL must parse, the host must be exactly
// github.com, the third path segment must literally be "blob", and a branch
// plus at least one file path segment must follow it.
func ParseBlobURL(raw string) (*BlobRef, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}

	if u.Hostname() != "github.com" {
		return nil, fmt.Errorf("%w: host is %q", ErrNotGitHubHost, u.Hostname())
	}

	var parts []string
	for _, p := range strings.Split(u.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}

	// Expected: [owner, repo, "blob", branch, ...path]
	if len(parts) < 3 || parts[2] != "blob" {
		return nil, fmt.Errorf("%w: expected /{owner}/{repo}/blob/{branch}/{path}", ErrNotBlobURL)
	}
	if len(parts) < 5 {
		return nil, fmt.Errorf("%w: missing branch or file path in %q", ErrIncompleteBlobURL, raw)
	}

	return &BlobRef{
		Owner:  parts[0],
		Repo:   parts[1],
		Branch: parts[3],
		Path:   strings.Join(parts[4:], "/"),
	}, nil
}
