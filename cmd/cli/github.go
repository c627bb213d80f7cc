package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/codesage-ai/codesage/internal/core"
	"github.com/codesage-ai/codesage/internal/github"
)

var githubCmd = &cobra.Command{
	Use:   "github [blob-url]",
	Short: "Review a single file from a GitHub blob URL",
	Long: `Fetch a file through the GitHub contents API and review it.

The URL must point at a single file:
  codesage github https://github.com/octocat/Hello-World/blob/main/README.md

Set GITHUB_TOKEN to review files in private repositories.`,
	Args: cobra.ExactArgs(1),
	RunE: runGitHubReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	rootCmd.AddCommand(githubCmd)
}

func runGitHubReview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ref, err := github.ParseBlobURL(args[0])
	if err != nil {
		return fmt.Errorf("%w\n\nExpected format: https://github.com/owner/repo/blob/branch/path/to/file", err)
	}

	p, err := newPipeline(ctx)
	if err != nil {
		return err
	}

	titleColor.Printf("Fetching %s/%s@%s:%s\n", ref.Owner, ref.Repo, ref.Branch, ref.Path)
	fetcher := github.NewFetcher(ctx, viper.GetString("GITHUB_TOKEN"), p.logger)
	code, err := fetcher.FetchBlob(ctx, ref)
	if err != nil {
		return err
	}

	out, err := p.svc.Review(ctx, code)
	if err != nil {
		return fmt.Errorf("review failed: %s", core.MessageOf(err))
	}

	printReview(out)

	entry, err := p.history.Append(args[0], out)
	if err != nil {
		warnColor.Printf("could not record history: %v\n", err)
	} else {
		dimColor.Printf("recorded as %s\n", entry.ID)
	}
	return nil
}
