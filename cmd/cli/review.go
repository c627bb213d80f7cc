package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/codesage-ai/codesage/internal/core"
)

// Color definitions
var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	dimColor     = color.New(color.FgHiBlack)
	boldColor    = color.New(color.Bold)
)

var showImprovedCode bool

var reviewCmd = &cobra.Command{
	Use:   "review [file...]",
	Short: "Review one or more local source files",
	Long: `Review one or more local source files with the configured AI model.

Each file is validated, sent to the model under the configured timeout, and
the structured review is printed and appended to the local history.

Examples:
  codesage review main.go
  codesage review --improved-code handler.go service.go`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reviewCmd.Flags().BoolVar(&showImprovedCode, "improved-code", false, "Print the model's improved version of the code")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	p, err := newPipeline(ctx)
	if err != nil {
		return err
	}

	type fileResult struct {
		name   string
		output *core.ReviewOutput
		err    error
	}

	results := make([]fileResult, len(args))
	var mu sync.Mutex

	// Review the files concurrently; the per-request timeout still applies
	// to each one individually.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, name := range args {
		g.Go(func() error {
			code, err := os.ReadFile(name)
			if err != nil {
				mu.Lock()
				results[i] = fileResult{name: name, err: fmt.Errorf("failed to read %s: %w", name, err)}
				mu.Unlock()
				return nil
			}

			out, err := p.svc.Review(gctx, string(code))
			mu.Lock()
			results[i] = fileResult{name: name, output: out, err: err}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	failures := 0
	for _, res := range results {
		titleColor.Printf("\n=== %s ===\n", res.name)
		if res.err != nil {
			failures++
			errorColor.Printf("review failed: %s\n", core.MessageOf(res.err))
			continue
		}

		printReview(res.output)

		entry, err := p.history.Append(res.name, res.output)
		if err != nil {
			warnColor.Printf("could not record history: %v\n", err)
		} else {
			dimColor.Printf("recorded as %s\n", entry.ID)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d reviews failed", failures, len(args))
	}
	return nil
}

func printReview(out *core.ReviewOutput) {
	boldColor.Println("Summary")
	fmt.Printf("  %s\n", out.Summary)

	printFindings("Bugs", out.Bugs)
	printFindings("Security", out.Security)
	printFindings("Best practices", out.BestPractices)

	if showImprovedCode && out.ImprovedCode != "" {
		boldColor.Println("\nImproved code")
		fmt.Println(out.ImprovedCode)
	}
}

func printFindings(title string, findings []core.Finding) {
	boldColor.Printf("\n%s (%d)\n", title, len(findings))
	if len(findings) == 0 {
		successColor.Println("  none")
		return
	}
	for _, f := range findings {
		severityColor(f.Severity).Printf("  [%s] ", f.Severity)
		fmt.Printf("%s\n", f.Issue)
		dimColor.Printf("        %s\n", f.Explanation)
	}
}

func severityColor(s core.Severity) *color.Color {
	switch s {
	case core.SeverityHigh:
		return errorColor
	case core.SeverityMedium:
		return warnColor
	default:
		return successColor
	}
}
