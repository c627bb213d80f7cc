package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codesage-ai/codesage/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse the local review history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past reviews, newest first",
	RunE: func(_ *cobra.Command, _ []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		entries, err := store.List()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			dimColor.Println("history is empty")
			return nil
		}
		for _, e := range entries {
			titleColor.Printf("%s", e.ID)
			dimColor.Printf("  %s\n", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
			fmt.Printf("  %s\n", e.Output.Summary)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show one recorded review",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		entry, err := store.Get(args[0])
		if err != nil {
			return err
		}
		dimColor.Printf("input: %s\n\n", entry.Input)
		printReview(&entry.Output)
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the whole local history",
	RunE: func(_ *cobra.Command, _ []string) error {
		store, err := openHistory()
		if err != nil {
			return err
		}
		if err := store.Clear(); err != nil {
			return err
		}
		successColor.Println("history cleared")
		return nil
	},
}

func init() { //nolint:gochecknoinits // Cobra command registration
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func openHistory() (history.Store, error) {
	path, err := history.DefaultPath()
	if err != nil {
		return nil, err
	}
	return history.NewFileStore(path), nil
}
