package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kmazur/interview-copilot/internal/auth"
)

// NewHistoryCmd creates the history inspection command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and prune interview history",
	}
	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryClearCmd())
	return cmd
}

func newHistoryListCmd() *cobra.Command {
	var sessionKey string
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List history entries for a session, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, pg, err := openDatabaseStore()
			if err != nil {
				return err
			}
			defer func() { _ = pg.Close() }()

			entries, err := pg.GetHistory(context.Background(), sessionKey, limit)
			if err != nil {
				return fmt.Errorf("list history: %w", err)
			}
			if len(entries) == 0 {
				fmt.Println("No history entries.")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("[%s]\nQ: %s\nA: %s\n\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Question, e.Answer)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionKey, "session", auth.AnonymousSessionKey, "Session key")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to print")
	return cmd
}

func newHistoryClearCmd() *cobra.Command {
	var sessionKey string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all history entries for a session",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, pg, err := openDatabaseStore()
			if err != nil {
				return err
			}
			defer func() { _ = pg.Close() }()

			deleted, err := pg.ClearHistory(context.Background(), sessionKey)
			if err != nil {
				return fmt.Errorf("clear history: %w", err)
			}
			fmt.Printf("Deleted %d entries.\n", deleted)
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionKey, "session", auth.AnonymousSessionKey, "Session key")
	return cmd
}
