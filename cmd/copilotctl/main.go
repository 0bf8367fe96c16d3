package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kmazur/interview-copilot/cmd/copilotctl/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "copilotctl",
		Short: "Operations tool for the Interview Copilot API",
		Long:  "CLI tool for managing accounts, inspecting history and probing a running server",
	}

	rootCmd.AddCommand(commands.NewUserCmd())
	rootCmd.AddCommand(commands.NewHistoryCmd())
	rootCmd.AddCommand(commands.NewHealthCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
