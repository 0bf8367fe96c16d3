package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

// NewHealthCmd creates the server probe command.
func NewHealthCmd() *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Probe a running server's health endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := &http.Client{Timeout: 15 * time.Second}
			resp, err := client.Get(url + "/api/health")
			if err != nil {
				return fmt.Errorf("probe server: %w", err)
			}
			defer resp.Body.Close()

			var body struct {
				Status             string `json:"status"`
				Version            string `json:"version"`
				GenerationModel    string `json:"generation_model"`
				TranscriptionModel string `json:"transcription_model"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}

			fmt.Printf("Status:              %s\n", body.Status)
			fmt.Printf("Version:             %s\n", body.Version)
			fmt.Printf("Generation model:    %s\n", body.GenerationModel)
			fmt.Printf("Transcription model: %s\n", body.TranscriptionModel)
			if body.Status != "healthy" {
				return fmt.Errorf("server reports %s", body.Status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "http://localhost:5000", "Server base URL")
	return cmd
}
