package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mindwell/portal-gateway/internal/assessment"
	"github.com/mindwell/portal-gateway/pkg/client"
)

var questionsCmd = &cobra.Command{
	Use:   "questions <slug>",
	Short: "Fetch and print the normalized questions of a test",
	Long: "Fetches every page of a test's questions from the backend and prints the\n" +
		"canonical question set as JSON. Unlike the HTTP API, load errors are reported.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		c := client.NewClient(cfg.Backend.BaseURL, client.WithTimeout(cfg.Backend.Timeout))
		set, err := assessment.NewNormalizer(c).Load(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("load questions: %w", err)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(set)
	},
}

func init() {
	questionsCmd.ValidArgs = assessment.Slugs()
}
