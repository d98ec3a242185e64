package main

import (
	"github.com/spf13/cobra"

	"github.com/mindwell/portal-gateway/internal/backend"
	"github.com/mindwell/portal-gateway/internal/models"
	"github.com/mindwell/portal-gateway/pkg/client"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print backend listings as JSON",
	Long: "Reads listings straight from the backend. Failed calls are logged and\n" +
		"print an empty result, the same way the HTTP API degrades.",
}

var listTestsCmd = &cobra.Command{
	Use:   "tests",
	Short: "List every test known to the backend",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := safeBackend(cmd)
		if err != nil {
			return err
		}
		return printJSON(cmd, b.GetAllTests(cmd.Context()))
	},
}

var listExpertsCmd = &cobra.Command{
	Use:   "experts",
	Short: "List every counsellor",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := safeBackend(cmd)
		if err != nil {
			return err
		}
		return printJSON(cmd, b.GetCounsellors(cmd.Context()))
	},
}

var listFiltersCmd = &cobra.Command{
	Use:   "filters",
	Short: "Show the available catalog filter values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := safeBackend(cmd)
		if err != nil {
			return err
		}
		return printJSON(cmd, b.GetFilters(cmd.Context()))
	},
}

// userSessions is the raw per-source session listing of one user
type userSessions struct {
	Calls  []models.CallSession  `json:"calls"`
	Chats  []models.ChatSession  `json:"chats"`
	Videos []models.VideoSession `json:"videos"`
}

var listSessionsCmd = &cobra.Command{
	Use:   "sessions <user-id>",
	Short: "List a user's call, chat and video sessions per source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := safeBackend(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		return printJSON(cmd, userSessions{
			Calls:  b.GetCallSessions(ctx, args[0]),
			Chats:  b.GetChatSessions(ctx, args[0]),
			Videos: b.GetCounsellingSessions(ctx, args[0]),
		})
	},
}

var listAppointmentsCmd = &cobra.Command{
	Use:   "appointments <user-id>",
	Short: "List a user's in-person appointments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := safeBackend(cmd)
		if err != nil {
			return err
		}
		return printJSON(cmd, b.GetUserAppointments(cmd.Context(), args[0]))
	},
}

func safeBackend(cmd *cobra.Command) (*backend.Safe, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return backend.NewSafe(client.NewClient(cfg.Backend.BaseURL, client.WithTimeout(cfg.Backend.Timeout))), nil
}

func init() {
	listCmd.AddCommand(listTestsCmd)
	listCmd.AddCommand(listExpertsCmd)
	listCmd.AddCommand(listFiltersCmd)
	listCmd.AddCommand(listSessionsCmd)
	listCmd.AddCommand(listAppointmentsCmd)
}
