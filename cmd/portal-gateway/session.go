package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mindwell/portal-gateway/internal/chat"
	"github.com/mindwell/portal-gateway/internal/models"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Encode, decode and inspect composite chat session ids",
}

var sessionEncodeCmd = &cobra.Command{
	Use:   "encode <chat-id> <start-hour>",
	Short: "Build a composite session id",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var hour int
		if _, err := fmt.Sscanf(args[1], "%d", &hour); err != nil {
			return fmt.Errorf("invalid start hour %q", args[1])
		}
		couple, _ := cmd.Flags().GetBool("couple")

		id, err := chat.Encode(models.SessionRef{ChatID: args[0], StartHour: hour, IsCouple: couple})
		if err != nil {
			return err
		}
		cmd.Println(id)
		return nil
	},
}

var sessionDecodeCmd = &cobra.Command{
	Use:   "decode <session-id>",
	Short: "Split a composite session id into its parts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := chat.Decode(args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd, ref)
	},
}

var sessionStatusCmd = &cobra.Command{
	Use:   "status <session-id>",
	Short: "Show whether a chat session is still running",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := chat.Decode(args[0])
		if err != nil {
			return err
		}

		now := time.Now()
		if at, _ := cmd.Flags().GetString("at"); at != "" {
			if now, err = time.ParseInLocation("2006-01-02T15:04", at, time.Local); err != nil {
				return fmt.Errorf("invalid --at %q: %w", at, err)
			}
		}
		return printJSON(cmd, chat.Status(ref, now))
	},
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	sessionEncodeCmd.Flags().Bool("couple", false, "Couple session (90 minutes)")
	sessionStatusCmd.Flags().String("at", "", "Evaluate at this local time (2006-01-02T15:04) instead of now")

	sessionCmd.AddCommand(sessionEncodeCmd)
	sessionCmd.AddCommand(sessionDecodeCmd)
	sessionCmd.AddCommand(sessionStatusCmd)
}
