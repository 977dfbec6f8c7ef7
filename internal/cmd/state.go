package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"dtek-outage-monitor/internal/config"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Переглянути або скинути збережений стан повідомлення",
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Показати збережений стан",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(false)
		if err != nil {
			return err
		}
		st, err := openStorage(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		state, err := st.Load()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if state == nil {
			fmt.Fprintln(out, "no active notification")
			return nil
		}
		fmt.Fprintf(out, "message_id: %d\n", state.MessageID)
		fmt.Fprintf(out, "created_at: %s\n", formatStateTime(state.CreatedAt, cfg))
		fmt.Fprintf(out, "updated_at: %s\n", formatStateTime(state.UpdatedAt, cfg))
		return nil
	},
}

var stateClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Скинути стан без видалення повідомлення в Telegram",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(false)
		if err != nil {
			return err
		}
		st, err := openStorage(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Clear(); err != nil {
			return err
		}
		logger.Info("Notification state cleared.")
		return nil
	},
}

func formatStateTime(t time.Time, cfg config.Config) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(cfg.Location()).Format(cfg.TimeFormat)
}

func init() {
	stateCmd.AddCommand(stateShowCmd, stateClearCmd)
	rootCmd.AddCommand(stateCmd)
}
