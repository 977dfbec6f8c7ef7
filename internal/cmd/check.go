package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Виконати одну перевірку та оновити повідомлення",
	Long:  `Одна повна перевірка для запуску з cron або CI: отримати статус, створити, оновити або видалити повідомлення і зберегти стан.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(true)
		if err != nil {
			return err
		}

		botApp, st, err := buildApp(cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, err := botApp.RunOnce(ctx)
		if err != nil {
			return err
		}
		if res.DeleteErr != nil {
			logger.Warn("Previous message was not deleted", "message_id", res.MessageID, "err", res.DeleteErr)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
