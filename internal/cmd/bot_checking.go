package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	checkInterval int
	schedule      string
)

var botCheckingCmd = &cobra.Command{
	Use:   "bot-checking",
	Short: "Запустити бота для періодичної перевірки відключень",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(true)
		if err != nil {
			return err
		}

		spec := schedule
		if spec == "" {
			if checkInterval <= 0 {
				return fmt.Errorf("check-interval must be positive")
			}
			spec = fmt.Sprintf("@every %ds", checkInterval)
		}

		botApp, st, err := buildApp(cfg, logger)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("Starting DTEK Alert Bot (bot-checking)...", "schedule", spec, "address", cfg.Address().String())
		if err := botApp.Run(ctx, spec); err != nil {
			return err
		}
		logger.Info("Bot stopped gracefully.")
		return nil
	},
}

func init() {
	botCheckingCmd.Flags().IntVarP(&checkInterval, "check-interval", "i", 300, "Інтервал перевірки в секундах")
	botCheckingCmd.Flags().StringVarP(&schedule, "schedule", "s", "", "Розклад у форматі cron (перекриває --check-interval)")
	rootCmd.AddCommand(botCheckingCmd)
}
