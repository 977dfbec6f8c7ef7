package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"dtek-outage-monitor/internal/app"
	"dtek-outage-monitor/internal/config"
	"dtek-outage-monitor/internal/logging"
	"dtek-outage-monitor/internal/metrics"
	"dtek-outage-monitor/internal/notifier"
	"dtek-outage-monitor/internal/scraper"
	"dtek-outage-monitor/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:           "dtek-bot",
	Short:         "DTEK Outage Monitor",
	Long:          `Бот для відстеження відключень електроенергії на сайті ДТЕК, який підтримує одне актуальне повідомлення в Telegram.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads and validates the configuration and builds the logger.
// monitor selects the stricter validation needed to run checks.
func loadConfig(monitor bool) (config.Config, *log.Logger, error) {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, "[BOT]")

	validate := cfg.Validate
	if monitor {
		validate = cfg.ValidateMonitor
	}
	if err := validate(); err != nil {
		return cfg, logger, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, logger, nil
}

func openStorage(cfg config.Config) (storage.Storage, error) {
	return storage.Open(cfg.StateBackend, cfg.StateFilePath, cfg.StateDBPath)
}

// buildApp wires the monitor. The returned storage must be closed by the caller.
func buildApp(cfg config.Config, logger *log.Logger) (*app.App, storage.Storage, error) {
	loc := cfg.Location()

	st, err := openStorage(cfg)
	if err != nil {
		return nil, nil, err
	}

	n, err := notifier.NewTelegramNotifier(cfg.TelegramBotToken, cfg.ChatID)
	if err != nil {
		st.Close()
		return nil, nil, err
	}

	s := scraper.NewScraper(scraper.Options{
		PageURL:  cfg.ShutdownsPage,
		Timeout:  cfg.FetchTimeout,
		Location: loc,
	}, logger)

	recorder := metrics.New(cfg.PushgatewayURL, cfg.MetricsJob)

	a := app.NewApp(cfg.Address(), app.NewComposer(cfg.TimeFormat, loc), s, st, n, recorder, logger)
	return a, st, nil
}
