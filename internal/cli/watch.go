package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mrcode/nightscout-report/internal/nightscout"
	"github.com/mrcode/nightscout-report/internal/notifications"
)

func init() {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll the newest reading and raise threshold alerts",
		Run:   runWatch,
	}

	RootCmd.AddCommand(cmd)
}

func runWatch(cmd *cobra.Command, args []string) {
	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	settings, err := loadSettings()
	if err != nil {
		exitErr("setup", err)
	}

	client := nightscout.NewClientFromSettings(settings)
	manager := notifications.NewManager(settings)

	interval := time.Duration(settings.RefreshInterval) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("watching %s every %s (ctrl-c to stop)\n", settings.NightscoutURL, interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		checkLatest(ctx, client, manager, settings.Unit, logger)
		select {
		case <-ctx.Done():
			fmt.Println("stopped")
			return
		case <-ticker.C:
		}
	}
}

func checkLatest(ctx context.Context, client *nightscout.Client, manager *notifications.Manager, unit string, logger *zap.Logger) {
	entry, err := client.GetLatestEntry(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.Warn("fetch latest entry", zap.Error(err))
		}
		return
	}

	value := entry.ValueMgDL()
	display := fmt.Sprintf("%.0f mg/dL", value)
	if unit == "mmol/L" {
		display = fmt.Sprintf("%.1f mmol/L", entry.ValueMmolL())
	}
	fmt.Printf("%s  %s %s\n", entry.Time().Format("15:04:05"), display, entry.Direction)

	alertType, err := manager.CheckAndNotify(entry)
	if err != nil {
		logger.Warn("send notification", zap.Error(err))
		return
	}
	if alertType != "" {
		logger.Info("alert raised", zap.String("type", alertType), zap.Float64("mgdl", value))
	}
}
