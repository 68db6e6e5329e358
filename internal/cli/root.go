// Package cli implements the nsreport CLI commands.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mrcode/nightscout-report/internal/models"
	"github.com/mrcode/nightscout-report/internal/nightscout"
	"github.com/mrcode/nightscout-report/internal/service"
	"github.com/mrcode/nightscout-report/internal/timeline"
)

var (
	configPath string
	urlFlag    string
	tokenFlag  string
	fromFlag   string
	toFlag     string
	daysFlag   int
	verbose    bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "nsreport",
	Short: "Nightscout statistics and clinical PDF reports",
	Long: "Fetches CGM entries, treatments and basal profiles from a Nightscout\n" +
		"instance, derives clinical statistics and composes printable reports.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Settings file path (default: user config dir)")
	RootCmd.PersistentFlags().StringVar(&urlFlag, "url", "", "Nightscout base URL (overrides settings)")
	RootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "Nightscout API token (overrides settings)")
	RootCmd.PersistentFlags().StringVar(&fromFlag, "from", "", "Period start, YYYY-MM-DD")
	RootCmd.PersistentFlags().StringVar(&toFlag, "to", "", "Period end, YYYY-MM-DD (inclusive)")
	RootCmd.PersistentFlags().IntVar(&daysFlag, "days", 14, "Period length in days when --from is not given")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}

func newLogger() *zap.Logger {
	if verbose {
		logger, err := zap.NewDevelopment()
		if err == nil {
			return logger
		}
	}
	logger, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// loadSettings reads the settings file and applies environment and flag
// overrides, flags winning.
func loadSettings() (*models.Settings, error) {
	repo, err := models.NewFileRepository(configPath)
	if err != nil {
		return nil, fmt.Errorf("open settings: %w", err)
	}
	settings, err := repo.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	if err := settings.ApplyEnv(); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}
	if urlFlag != "" {
		settings.NightscoutURL = urlFlag
	}
	if tokenFlag != "" {
		settings.APIToken = tokenFlag
		settings.UseToken = true
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("no Nightscout URL configured; set --url, NSREPORT_URL or the settings file")
	}
	return settings, nil
}

func buildService(logger *zap.Logger) (*service.Service, *models.Settings, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, nil, err
	}
	client := nightscout.NewClientFromSettings(settings)
	return service.New(client, settings, logger), settings, nil
}

// queryPeriod resolves the --from/--to/--days flags into the inclusive
// local-time period to evaluate. Without --from the period ends today
// and reaches back --days calendar days.
func queryPeriod(now time.Time) (timeline.Period, error) {
	endOfDay := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
	}
	startOfDay := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}

	to := endOfDay(now)
	if toFlag != "" {
		parsed, err := time.ParseInLocation("2006-01-02", toFlag, now.Location())
		if err != nil {
			return timeline.Period{}, fmt.Errorf("invalid --to date %q: %w", toFlag, err)
		}
		to = endOfDay(parsed)
	}

	var from time.Time
	if fromFlag != "" {
		parsed, err := time.ParseInLocation("2006-01-02", fromFlag, now.Location())
		if err != nil {
			return timeline.Period{}, fmt.Errorf("invalid --from date %q: %w", fromFlag, err)
		}
		from = startOfDay(parsed)
	} else {
		if daysFlag < 1 {
			return timeline.Period{}, fmt.Errorf("--days must be at least 1")
		}
		from = startOfDay(to.AddDate(0, 0, -(daysFlag - 1)))
	}

	if to.Before(from) {
		return timeline.Period{}, fmt.Errorf("period end %s precedes start %s", to.Format("2006-01-02"), from.Format("2006-01-02"))
	}
	return timeline.Period{From: from, To: to}, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
