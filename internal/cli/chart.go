package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrcode/nightscout-report/internal/chart"
	"github.com/mrcode/nightscout-report/internal/timeline"
)

var (
	chartDate string
	chartOut  string
)

func init() {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render one day's glucose trend to PNG",
		Run:   runChart,
	}
	cmd.Flags().StringVar(&chartDate, "date", "", "Day to render, YYYY-MM-DD (default: today)")
	cmd.Flags().StringVarP(&chartOut, "out", "o", "chart.png", "Output PNG path")

	RootCmd.AddCommand(cmd)
}

func runChart(cmd *cobra.Command, args []string) {
	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	svc, settings, err := buildService(logger)
	if err != nil {
		exitErr("setup", err)
	}

	day := time.Now()
	if chartDate != "" {
		day, err = time.ParseInLocation("2006-01-02", chartDate, time.Local)
		if err != nil {
			exitErr("parse date", err)
		}
	}
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	period := timeline.Period{From: from, To: from.Add(24*time.Hour - time.Second)}

	res, err := svc.Query(cmd.Context(), period)
	if err != nil {
		exitErr("query", err)
	}
	if len(res.Series.Days) == 0 {
		exitErr("render", fmt.Errorf("no data for %s", from.Format("2006-01-02")))
	}

	png, err := chart.NewRenderer(settings).RenderDay(res.Series.Days[0])
	if err != nil {
		exitErr("render", err)
	}
	if err := os.WriteFile(chartOut, png, 0600); err != nil {
		exitErr("write chart", err)
	}
	fmt.Printf("wrote %s (%d bytes)\n", chartOut, len(png))
}
