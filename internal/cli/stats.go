package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print derived statistics for a period as JSON",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	logger := newLogger()
	defer func() { _ = logger.Sync() }()

	svc, _, err := buildService(logger)
	if err != nil {
		exitErr("setup", err)
	}
	period, err := queryPeriod(time.Now())
	if err != nil {
		exitErr("period", err)
	}

	stats, err := svc.Statistics(cmd.Context(), period)
	if err != nil {
		exitErr("statistics", err)
	}

	b, _ := json.MarshalIndent(stats, "", "  ")
	fmt.Println(string(b))
}
