package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var reportOut string

func init() {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compose the clinical PDF report for a period",
		Run:   runReport,
	}
	cmd.Flags().StringVarP(&reportOut, "out", "o", "report.pdf", "Output PDF path")

	RootCmd.AddCommand(cmd)
}

func runReport(cmd *cobra.Command, args []string) {
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

	pdf, err := svc.GenerateReport(cmd.Context(), period, func(page, total int) {
		fmt.Fprintf(os.Stderr, "\rcomposing page %d/%d", page, total)
		if page == total {
			fmt.Fprintln(os.Stderr)
		}
	})
	if err != nil {
		exitErr("generate report", err)
	}

	if err := os.WriteFile(reportOut, pdf, 0600); err != nil {
		exitErr("write report", err)
	}
	fmt.Printf("wrote %s (%d bytes, %s to %s)\n", reportOut, len(pdf),
		period.From.Format("2006-01-02"), period.To.Format("2006-01-02"))
}
