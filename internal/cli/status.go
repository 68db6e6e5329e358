package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrcode/nightscout-report/internal/nightscout"
)

func init() {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check the Nightscout connection and print server info",
		Run:   runStatus,
	}

	RootCmd.AddCommand(cmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	settings, err := loadSettings()
	if err != nil {
		exitErr("setup", err)
	}

	client := nightscout.NewClientFromSettings(settings)
	status, err := client.GetStatus(cmd.Context())
	if err != nil {
		exitErr("connect", err)
	}

	fmt.Printf("server:  %s\n", settings.NightscoutURL)
	fmt.Printf("name:    %s\n", status.Name)
	fmt.Printf("version: %s\n", status.Version)
	fmt.Printf("status:  %s\n", status.Status)
	fmt.Printf("api:     enabled=%v\n", status.APIEnabled)
}
