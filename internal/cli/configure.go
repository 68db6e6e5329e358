package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrcode/nightscout-report/internal/models"
)

var (
	cfgSecret        string
	cfgUnit          string
	cfgPatientName   string
	cfgPatientFirst  string
	cfgBirthDate     string
	cfgInsulin       string
	cfgDiabeticSince string
)

func init() {
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Store connection and patient settings",
		Run:   runConfigure,
	}
	cmd.Flags().StringVar(&cfgSecret, "secret", "", "API secret")
	cmd.Flags().StringVar(&cfgUnit, "unit", "", "Display unit: mg/dL or mmol/L")
	cmd.Flags().StringVar(&cfgPatientName, "patient-name", "", "Patient last name")
	cmd.Flags().StringVar(&cfgPatientFirst, "patient-first-name", "", "Patient first name")
	cmd.Flags().StringVar(&cfgBirthDate, "birth-date", "", "Birth date, YYYY-MM-DD")
	cmd.Flags().StringVar(&cfgInsulin, "insulin", "", "Insulin regimen")
	cmd.Flags().StringVar(&cfgDiabeticSince, "diabetic-since", "", "Diabetic since, YYYY-MM")

	RootCmd.AddCommand(cmd)
}

func runConfigure(cmd *cobra.Command, args []string) {
	repo, err := models.NewFileRepository(configPath)
	if err != nil {
		exitErr("open settings", err)
	}
	settings, err := repo.Load()
	if err != nil {
		exitErr("load settings", err)
	}

	if urlFlag != "" {
		settings.NightscoutURL = urlFlag
	}
	if tokenFlag != "" {
		settings.APIToken = tokenFlag
		settings.UseToken = true
	}
	if cfgSecret != "" {
		settings.APISecret = cfgSecret
	}
	if cfgUnit != "" {
		if cfgUnit != "mg/dL" && cfgUnit != "mmol/L" {
			exitErr("configure", fmt.Errorf("unknown unit %q", cfgUnit))
		}
		settings.Unit = cfgUnit
	}
	if cfgPatientName != "" {
		settings.PatientName = cfgPatientName
	}
	if cfgPatientFirst != "" {
		settings.PatientFirstName = cfgPatientFirst
	}
	if cfgBirthDate != "" {
		settings.BirthDate = cfgBirthDate
	}
	if cfgInsulin != "" {
		settings.InsulinRegimen = cfgInsulin
	}
	if cfgDiabeticSince != "" {
		settings.DiabeticSince = cfgDiabeticSince
	}

	if err := repo.Save(settings); err != nil {
		exitErr("save settings", err)
	}
	fmt.Println("settings saved")
}
