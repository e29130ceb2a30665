package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aau-energy/microgrid/app"
	"github.com/aau-energy/microgrid/config"
	"github.com/aau-energy/microgrid/core/model"
)

var (
	runtimeLoadKW float64
	runtimeGenKW  float64
	runtimeHours  int
)

var runtimeCmd = &cobra.Command{
	Use:   "runtime",
	Short: "Estimate runtime-to-depletion under a constant generation forecast",
	RunE:  estimateRuntime,
}

func init() {
	runtimeCmd.Flags().Float64Var(&runtimeLoadKW, "load-kw", 1.0, "constant load (kW)")
	runtimeCmd.Flags().Float64Var(&runtimeGenKW, "gen-kw", 0.0, "constant generation (kW)")
	runtimeCmd.Flags().IntVar(&runtimeHours, "hours", 24, "forecast horizon (hours)")
	rootCmd.AddCommand(runtimeCmd)
}

func estimateRuntime(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	start := time.Now().UTC()
	forecast := make(model.Series, 0, runtimeHours+1)
	for h := 0; h <= runtimeHours; h++ {
		forecast = append(forecast, model.Sample{TS: start.Add(time.Duration(h) * time.Hour), PowerKW: runtimeGenKW})
	}
	est, err := svc.RuntimeEstimate(forecast, runtimeLoadKW, start)
	if err != nil {
		return err
	}
	if est.Depleted {
		fmt.Printf("battery depletes after %d minutes (at %s)\n", est.RuntimeMinutes, est.EndTime.Format(time.RFC3339))
	} else {
		fmt.Printf("battery survives the %dh horizon with %.2f kWh start SOC\n", runtimeHours, est.StartSocKWh)
	}
	return nil
}
