package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cavusmuhammed68/ICC-IEEE/app"
	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
	"github.com/cavusmuhammed68/ICC-IEEE/core/recovery"
	"github.com/cavusmuhammed68/ICC-IEEE/infra/logger"
	"github.com/cavusmuhammed68/ICC-IEEE/pkg/export"
)

// disturbanceWindow is the number of trailing steps drawn on disturbance charts.
const disturbanceWindow = 24

var recoveryCmd = &cobra.Command{
	Use:   "recovery",
	Short: "Compare adaptive and rule-based recovery after a disturbance",
	RunE:  tracked("recovery", runRecovery),
}

func init() {
	recoveryCmd.Flags().StringVarP(&dataPath, "data", "d", "", "CSV dataset for disturbance charts, overrides dataset.path")
	rootCmd.AddCommand(recoveryCmd)
}

func runRecovery(cmd *cobra.Command, args []string) error {
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	out, err := svc.Recovery(cmd.Context())
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	printRecovery(w, "adaptive", out.Adaptive.Summary)
	printRecovery(w, "rule-based", out.RuleBased.Summary)
	return writeRecoveryOutputs(cmd.Context(), out)
}

func printRecovery(w io.Writer, name string, s recovery.Summary) {
	full := "not reached"
	if s.FullyRecovered {
		full = fmt.Sprintf("minute %d", s.FullRecoveryMinute)
	}
	fmt.Fprintf(w, "%-10s initial %.1f%%, full recovery %s, battery %.2f, fuel cell %.2f, unmet %.2f, served %.1f%%\n",
		name, s.InitialRecoveryPct, full, s.BatteryUsed, s.FuelCellUsed, s.Unmet, s.ServedPct)
}

func writeRecoveryOutputs(ctx context.Context, out *app.RecoveryOutput) error {
	oc := cfg.Output
	if err := os.MkdirAll(oc.Dir, 0o755); err != nil {
		return err
	}
	if oc.Want(oc.LaTeX) {
		for name, run := range map[string]app.RecoveryRun{"adaptive": out.Adaptive, "rule_based": out.RuleBased} {
			rows := run.Rows
			path := filepath.Join(oc.Dir, "recovery_"+name+".tex")
			if err := writeFile(path, func(w io.Writer) error { return export.WriteRecoveryLaTeX(w, rows) }); err != nil {
				return err
			}
		}
	}
	if !oc.Want(oc.Charts) {
		return nil
	}
	comparison := export.RecoveryComparisonChart(
		export.Series{Name: "Adaptive Recovery", Values: out.Adaptive.Curve},
		export.Series{Name: "Rule-Based Recovery", Values: out.RuleBased.Curve},
	)
	if err := writeFile(filepath.Join(oc.Dir, "recovery_charts.html"), func(w io.Writer) error {
		return export.WriteHTML(w, "Recovery", comparison)
	}); err != nil {
		return err
	}
	if cfg.Dataset.Path == "" && dataPath == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	steps, err := loadDataset()
	if err != nil {
		return err
	}
	return writeDisturbanceCharts(steps)
}

// disturbedWindow returns the last disturbanceWindow steps, the horizon every
// other command dispatches, and a copy with the cloudburst and wind drop
// applied at their positions in that window.
func disturbedWindow(steps []model.TimeStep) (window, disturbed []model.TimeStep, err error) {
	window = steps[max(0, len(steps)-disturbanceWindow):]
	disturbed, err = recovery.ApplyDisturbances(window, recovery.Cloudburst(), recovery.WindDrop())
	return window, disturbed, err
}

func writeDisturbanceCharts(all []model.TimeStep) error {
	steps, disturbed, err := disturbedWindow(all)
	if err != nil {
		return err
	}
	labels := make([]string, len(steps))
	var irr, irrEv, wind, windEv []float64
	for i, s := range steps {
		labels[i] = fmt.Sprint(s.Index)
		if !s.Time.IsZero() {
			labels[i] = s.Time.Format("15:04")
		}
		irr = append(irr, s.Irradiance)
		irrEv = append(irrEv, disturbed[i].Irradiance)
		wind = append(wind, s.WindSpeed)
		windEv = append(windEv, disturbed[i].WindSpeed)
	}
	cloud := export.DisturbanceChart("Solar Irradiance (Cloudburst Event)", "Irradiance (W/m2)", labels,
		export.Series{Name: "Original", Values: irr}, export.Series{Name: "Cloudburst", Values: irrEv})
	drop := export.DisturbanceChart("Wind Speed (Wind Drop Event)", "Wind Speed (m/s)", labels,
		export.Series{Name: "Original", Values: wind}, export.Series{Name: "Wind Drop", Values: windEv})
	return writeFile(filepath.Join(cfg.Output.Dir, "disturbance_charts.html"), func(w io.Writer) error {
		return export.WriteHTML(w, "Disturbances", cloud, drop)
	})
}
