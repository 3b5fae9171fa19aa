package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cavusmuhammed68/ICC-IEEE/app"
	"github.com/cavusmuhammed68/ICC-IEEE/core/dispatch"
	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
	"github.com/cavusmuhammed68/ICC-IEEE/core/shifting"
	"github.com/cavusmuhammed68/ICC-IEEE/infra/dataset"
	"github.com/cavusmuhammed68/ICC-IEEE/infra/logger"
	"github.com/cavusmuhammed68/ICC-IEEE/pkg/export"
)

var dataPath string

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Dispatch the standalone variant and shift flexible load",
	RunE:  tracked("simulate", runVariant(dispatch.VariantStandalone)),
}

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Dispatch the price-aware market variant",
	RunE:  tracked("market", runVariant(dispatch.VariantMarket)),
}

func init() {
	for _, c := range []*cobra.Command{simulateCmd, marketCmd} {
		c.Flags().StringVarP(&dataPath, "data", "d", "", "CSV dataset, overrides dataset.path")
		rootCmd.AddCommand(c)
	}
}

func runVariant(variant string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		steps, err := loadDataset()
		if err != nil {
			return err
		}
		svc, err := app.New(cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := svc.Close(); err != nil {
				logger.New("main").Errorf("service close: %v", err)
			}
		}()

		out, err := svc.RunVariant(cmd.Context(), variant, steps)
		if err != nil {
			return err
		}
		printRun(cmd.OutOrStdout(), out)
		return writeRunOutputs(out)
	}
}

func loadDataset() ([]model.TimeStep, error) {
	dcfg := cfg.Dataset
	if dataPath != "" {
		dcfg.Path = dataPath
	}
	if dcfg.Path == "" {
		return nil, fmt.Errorf("no dataset: set dataset.path or --data")
	}
	steps, err := dataset.Load(dcfg)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return steps, nil
}

func printRun(w io.Writer, out *app.RunOutput) {
	fmt.Fprintf(w, "run %s (%s), %d steps\n", out.ID, out.Variant, len(out.Records))
	fmt.Fprintf(w, "  peak load        %.2f -> %.2f kW (reduction %s%%)\n",
		out.Load.PeakBefore, out.Load.PeakAfter, out.Load.PeakReductionPct)
	fmt.Fprintf(w, "  peak to average  %s -> %s\n", out.Load.PeakToAverageBefore, out.Load.PeakToAverageAfter)
	e := out.Energy
	fmt.Fprintf(w, "  energy           renewable %.2f, battery %.2f, fuel cell %.2f, grid %.2f kWh\n",
		e.RenewableUsed, e.BatteryDischarged, e.FuelCell, e.GridImport)
	fmt.Fprintf(w, "  DER coverage     %s%%\n", e.DERCoverage)
	b := out.Result.Battery
	fmt.Fprintf(w, "  final soc        %.2f kWh (%.0f%%), fuel cell %.2f kWh left\n",
		b.SoCKWh, 100*b.SoCFraction(), out.Result.FuelCell.EnergyKWh)
	if m := out.Market; m != nil {
		fmt.Fprintf(w, "  cost             %.2f -> %.2f (reduction %s%%)\n", m.CostWithoutDER, m.CostWithDER, m.CostReductionPct)
		fmt.Fprintf(w, "  high price steps %d, DER coverage at peak %s%%\n", m.HighPriceSteps, m.PeakDERCoveragePct)
	}
}

func writeRunOutputs(out *app.RunOutput) error {
	oc := cfg.Output
	if err := os.MkdirAll(oc.Dir, 0o755); err != nil {
		return err
	}
	prefix := filepath.Join(oc.Dir, out.Variant)
	if oc.Want(oc.CSV) {
		if err := writeFile(prefix+"_dispatch.csv", func(w io.Writer) error { return export.WriteCSV(w, out.Records) }); err != nil {
			return err
		}
	}
	if oc.Want(oc.JSON) {
		if err := writeFile(prefix+"_dispatch.json", func(w io.Writer) error { return export.WriteJSON(w, out.Records) }); err != nil {
			return err
		}
	}
	if oc.Want(oc.Charts) {
		labels := export.StepLabels(out.Records)
		optimised := out.Shifted
		if optimised == nil {
			optimised = shifting.OptimisedLoads(out.Records)
		}
		load := export.LoadProfileChart(labels, shifting.Demands(out.Records), optimised, out.Variant == dispatch.VariantStandalone)
		der := export.DERStackChart(out.Records)
		price := export.PriceDERChart(out.Records)
		title := fmt.Sprintf("%s dispatch", out.Variant)
		if err := writeFile(prefix+"_charts.html", func(w io.Writer) error {
			return export.WriteHTML(w, title, load, der, price)
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.New("export").Infof("wrote %s", path)
	return f.Close()
}
