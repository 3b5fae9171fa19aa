package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cavusmuhammed68/ICC-IEEE/core/trace"
)

var traceQuery struct {
	variant string
	id      string
	since   time.Duration
}

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Inspect the run audit trail",
}

var traceLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored runs",
	RunE:  tracked("trace ls", runTraceLs),
}

func init() {
	traceLsCmd.Flags().StringVar(&traceQuery.variant, "variant", "", "only runs of this variant")
	traceLsCmd.Flags().StringVar(&traceQuery.id, "id", "", "only the run with this id")
	traceLsCmd.Flags().DurationVar(&traceQuery.since, "since", 0, "only runs newer than this duration")
	traceCmd.AddCommand(traceLsCmd)
	rootCmd.AddCommand(traceCmd)
}

func runTraceLs(cmd *cobra.Command, args []string) error {
	store, err := trace.NewStore(cfg.Trace)
	if err != nil {
		return fmt.Errorf("trace store: %w", err)
	}
	defer func() { _ = store.Close() }()

	q := trace.Query{Variant: traceQuery.variant, ID: traceQuery.id}
	if traceQuery.since > 0 {
		q.Start = time.Now().Add(-traceQuery.since)
	}
	runs, err := store.Query(cmd.Context(), q)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tVARIANT\tSTEPS\tPEAK REDUCTION %\tGRID kWh\tFINAL SOC kWh")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%.2f\t%.2f\n",
			r.ID, r.Timestamp.Format(time.RFC3339), r.Variant, r.Steps,
			r.Load.PeakReductionPct, r.Energy.GridImport, r.FinalSoC)
	}
	return tw.Flush()
}
