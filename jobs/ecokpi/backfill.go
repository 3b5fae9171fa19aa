// Package ecokpi rebuilds the daily eco KPIs from the run audit trail.
package ecokpi

import (
	"context"

	eco "github.com/cavusmuhammed68/ICC-IEEE/core/metrics/eco"
	"github.com/cavusmuhammed68/ICC-IEEE/core/trace"
)

// Backfill folds the step records of every stored run matching q into store
// and returns the number of runs processed. Runs stored without step records
// contribute nothing.
func Backfill(ctx context.Context, runs trace.Store, store eco.Store, q trace.Query) (int, error) {
	history, err := runs.Query(ctx, q)
	if err != nil {
		return 0, err
	}
	for _, run := range history {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		for _, rec := range eco.FromRecords(run.Variant, run.Records, run.Timestamp) {
			if err := store.Add(rec); err != nil {
				return 0, err
			}
		}
	}
	return len(history), nil
}
