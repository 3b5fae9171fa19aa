package metrics

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/cavusmuhammed68/ICC-IEEE/core/metrics"
	"github.com/cavusmuhammed68/ICC-IEEE/core/metrics/eco"
	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
	"github.com/cavusmuhammed68/ICC-IEEE/infra/kpi"
)

func TestEcoSink_RecordStep(t *testing.T) {
	store := eco.NewMemoryStore()
	sink, err := NewEcoSink(store, 100, prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	day := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	steps := []model.DispatchRecord{
		{Time: day, RenewableUsed: 1, BatteryDispatch: 1, GridImport: 2},
		{Time: day.Add(time.Hour), FuelCellDispatch: 1, GridImport: 1},
	}
	for _, r := range steps {
		if err := sink.RecordStep(coremetrics.StepEvent{Variant: "market", Record: r}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	recs, _ := store.Query("market", day, day)
	if len(recs) != 1 || recs[0].GridKWh != 3 {
		t.Fatalf("unexpected store content %+v", recs)
	}
	if got := testutil.ToFloat64(sink.self.WithLabelValues("market", "2024-06-01")); got != 0.5 {
		t.Fatalf("self sufficiency %v", got)
	}
	if got := testutil.ToFloat64(sink.co2.WithLabelValues("market", "2024-06-01")); got != 300 {
		t.Fatalf("co2 %v", got)
	}
}

func TestEcoSink_CloseReleasesDatabase(t *testing.T) {
	store, err := kpi.NewSQLiteStore(filepath.Join(t.TempDir(), "kpi.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sink, err := NewEcoSink(store, 56, prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	var _ coremetrics.Closer = sink
	if err := sink.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := store.Add(eco.Record{Variant: "market", Date: time.Now()}); err == nil {
		t.Fatalf("store still open after sink close")
	}

	mem, err := NewEcoSink(eco.NewMemoryStore(), 56, prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	if err := mem.Close(); err != nil {
		t.Fatalf("memory store close: %v", err)
	}
}
