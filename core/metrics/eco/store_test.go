package eco

import (
	"errors"
	"testing"
	"time"

	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
)

func TestMemoryStore_Aggregation(t *testing.T) {
	s := NewMemoryStore()
	d := Day(time.Now())
	if err := s.Add(Record{Variant: "market", Date: d, GridKWh: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add(Record{Variant: "market", Date: d.Add(2 * time.Hour), GridKWh: 1, BatteryKWh: 0.5}); err != nil {
		t.Fatalf("add2: %v", err)
	}
	recs, err := s.Query("market", d, d)
	if err != nil || len(recs) != 1 {
		t.Fatalf("query: %v len=%d", err, len(recs))
	}
	if recs[0].GridKWh != 3 || recs[0].BatteryKWh != 0.5 {
		t.Fatalf("unexpected aggregate %+v", recs[0])
	}
	if recs, _ := s.Query("standalone", d, d); len(recs) != 0 {
		t.Fatalf("variants must not mix")
	}
}

func TestMemoryStore_Range(t *testing.T) {
	s := NewMemoryStore()
	d := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_ = s.Add(Record{Variant: "standalone", Date: d.AddDate(0, 0, 2-i), GridKWh: float64(i)})
	}
	recs, err := s.Query("standalone", d, d.AddDate(0, 0, 1).Add(5*time.Hour))
	if err != nil || len(recs) != 2 {
		t.Fatalf("query: %v len=%d", err, len(recs))
	}
	if !recs[0].Date.Equal(d) || !recs[1].Date.Equal(d.AddDate(0, 0, 1)) {
		t.Fatalf("records not ordered by day: %+v", recs)
	}
	if _, err := s.Query("standalone", d.AddDate(0, 0, 1), d); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	// Bounds in the same day are fine even when end precedes start.
	if _, err := s.Query("standalone", d.Add(5*time.Hour), d); err != nil {
		t.Fatalf("same-day range: %v", err)
	}
}

func TestRecordCalculations(t *testing.T) {
	r := Record{RenewableKWh: 1, BatteryKWh: 2, FuelCellKWh: 1, GridKWh: 4}
	if r.SelfSufficiency() != 0.5 {
		t.Fatalf("self sufficiency %v", r.SelfSufficiency())
	}
	if r.CO2Avoided(10) != 40 {
		t.Fatalf("co2")
	}
	if (Record{}).SelfSufficiency() != 0 {
		t.Fatalf("empty record")
	}
}

func TestFromRecords(t *testing.T) {
	day1 := time.Date(2024, 6, 1, 22, 0, 0, 0, time.UTC)
	recs := []model.DispatchRecord{
		{Time: day1, RenewableUsed: 1, GridImport: 1},
		{Time: day1.Add(time.Hour), BatteryDispatch: 2, FuelCellDispatch: 1},
		{Time: day1.Add(3 * time.Hour), BatteryDispatch: -1, GridImport: 3},
		{RenewableUsed: 5},
	}
	fallback := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := FromRecords("standalone", recs, fallback)
	if len(out) != 3 {
		t.Fatalf("expected 3 days, got %d", len(out))
	}
	if out[0].BatteryKWh != 2 || out[0].FuelCellKWh != 1 || out[0].RenewableKWh != 1 {
		t.Fatalf("day1 %+v", out[0])
	}
	if out[1].GridKWh != 3 || out[1].BatteryKWh != 0 {
		t.Fatalf("day2 %+v", out[1])
	}
	if !out[2].Date.Equal(fallback) || out[2].RenewableKWh != 5 {
		t.Fatalf("fallback day %+v", out[2])
	}
}
