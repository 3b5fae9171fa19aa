package eco

import (
	"time"

	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
)

// Record aggregates the energy mix of one dispatch variant for one day.
type Record struct {
	Variant      string
	Date         time.Time
	RenewableKWh float64
	BatteryKWh   float64
	FuelCellKWh  float64
	GridKWh      float64
}

// LocalKWh is the demand served without grid import.
func (r Record) LocalKWh() float64 {
	return r.RenewableKWh + r.BatteryKWh + r.FuelCellKWh
}

// CO2Avoided returns the grams of CO2 avoided by not importing the local
// energy from the grid, using the emission factor in g/kWh.
func (r Record) CO2Avoided(factor float64) float64 {
	return r.LocalKWh() * factor
}

// SelfSufficiency returns the share of demand served locally, between 0 and 1.
func (r Record) SelfSufficiency() float64 {
	total := r.LocalKWh() + r.GridKWh
	if total == 0 {
		return 0
	}
	return r.LocalKWh() / total
}

func (r *Record) merge(o Record) {
	r.RenewableKWh += o.RenewableKWh
	r.BatteryKWh += o.BatteryKWh
	r.FuelCellKWh += o.FuelCellKWh
	r.GridKWh += o.GridKWh
}

// FromRecords folds a dispatch trace into daily records. Steps without a
// timestamp are attributed to fallback.
func FromRecords(variant string, records []model.DispatchRecord, fallback time.Time) []Record {
	byDay := map[time.Time]*Record{}
	var order []time.Time
	for _, r := range records {
		ts := r.Time
		if ts.IsZero() {
			ts = fallback
		}
		d := Day(ts)
		rec := byDay[d]
		if rec == nil {
			rec = &Record{Variant: variant, Date: d}
			byDay[d] = rec
			order = append(order, d)
		}
		rec.merge(Record{
			RenewableKWh: r.RenewableUsed,
			BatteryKWh:   r.BatteryDischarge(),
			FuelCellKWh:  r.FuelCellDispatch,
			GridKWh:      r.GridImport,
		})
	}
	out := make([]Record, 0, len(order))
	for _, d := range order {
		out = append(out, *byDay[d])
	}
	return out
}
