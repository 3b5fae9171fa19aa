package recovery

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// FullRecoveryLevel is the fraction treated as fully restored.
const FullRecoveryLevel = 0.99

// Summary condenses a recovery run.
type Summary struct {
	InitialRecoveryPct float64 `json:"initial_recovery_pct"` // at minute 2
	FullRecoveryMinute int     `json:"full_recovery_minute"`
	FullyRecovered     bool    `json:"fully_recovered"`
	BatteryUsed        float64 `json:"battery_used"`
	FuelCellUsed       float64 `json:"fuel_cell_used"`
	Unmet              float64 `json:"unmet"`
	// ServedPct is the share of demand covered by supply plus DER.
	ServedPct float64 `json:"served_pct"`
}

// Summarize computes the headline figures of a recovery trace.
func Summarize(tr *Trace, curve []float64) Summary {
	var s Summary
	if len(curve) > 2 {
		s.InitialRecoveryPct = round(curve[2]*100, 1)
	}
	for i, r := range curve {
		if r >= FullRecoveryLevel {
			s.FullRecoveryMinute = i
			s.FullyRecovered = true
			break
		}
	}
	if tr == nil || len(tr.Rows) == 0 {
		return s
	}
	battery := make([]float64, len(tr.Rows))
	fuel := make([]float64, len(tr.Rows))
	unmet := make([]float64, len(tr.Rows))
	for i, row := range tr.Rows {
		battery[i], fuel[i], unmet[i] = row.Battery, row.FuelCell, row.Unsupplied
	}
	s.BatteryUsed = round(floats.Sum(battery), 2)
	s.FuelCellUsed = round(floats.Sum(fuel), 2)
	s.Unmet = round(floats.Sum(unmet), 2)
	if tr.Result != nil {
		demand := 0.0
		for _, rec := range tr.Result.Records {
			demand += rec.Demand
		}
		if demand > 0 {
			s.ServedPct = round(100*(1-floats.Sum(unmet)/demand), 1)
		}
	}
	return s
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
