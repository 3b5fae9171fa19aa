package stats

import (
	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultPriceScale converts EUR/MWh prices to EUR/kWh.
const DefaultPriceScale = 0.001

// Load compares a load profile before and after dispatch or shifting.
type Load struct {
	PeakBefore          float64 `json:"peak_before"`
	PeakAfter           float64 `json:"peak_after"`
	PeakToAverageBefore Ratio   `json:"peak_to_average_before"`
	PeakToAverageAfter  Ratio   `json:"peak_to_average_after"`
	PeakReductionPct    Ratio   `json:"peak_reduction_pct"`
}

// LoadStats computes peak figures. Empty series yield zero peaks and
// non-computable ratios.
func LoadStats(original, optimised []float64) Load {
	var l Load
	if len(original) > 0 {
		l.PeakBefore = floats.Max(original)
		l.PeakToAverageBefore = Of(l.PeakBefore, stat.Mean(original, nil))
	}
	if len(optimised) > 0 {
		l.PeakAfter = floats.Max(optimised)
		l.PeakToAverageAfter = Of(l.PeakAfter, stat.Mean(optimised, nil))
	}
	if len(original) > 0 && len(optimised) > 0 {
		l.PeakReductionPct = Percent(l.PeakBefore-l.PeakAfter, l.PeakBefore)
	}
	return l
}

// Energy totals the energy flows of a trace.
type Energy struct {
	Demand            float64 `json:"demand"`
	RenewableUsed     float64 `json:"renewable_used"`
	BatteryDischarged float64 `json:"battery_discharged"`
	BatteryCharged    float64 `json:"battery_charged"`
	FuelCell          float64 `json:"fuel_cell"`
	GridImport        float64 `json:"grid_import"`
	Curtailed         float64 `json:"curtailed"`
	RenewableCoverage Ratio   `json:"renewable_coverage_pct"`
	DERCoverage       Ratio   `json:"der_coverage_pct"`
}

// EnergyStats sums every flow of records.
func EnergyStats(records []model.DispatchRecord) Energy {
	var e Energy
	for _, r := range records {
		e.Demand += r.Demand
		e.RenewableUsed += r.RenewableUsed
		e.BatteryDischarged += r.BatteryDischarge()
		e.BatteryCharged += r.BatteryCharge()
		e.FuelCell += r.FuelCellDispatch
		e.GridImport += r.GridImport
		e.Curtailed += r.Curtailed
	}
	e.RenewableCoverage = Percent(e.RenewableUsed, e.Demand)
	e.DERCoverage = Percent(e.BatteryDischarged+e.FuelCell, e.Demand)
	return e
}

// Market holds the cost figures of a price-aware run.
type Market struct {
	CostWithoutDER        float64 `json:"cost_without_der"`
	CostWithDER           float64 `json:"cost_with_der"`
	CostReductionPct      Ratio   `json:"cost_reduction_pct"`
	PeakCostReductionPct  Ratio   `json:"peak_cost_reduction_pct"`
	PeakDERCoveragePct    Ratio   `json:"peak_der_coverage_pct"`
	RenewableContribution Ratio   `json:"renewable_contribution_pct"`
	HighPriceSteps        int     `json:"high_price_steps"`
}

// MarketStats prices demand and grid import. Without DER every kWh of demand
// is bought; with DER only the grid import is.
func MarketStats(records []model.DispatchRecord, priceScale float64) Market {
	if priceScale == 0 {
		priceScale = DefaultPriceScale
	}
	var m Market
	var peakWithout, peakWith, peakDemand, peakDER, demand, renewable float64
	for _, r := range records {
		price := r.Price * priceScale
		without := r.Demand * price
		with := r.GridImport * price
		m.CostWithoutDER += without
		m.CostWithDER += with
		demand += r.Demand
		renewable += r.RenewableUsed
		if r.HighPrice {
			m.HighPriceSteps++
			peakWithout += without
			peakWith += with
			peakDemand += r.Demand
			peakDER += r.DERDispatch()
		}
	}
	m.CostReductionPct = Percent(m.CostWithoutDER-m.CostWithDER, m.CostWithoutDER)
	m.PeakCostReductionPct = Percent(peakWithout-peakWith, peakWithout)
	m.PeakDERCoveragePct = Percent(peakDER, peakDemand)
	m.RenewableContribution = Percent(renewable, demand)
	return m
}
