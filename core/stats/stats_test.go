package stats

import (
	"encoding/json"
	"testing"

	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatio(t *testing.T) {
	assert.Equal(t, NotComputable, Of(1, 0))
	assert.Equal(t, "n/a", Of(1, 0).String())
	assert.Equal(t, "0.50", Of(1, 2).String())
	assert.InDelta(t, 25, Percent(1, 4).Value, 1e-12)
	assert.False(t, Percent(0, 0).OK)

	b, err := json.Marshal(struct{ A, B Ratio }{Of(1, 4), Of(1, 0)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"A":0.25,"B":null}`, string(b))

	var r Ratio
	require.NoError(t, json.Unmarshal([]byte("0.5"), &r))
	assert.Equal(t, Ratio{Value: 0.5, OK: true}, r)
	require.NoError(t, json.Unmarshal([]byte("null"), &r))
	assert.False(t, r.OK)
}

func TestLoadStats(t *testing.T) {
	l := LoadStats([]float64{1, 5, 1}, []float64{1.75, 3.5, 1.75})
	assert.Equal(t, 5.0, l.PeakBefore)
	assert.Equal(t, 3.5, l.PeakAfter)
	assert.InDelta(t, 5/(7.0/3), l.PeakToAverageBefore.Value, 1e-9)
	assert.InDelta(t, 3.5/(7.0/3), l.PeakToAverageAfter.Value, 1e-9)
	assert.InDelta(t, 30, l.PeakReductionPct.Value, 1e-9)
}

func TestLoadStatsZeroLoad(t *testing.T) {
	l := LoadStats([]float64{0, 0}, []float64{0, 0})
	assert.False(t, l.PeakToAverageBefore.OK)
	assert.False(t, l.PeakToAverageAfter.OK)
	assert.False(t, l.PeakReductionPct.OK)

	l = LoadStats(nil, nil)
	assert.Zero(t, l.PeakBefore)
	assert.False(t, l.PeakReductionPct.OK)
}

func TestEnergyStats(t *testing.T) {
	recs := []model.DispatchRecord{
		{Demand: 1, RenewableUsed: 1, BatteryDispatch: -2, Curtailed: 0.5},
		{Demand: 5, BatteryDispatch: 0.3, FuelCellDispatch: 2, GridImport: 2.7},
	}
	e := EnergyStats(recs)
	assert.InDelta(t, 6, e.Demand, 1e-9)
	assert.InDelta(t, 2, e.BatteryCharged, 1e-9)
	assert.InDelta(t, 0.3, e.BatteryDischarged, 1e-9)
	assert.InDelta(t, 2, e.FuelCell, 1e-9)
	assert.InDelta(t, 2.7, e.GridImport, 1e-9)
	assert.InDelta(t, 0.5, e.Curtailed, 1e-9)
	assert.InDelta(t, 100.0/6, e.RenewableCoverage.Value, 1e-9)
	assert.InDelta(t, 2.3*100/6, e.DERCoverage.Value, 1e-9)

	assert.False(t, EnergyStats(nil).RenewableCoverage.OK)
}

func TestMarketStats(t *testing.T) {
	recs := []model.DispatchRecord{
		{Demand: 2, GridImport: 0.6, BatteryDispatch: 0.7, FuelCellDispatch: 0.7, Price: 300, HighPrice: true},
		{Demand: 2, GridImport: 1.2, BatteryDispatch: 0.4, FuelCellDispatch: 0.4, Price: 100},
		{Demand: 1, RenewableUsed: 1, Price: 50},
	}
	m := MarketStats(recs, 0)
	assert.InDelta(t, 0.6+0.2+0.05, m.CostWithoutDER, 1e-9)
	assert.InDelta(t, 0.18+0.12, m.CostWithDER, 1e-9)
	assert.InDelta(t, 100*(0.85-0.30)/0.85, m.CostReductionPct.Value, 1e-9)
	assert.InDelta(t, 70, m.PeakCostReductionPct.Value, 1e-9)
	assert.InDelta(t, 70, m.PeakDERCoveragePct.Value, 1e-9)
	assert.InDelta(t, 20, m.RenewableContribution.Value, 1e-9)
	assert.Equal(t, 1, m.HighPriceSteps)
}

func TestMarketStatsNoPeaks(t *testing.T) {
	m := MarketStats([]model.DispatchRecord{{Demand: 1, GridImport: 1, Price: 0}}, DefaultPriceScale)
	assert.False(t, m.CostReductionPct.OK)
	assert.False(t, m.PeakCostReductionPct.OK)
	assert.False(t, m.PeakDERCoveragePct.OK)
	assert.True(t, m.RenewableContribution.OK)
	assert.Equal(t, "n/a", m.PeakCostReductionPct.String())
}
