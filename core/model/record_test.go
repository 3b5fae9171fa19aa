package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeFromDispatch(t *testing.T) {
	assert.Equal(t, ModeCharging, ModeFromDispatch(-0.5))
	assert.Equal(t, ModeIdle, ModeFromDispatch(0))
	assert.Equal(t, ModeDischarging, ModeFromDispatch(1.2))
}

func TestDispatchRecordParts(t *testing.T) {
	r := DispatchRecord{Demand: 5, RenewableUsed: 1, BatteryDispatch: 1.5, FuelCellDispatch: 2, GridImport: 0.5}
	assert.InDelta(t, 1.5, r.BatteryDischarge(), 1e-9)
	assert.InDelta(t, 0, r.BatteryCharge(), 1e-9)
	assert.InDelta(t, 3.5, r.DERDispatch(), 1e-9)
	assert.InDelta(t, r.Demand, r.Supplied(), 1e-9)

	r = DispatchRecord{BatteryDispatch: -2}
	assert.InDelta(t, 2, r.BatteryCharge(), 1e-9)
	assert.InDelta(t, 0, r.BatteryDischarge(), 1e-9)
}

func TestBatteryStateChargeDischarge(t *testing.T) {
	b, err := NewBatteryState(BatteryParams{CapacityKWh: 5, PowerLimitKW: 2, Efficiency: 0.95}, 2.5)
	require.NoError(t, err)

	assert.InDelta(t, 2.5/0.95, b.Headroom(), 1e-9)
	assert.InDelta(t, 2, b.Charge(2), 1e-9)
	assert.InDelta(t, 4.4, b.SoCKWh, 1e-9)

	// Only the remaining headroom is accepted.
	accepted := b.Charge(10)
	assert.InDelta(t, 0.6/0.95, accepted, 1e-9)
	assert.InDelta(t, 5, b.SoCKWh, 1e-9)
	assert.InDelta(t, 0, b.Charge(1), 1e-9)

	assert.InDelta(t, 5, b.Discharge(7), 1e-9)
	assert.InDelta(t, 0, b.SoCKWh, 1e-9)
	assert.InDelta(t, 0, b.Discharge(1), 1e-9)
}

func TestNewBatteryStateValidation(t *testing.T) {
	cases := []struct {
		name string
		p    BatteryParams
		soc  float64
	}{
		{"zero capacity", BatteryParams{CapacityKWh: 0, PowerLimitKW: 1, Efficiency: 1}, 0},
		{"zero power", BatteryParams{CapacityKWh: 1, PowerLimitKW: 0, Efficiency: 1}, 0},
		{"efficiency above one", BatteryParams{CapacityKWh: 1, PowerLimitKW: 1, Efficiency: 1.1}, 0},
		{"soc above capacity", BatteryParams{CapacityKWh: 1, PowerLimitKW: 1, Efficiency: 1}, 2},
		{"negative soc", BatteryParams{CapacityKWh: 1, PowerLimitKW: 1, Efficiency: 1}, -1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewBatteryState(c.p, c.soc)
			assert.Error(t, err)
		})
	}
}

func TestFuelCellDraw(t *testing.T) {
	f, err := NewFuelCellState(FuelCellParams{PowerLimitKW: 2, InitialEnergyKWh: 3})
	require.NoError(t, err)
	assert.InDelta(t, 2, f.Draw(2), 1e-9)
	assert.InDelta(t, 1, f.Draw(2), 1e-9)
	assert.True(t, f.Depleted())
	assert.InDelta(t, 0, f.Draw(2), 1e-9)
	assert.InDelta(t, 0, f.EnergyKWh, 1e-9)

	_, err = NewFuelCellState(FuelCellParams{PowerLimitKW: 0, InitialEnergyKWh: 1})
	assert.Error(t, err)
}

func TestTimeStepNetLoad(t *testing.T) {
	s := TimeStep{Demand: 1, PV: 3, Wind: 0.5}
	assert.InDelta(t, 3.5, s.Renewable(), 1e-9)
	assert.InDelta(t, -2.5, s.NetLoad(), 1e-9)
	assert.False(t, s.HasNaN())
}
