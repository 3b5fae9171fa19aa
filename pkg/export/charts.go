package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
)

// Series is a named line on a chart.
type Series struct {
	Name   string
	Values []float64
}

// StepLabels formats the x axis of a dispatch trace as HH:MM, falling back
// to the step index when records carry no timestamp.
func StepLabels(records []model.DispatchRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		if r.Time.IsZero() {
			out[i] = strconv.Itoa(r.Index)
			continue
		}
		out[i] = r.Time.Format("15:04")
	}
	return out
}

// LoadProfileChart plots the original and shifted load. With step set the
// lines are drawn as mid-point steps.
func LoadProfileChart(labels []string, original, optimised []float64, step bool) *charts.Line {
	line := newLine("Load Profile Optimisation", "Time", "Load (kW)")
	var lo opts.LineChart
	if step {
		lo.Step = "middle"
	}
	line.SetXAxis(labels).
		AddSeries("Original Load", lineData(original), charts.WithLineChartOpts(lo)).
		AddSeries("Optimised Load", lineData(optimised), charts.WithLineChartOpts(lo),
			charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}))
	return line
}

// DERStackChart stacks renewable, battery, fuel cell and grid contributions
// to demand for every step.
func DERStackChart(records []model.DispatchRecord) *charts.Line {
	line := newLine("DER and Grid Contribution to Demand", "Time", "Power (kW)")
	var renewable, battery, fuel, grid []float64
	for _, r := range records {
		renewable = append(renewable, r.RenewableUsed)
		battery = append(battery, r.BatteryDischarge())
		fuel = append(fuel, r.FuelCellDispatch)
		grid = append(grid, r.GridImport)
	}
	stack := charts.WithLineChartOpts(opts.LineChart{Stack: "demand"})
	area := charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.6)})
	line.SetXAxis(StepLabels(records)).
		AddSeries("Renewables", lineData(renewable), stack, area).
		AddSeries("Battery", lineData(battery), stack, area).
		AddSeries("Fuel Cell", lineData(fuel), stack, area).
		AddSeries("Grid Import", lineData(grid), stack, area)
	return line
}

// PriceDERChart plots the spot price against total DER dispatch on a second
// y axis.
func PriceDERChart(records []model.DispatchRecord) *charts.Line {
	line := newLine("Spot Market Price and DER Dispatch", "Time", "Spot Market Price (EUR/MWh)")
	line.ExtendYAxis(opts.YAxis{Name: "DER Dispatch (kW)", Position: "right"})
	var price, der []float64
	for _, r := range records {
		price = append(price, r.Price)
		der = append(der, r.DERDispatch())
	}
	line.SetXAxis(StepLabels(records)).
		AddSeries("Spot Market Price", lineData(price)).
		AddSeries("Total DER Dispatch", lineData(der),
			charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1, Step: "middle"}),
			charts.WithAreaStyleOpts(opts.AreaStyle{Opacity: opts.Float(0.4)}))
	return line
}

// RecoveryComparisonChart plots recovery curves in percent over the minutes
// since the event.
func RecoveryComparisonChart(curves ...Series) *charts.Line {
	line := newLine("Recovery Time", "Time Since Event (minutes)", "System Recovery (%)")
	n := 0
	for _, c := range curves {
		if len(c.Values) > n {
			n = len(c.Values)
		}
	}
	minutes := make([]string, n)
	for i := range minutes {
		minutes[i] = strconv.Itoa(i)
	}
	line.SetXAxis(minutes)
	for _, c := range curves {
		pct := make([]float64, len(c.Values))
		for i, v := range c.Values {
			pct[i] = v * 100
		}
		line.AddSeries(c.Name, lineData(pct))
	}
	return line
}

// DisturbanceChart compares a weather channel before and after an event.
func DisturbanceChart(title, unit string, labels []string, baseline, event Series) *charts.Line {
	line := newLine(title, "Time", unit)
	line.SetXAxis(labels).
		AddSeries(baseline.Name, lineData(baseline.Values)).
		AddSeries(event.Name, lineData(event.Values), charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}))
	return line
}

// WriteHTML renders the charts on a single page.
func WriteHTML(w io.Writer, title string, cs ...components.Charter) error {
	page := components.NewPage()
	page.SetPageTitle(title)
	page.AddCharts(cs...)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render charts: %w", err)
	}
	return nil
}

func newLine(title, x, y string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: x}),
		charts.WithYAxisOpts(opts.YAxis{Name: y}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	return line
}

func lineData(values []float64) []opts.LineData {
	out := make([]opts.LineData, len(values))
	for i, v := range values {
		out[i] = opts.LineData{Value: v}
	}
	return out
}
