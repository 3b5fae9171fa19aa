// Package export writes dispatch traces and recovery tables for reporting.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
)

var csvHeader = []string{
	"index",
	"time",
	"demand",
	"renewable",
	"renewable_used",
	"battery_dispatch",
	"fuel_cell_dispatch",
	"grid_import",
	"curtailed",
	"optimised_load",
	"soc_start",
	"soc_end",
	"fuel_cell_energy_end",
	"price",
	"high_price",
	"mode",
}

// WriteJSON writes the dispatch records to w in JSON format.
func WriteJSON(w io.Writer, records []model.DispatchRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// WriteCSV writes the dispatch records to w in CSV format, one row per step.
func WriteCSV(w io.Writer, records []model.DispatchRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		rec := []string{
			strconv.Itoa(r.Index),
			fmtTime(r.Time),
			fmtFloat(r.Demand),
			fmtFloat(r.Renewable),
			fmtFloat(r.RenewableUsed),
			fmtFloat(r.BatteryDispatch),
			fmtFloat(r.FuelCellDispatch),
			fmtFloat(r.GridImport),
			fmtFloat(r.Curtailed),
			fmtFloat(r.OptimisedLoad),
			fmtFloat(r.SoCStart),
			fmtFloat(r.SoCEnd),
			fmtFloat(r.FuelCellEnergyEnd),
			fmtFloat(r.Price),
			strconv.FormatBool(r.HighPrice),
			string(r.Mode),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func formatFixed(x float64, prec int) string {
	return strconv.FormatFloat(x, 'f', prec, 64)
}
