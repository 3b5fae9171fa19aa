// Package dataset loads the hourly microgrid time series from CSV files.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
	"github.com/cavusmuhammed68/ICC-IEEE/core/series"
)

// ErrMissingColumn is returned when a required column is absent from the header.
var ErrMissingColumn = errors.New("missing column")

// Config maps CSV header names onto TimeStep fields.
type Config struct {
	Path             string `json:"path"`
	TimeColumn       string `json:"time_column"`
	DemandColumn     string `json:"demand_column"`
	PVColumn         string `json:"pv_column"`
	WindColumn       string `json:"wind_column"`
	PriceColumn      string `json:"price_column"`
	IrradianceColumn string `json:"irradiance_column"`
	WindSpeedColumn  string `json:"wind_speed_column"`
	// TimeLayout forces a single layout. Empty tries the common ISO forms.
	TimeLayout string `json:"time_layout"`
}

// SetDefaults applies the column names of the reference dataset.
func (c *Config) SetDefaults() {
	if c.TimeColumn == "" {
		c.TimeColumn = "time"
	}
	if c.DemandColumn == "" {
		c.DemandColumn = "consumption"
	}
	if c.PVColumn == "" {
		c.PVColumn = "pv_production"
	}
	if c.WindColumn == "" {
		c.WindColumn = "wind_production"
	}
	if c.PriceColumn == "" {
		c.PriceColumn = "spot_market_price"
	}
	if c.IrradianceColumn == "" {
		c.IrradianceColumn = "global_rad:W"
	}
	if c.WindSpeedColumn == "" {
		c.WindSpeedColumn = "wind_speed_10m:ms"
	}
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Load reads the CSV file at cfg.Path.
func Load(cfg Config) ([]model.TimeStep, error) {
	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f, cfg)
}

// Read parses CSV rows into time steps sorted ascending by time. Optional
// columns that are absent read as zero. Empty demand or price cells fail with
// series.ErrMissingValue.
func Read(r io.Reader, cfg Config) ([]model.TimeStep, error) {
	cfg.SetDefaults()
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s (empty file)", ErrMissingColumn, cfg.TimeColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, req := range []string{cfg.TimeColumn, cfg.DemandColumn} {
		if _, ok := idx[req]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, req)
		}
	}

	var steps []model.TimeStep
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		p := rowParser{rec: rec, idx: idx, row: row}
		ts, err := parseTime(p.raw(cfg.TimeColumn), cfg.TimeLayout)
		if err != nil {
			return nil, fmt.Errorf("row %d column %s: %w", row, cfg.TimeColumn, err)
		}
		step := model.TimeStep{
			Time:       ts,
			Demand:     p.required(cfg.DemandColumn),
			PV:         p.float(cfg.PVColumn),
			Wind:       p.float(cfg.WindColumn),
			Price:      p.required(cfg.PriceColumn),
			Irradiance: p.float(cfg.IrradianceColumn),
			WindSpeed:  p.float(cfg.WindSpeedColumn),
		}
		if p.err != nil {
			return nil, p.err
		}
		steps = append(steps, step)
	}

	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Time.Before(steps[j].Time) })
	for i := range steps {
		steps[i].Index = i
	}
	return steps, nil
}

type rowParser struct {
	rec []string
	idx map[string]int
	row int
	err error
}

func (p *rowParser) raw(col string) string {
	i, ok := p.idx[col]
	if !ok || i >= len(p.rec) {
		return ""
	}
	return strings.TrimSpace(p.rec[i])
}

// required parses a dispatch input column. An absent column reads as zero
// (only the price column may be absent); an empty cell in a present column
// is a missing value.
func (p *rowParser) required(col string) float64 {
	if p.err != nil {
		return 0
	}
	if _, ok := p.idx[col]; ok && p.raw(col) == "" {
		p.err = fmt.Errorf("row %d column %s: %w", p.row, col, series.ErrMissingValue)
		return 0
	}
	return p.float(col)
}

// float parses an optional numeric column. Empty cells read as zero.
func (p *rowParser) float(col string) float64 {
	if p.err != nil {
		return 0
	}
	s := p.raw(col)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		p.err = fmt.Errorf("row %d column %s: invalid number %q", p.row, col, s)
		return 0
	}
	return v
}

func parseTime(s, layout string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if layout != "" {
		return time.Parse(layout, s)
	}
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
