// Package series turns a loaded dataset into the fixed dispatch horizon.
package series

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/cavusmuhammed68/ICC-IEEE/core/model"
	"gonum.org/v1/gonum/stat"
)

// ErrEmptySeries is returned when there is nothing to build a horizon from.
var ErrEmptySeries = errors.New("empty series")

// ErrMissingValue is returned when a step carries NaN in a dispatch field.
var ErrMissingValue = errors.New("missing numeric value")

// QuantileMethod selects how the price threshold is interpolated.
type QuantileMethod string

const (
	// QuantileLinear interpolates between the two closest ranks.
	QuantileLinear QuantileMethod = "linear"
	// QuantileEmpirical uses the empirical distribution (no interpolation).
	QuantileEmpirical QuantileMethod = "empirical"
)

// Config controls horizon construction.
type Config struct {
	Horizon           int            `json:"horizon"`
	HighPriceQuantile float64        `json:"high_price_quantile"`
	QuantileMethod    QuantileMethod `json:"quantile_method"`
}

// DefaultConfig keeps the last 24 steps and flags prices above the 90th percentile.
func DefaultConfig() Config {
	return Config{Horizon: 24, HighPriceQuantile: 0.9, QuantileMethod: QuantileLinear}
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.Horizon == 0 {
		c.Horizon = 24
	}
	if c.HighPriceQuantile == 0 {
		c.HighPriceQuantile = 0.9
	}
	if c.QuantileMethod == "" {
		c.QuantileMethod = QuantileLinear
	}
}

// Validate checks the quantile settings.
func (c Config) Validate() error {
	if c.Horizon < 0 {
		return fmt.Errorf("horizon must be >= 0")
	}
	if c.HighPriceQuantile < 0 || c.HighPriceQuantile > 1 || math.IsNaN(c.HighPriceQuantile) {
		return fmt.Errorf("high price quantile %v outside [0, 1]", c.HighPriceQuantile)
	}
	switch c.QuantileMethod {
	case QuantileLinear, QuantileEmpirical:
	default:
		return fmt.Errorf("unknown quantile method %q", c.QuantileMethod)
	}
	return nil
}

// Build takes the trailing horizon of steps, re-indexes it from zero and flags
// high-price steps. A zero horizon keeps every step. The input is not modified.
func Build(steps []model.TimeStep, cfg Config) ([]model.TimeStep, error) {
	if len(steps) == 0 {
		return nil, ErrEmptySeries
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	start := 0
	if cfg.Horizon > 0 && len(steps) > cfg.Horizon {
		start = len(steps) - cfg.Horizon
	}
	out := make([]model.TimeStep, len(steps)-start)
	copy(out, steps[start:])
	for i := range out {
		if out[i].HasNaN() {
			return nil, fmt.Errorf("step %d: %w", i, ErrMissingValue)
		}
		out[i].Index = i
	}
	threshold, err := Quantile(model.Prices(out), cfg.HighPriceQuantile, cfg.QuantileMethod)
	if err != nil {
		return nil, err
	}
	FlagHighPrice(out, threshold)
	return out, nil
}

// FlagHighPrice marks every step whose price is strictly above threshold.
func FlagHighPrice(steps []model.TimeStep, threshold float64) {
	for i := range steps {
		steps[i].IsHighPrice = steps[i].Price > threshold
	}
}

// Quantile returns the q-quantile of values.
func Quantile(values []float64, q float64, method QuantileMethod) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptySeries
	}
	if q < 0 || q > 1 {
		return 0, fmt.Errorf("quantile %v outside [0, 1]", q)
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	switch method {
	case QuantileEmpirical:
		return stat.Quantile(q, stat.Empirical, sorted, nil), nil
	case QuantileLinear, "":
		pos := q * float64(len(sorted)-1)
		lo := math.Floor(pos)
		hi := math.Ceil(pos)
		frac := pos - lo
		return sorted[int(lo)] + frac*(sorted[int(hi)]-sorted[int(lo)]), nil
	default:
		return 0, fmt.Errorf("unknown quantile method %q", method)
	}
}
