// Package stats derives load, energy and market figures from a dispatch trace.
// Every ratio is guarded: a zero denominator yields a Ratio that is not OK
// instead of NaN or Inf.
package stats

import (
	"encoding/json"
	"math"
	"strconv"
)

// Ratio is a derived figure that may not be computable.
type Ratio struct {
	Value float64
	OK    bool
}

// NotComputable is the zero Ratio.
var NotComputable = Ratio{}

// Of returns num/den, or NotComputable when den is zero or the result is not finite.
func Of(num, den float64) Ratio {
	if den == 0 || math.IsNaN(den) {
		return NotComputable
	}
	v := num / den
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotComputable
	}
	return Ratio{Value: v, OK: true}
}

// Percent returns 100*num/den.
func Percent(num, den float64) Ratio {
	r := Of(num, den)
	if r.OK {
		r.Value *= 100
	}
	return r
}

// String formats the value with two decimals or "n/a".
func (r Ratio) String() string {
	if !r.OK {
		return "n/a"
	}
	return strconv.FormatFloat(r.Value, 'f', 2, 64)
}

// MarshalJSON writes null when the ratio is not computable.
func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.OK {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

// UnmarshalJSON accepts a number or null.
func (r *Ratio) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*r = NotComputable
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*r = Ratio{Value: v, OK: true}
	return nil
}
