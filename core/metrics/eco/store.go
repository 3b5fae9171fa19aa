package eco

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRange is returned by Query when end falls on a day before start.
var ErrInvalidRange = errors.New("eco: end before start")

// Store keeps one accumulated Record per variant and UTC day. Add merges into
// the existing record; Query returns the days of [start, end] in order.
type Store interface {
	Add(Record) error
	Query(variant string, start, end time.Time) ([]Record, error)
}

// Day aligns t to the start of its day in UTC.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayRange truncates both bounds to days and checks their order.
func DayRange(start, end time.Time) (time.Time, time.Time, error) {
	s, e := Day(start), Day(end)
	if e.Before(s) {
		return s, e, fmt.Errorf("%w: %s > %s", ErrInvalidRange, s.Format(time.DateOnly), e.Format(time.DateOnly))
	}
	return s, e, nil
}
