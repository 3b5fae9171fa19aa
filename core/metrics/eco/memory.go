package eco

import (
	"slices"
	"sync"
	"time"
)

type dayKey struct {
	variant string
	day     time.Time
}

// MemoryStore is the in-process Store used by the HTTP server and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	days map[dayKey]Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{days: make(map[dayKey]Record)}
}

func (s *MemoryStore) Add(r Record) error {
	k := dayKey{r.Variant, Day(r.Date)}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.days[k]
	if !ok {
		acc = Record{Variant: k.variant, Date: k.day}
	}
	acc.merge(r)
	s.days[k] = acc
	return nil
}

func (s *MemoryStore) Query(variant string, start, end time.Time) ([]Record, error) {
	start, end, err := DayRange(start, end)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Record
	for k, r := range s.days {
		if k.variant == variant && !k.day.Before(start) && !k.day.After(end) {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b Record) int { return a.Date.Compare(b.Date) })
	return out, nil
}
