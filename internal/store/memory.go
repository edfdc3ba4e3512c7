package store

import (
	"context"
	"sort"
	"sync"

	"github.com/i474232898/sunshine/internal/query"
	"github.com/i474232898/sunshine/internal/weather"
)

// forecastHistory holds the date-ordered forecast days stored for a location.
type forecastHistory struct {
	Location weather.Location
	Days     []weather.DayForecast
	ids      []int64
}

// MemoryStore is a concurrency-safe in-memory forecast store.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location setting
	data   map[string]*forecastHistory
	nextID int64

	// max number of days kept per location; <= 0 means unlimited
	maxDays int

	observers observers
}

// NewMemoryStore creates a new MemoryStore. If maxDays is <= 0, it is treated
// as unlimited.
func NewMemoryStore(maxDays int) *MemoryStore {
	return &MemoryStore{
		data:    make(map[string]*forecastHistory),
		maxDays: maxDays,
	}
}

// SaveForecast upserts days for a location, keyed by date, and enforces
// retention. Subscribers are notified afterwards.
func (s *MemoryStore) SaveForecast(ctx context.Context, loc weather.Location, days []weather.DayForecast) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	history, ok := s.data[loc.Key()]
	if !ok {
		history = &forecastHistory{}
		s.data[loc.Key()] = history
	}
	history.Location = loc

	for _, day := range days {
		i := sort.Search(len(history.Days), func(i int) bool { return history.Days[i].Date >= day.Date })
		if i < len(history.Days) && history.Days[i].Date == day.Date {
			history.Days[i] = day
			continue
		}
		s.nextID++
		history.Days = append(history.Days, weather.DayForecast{})
		history.ids = append(history.ids, 0)
		copy(history.Days[i+1:], history.Days[i:])
		copy(history.ids[i+1:], history.ids[i:])
		history.Days[i] = day
		history.ids[i] = s.nextID
	}

	// Enforce retention by count, keeping the latest days.
	if s.maxDays > 0 && len(history.Days) > s.maxDays {
		over := len(history.Days) - s.maxDays
		history.Days = history.Days[over:]
		history.ids = history.ids[over:]
	}
	s.mu.Unlock()

	s.observers.notify()
	return nil
}

// PurgeBefore drops every day dated before cutoff and returns how many went.
func (s *MemoryStore) PurgeBefore(ctx context.Context, cutoff int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var removed int64
	s.mu.Lock()
	for _, history := range s.data {
		i := sort.Search(len(history.Days), func(i int) bool { return history.Days[i].Date >= cutoff })
		if i > 0 {
			history.Days = history.Days[i:]
			history.ids = history.ids[i:]
			removed += int64(i)
		}
	}
	s.mu.Unlock()

	if removed > 0 {
		s.observers.notify()
	}
	return removed, nil
}

// Close is a no-op; the memory store holds no external resources.
func (s *MemoryStore) Close() error {
	return nil
}

// Query implements loader.Querier.
func (s *MemoryStore) Query(ctx context.Context, d query.Descriptor) (query.ResultSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := checkDescriptor(d); err != nil {
		return nil, err
	}
	p, err := parseSource(d)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	var recs []record
	if history, ok := s.data[p.Setting]; ok {
		for i, day := range history.Days {
			r := record{id: history.ids[i], location: history.Location, day: day}
			if !matchLocator(p, r) {
				continue
			}
			recs = append(recs, r)
		}
	}
	s.mu.RUnlock()

	if f, ok := d.Filter(); ok {
		kept := recs[:0]
		for _, r := range recs {
			if matchFilter(f, r) {
				kept = append(kept, r)
			}
		}
		recs = kept
	}
	sortRecords(recs, d.Sort())

	return query.NewSliceResultSet(project(recs, d.Columns())), nil
}

// Subscribe implements loader.Observable.
func (s *MemoryStore) Subscribe(fn func()) func() {
	return s.observers.subscribe(fn)
}
