// Package store holds the queryable forecast stores the loaders read from.
// Both implementations answer the three locator shapes built by package
// weather and notify subscribers after every write.
package store

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/i474232898/sunshine/internal/query"
	"github.com/i474232898/sunshine/internal/weather"
)

var (
	// ErrUnknownLocator is returned for locators the store cannot resolve.
	ErrUnknownLocator = errors.New("unknown locator")
	// ErrUnknownColumn is returned when a query names a column the store does not have.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrUnsupportedOp is returned for filter operators the store does not implement.
	ErrUnsupportedOp = errors.New("unsupported filter operator")
)

// record is one joined weather+location row.
type record struct {
	id       int64
	location weather.Location
	day      weather.DayForecast
}

func (r record) value(c weather.Column) any {
	switch c {
	case weather.ColumnWeatherID:
		return r.id
	case weather.ColumnDate:
		return r.day.Date
	case weather.ColumnShortDesc:
		return r.day.Description
	case weather.ColumnMaxTemp:
		return r.day.MaxTempC
	case weather.ColumnMinTemp:
		return r.day.MinTempC
	case weather.ColumnHumidity:
		return r.day.HumidityPct
	case weather.ColumnPressure:
		return r.day.PressureHpa
	case weather.ColumnWindSpeed:
		return r.day.WindSpeedMS
	case weather.ColumnDegrees:
		return r.day.WindDegrees
	case weather.ColumnConditionID:
		return int64(r.day.ConditionID)
	case weather.ColumnLocationSetting:
		return r.location.Setting
	case weather.ColumnCityName:
		return r.location.City
	case weather.ColumnCoordLat:
		if r.location.Lat == nil {
			return nil
		}
		return *r.location.Lat
	case weather.ColumnCoordLong:
		if r.location.Lon == nil {
			return nil
		}
		return *r.location.Lon
	default:
		return nil
	}
}

// checkDescriptor validates every column a descriptor refers to.
func checkDescriptor(d query.Descriptor) error {
	if len(d.Columns()) == 0 {
		return fmt.Errorf("%w: empty projection", ErrUnknownColumn)
	}
	for _, c := range d.Columns() {
		if !c.Valid() {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, c)
		}
	}
	if f, ok := d.Filter(); ok {
		if !f.Column.Valid() {
			return fmt.Errorf("%w: filter on %q", ErrUnknownColumn, f.Column)
		}
		switch f.Op {
		case query.OpEq, query.OpGte, query.OpLte:
		default:
			return fmt.Errorf("%w: %q", ErrUnsupportedOp, f.Op)
		}
	}
	for _, o := range d.Sort() {
		if !o.Column.Valid() {
			return fmt.Errorf("%w: sort on %q", ErrUnknownColumn, o.Column)
		}
	}
	return nil
}

func parseSource(d query.Descriptor) (weather.ParsedLocator, error) {
	p, err := weather.ParseLocator(d.Source())
	if err != nil {
		return weather.ParsedLocator{}, fmt.Errorf("%w: %w", ErrUnknownLocator, err)
	}
	return p, nil
}

// matchLocator reports whether r falls within the locator's shape.
func matchLocator(p weather.ParsedLocator, r record) bool {
	if r.location.Setting != p.Setting {
		return false
	}
	switch p.Kind {
	case weather.LocatorLocationWithStartDate:
		return r.day.Date >= p.Date
	case weather.LocatorLocationWithDate:
		return r.day.Date == p.Date
	default:
		return true
	}
}

func matchFilter(f query.Filter, r record) bool {
	cmp, ok := compare(r.value(f.Column), f.Value)
	if !ok {
		return false
	}
	switch f.Op {
	case query.OpEq:
		return cmp == 0
	case query.OpGte:
		return cmp >= 0
	case query.OpLte:
		return cmp <= 0
	default:
		return false
	}
}

// compare orders two column values. Numbers compare numerically and strings
// lexically; anything else is incomparable.
func compare(a, b any) (int, bool) {
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		if !ok {
			return 0, false
		}
		switch {
		case as < bs:
			return -1, true
		case as > bs:
			return 1, true
		}
		return 0, true
	}
	af, ok := number(a)
	if !ok {
		return 0, false
	}
	bf, ok := number(b)
	if !ok {
		return 0, false
	}
	switch {
	case af < bf:
		return -1, true
	case af > bf:
		return 1, true
	}
	return 0, true
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func sortRecords(recs []record, orders []query.Order) {
	if len(orders) == 0 {
		return
	}
	sort.SliceStable(recs, func(i, j int) bool {
		for _, o := range orders {
			cmp, ok := compare(recs[i].value(o.Column), recs[j].value(o.Column))
			if !ok || cmp == 0 {
				continue
			}
			if o.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

func project(recs []record, columns []weather.Column) [][]any {
	rows := make([][]any, len(recs))
	for i, r := range recs {
		row := make([]any, len(columns))
		for j, c := range columns {
			row[j] = r.value(c)
		}
		rows[i] = row
	}
	return rows
}

// observers fans content-change notifications out to subscribers.
type observers struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]func()
}

func (o *observers) subscribe(fn func()) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fns == nil {
		o.fns = make(map[int]func())
	}
	id := o.nextID
	o.nextID++
	o.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			delete(o.fns, id)
		})
	}
}

func (o *observers) notify() {
	o.mu.Lock()
	fns := make([]func(), 0, len(o.fns))
	for _, fn := range o.fns {
		fns = append(fns, fn)
	}
	o.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
