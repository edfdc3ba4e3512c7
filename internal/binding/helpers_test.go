package binding

import (
	"errors"
	"testing"
	"time"

	"github.com/juju/clock/testclock"

	"github.com/i474232898/sunshine/internal/format"
	"github.com/i474232898/sunshine/internal/loader/loadertest"
	"github.com/i474232898/sunshine/internal/query"
	"github.com/i474232898/sunshine/internal/testutil"
	"github.com/i474232898/sunshine/internal/weather"
)

var march1 = time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)

func dayMillis(offset int) int64 {
	return weather.DayStart(march1.AddDate(0, 0, offset))
}

type fakePrefs struct {
	location string
	metric   bool
}

func (p *fakePrefs) Location() string { return p.location }
func (p *fakePrefs) IsMetric() bool   { return p.metric }

type fakeListView struct {
	src     RowSource
	swaps   int
	scrolls []int
}

func (v *fakeListView) SwapData(src RowSource) {
	v.swaps++
	v.src = src
}

func (v *fakeListView) ScrollTo(position int) {
	v.scrolls = append(v.scrolls, position)
}

// render binds every row the current source offers.
func (v *fakeListView) render() []RowViewModel {
	if v.src == nil {
		return nil
	}
	var out []RowViewModel
	for i := 0; i < v.src.Len(); i++ {
		vm, ok := v.src.Bind(i)
		if !ok {
			continue
		}
		out = append(out, vm)
	}
	return out
}

type fakeDetailView struct {
	shown   []RowViewModel
	cleared int
}

func (v *fakeDetailView) Show(vm RowViewModel) { v.shown = append(v.shown, vm) }
func (v *fakeDetailView) Clear()               { v.cleared++ }

type fakeShare struct {
	intents []ShareIntent
}

func (s *fakeShare) SetShareIntent(intent ShareIntent) { s.intents = append(s.intents, intent) }

func (s *fakeShare) last() ShareIntent {
	if len(s.intents) == 0 {
		return ShareIntent{}
	}
	return s.intents[len(s.intents)-1]
}

type selections struct {
	locators []weather.Locator
}

func (s *selections) OnItemSelected(l weather.Locator) { s.locators = append(s.locators, l) }
func (s *selections) ShowDetail(l weather.Locator)     { s.locators = append(s.locators, l) }

type syncCalls struct {
	locations []string
}

func (s *syncCalls) SyncNow(location string) { s.locations = append(s.locations, location) }

type errorSink struct {
	errs []error
}

func (s *errorSink) ReportError(err error) { s.errs = append(s.errs, err) }

type fixture struct {
	env      Env
	poster   *loadertest.Poster
	executor *loadertest.Executor
	querier  *loadertest.Querier
	prefs    *fakePrefs
	errs     *errorSink
}

func newFixture(t *testing.T, respond func(query.Descriptor) loadertest.Result) *fixture {
	f := &fixture{
		poster:   &loadertest.Poster{},
		executor: &loadertest.Executor{},
		querier:  loadertest.NewQuerier(respond),
		prefs:    &fakePrefs{location: "94043", metric: true},
		errs:     &errorSink{},
	}
	clk := testclock.NewClock(march1)
	f.env = Env{
		Querier:     f.querier,
		Poster:      f.poster,
		Go:          f.executor.Go,
		Preferences: f.prefs,
		Formatter:   format.New(clk),
		Clock:       clk,
		Errors:      f.errs,
		Logger:      testutil.NewTestLogger(t),
	}
	return f
}

// settle runs every pending query and delivers the results.
func (f *fixture) settle() {
	f.executor.RunAll()
	f.poster.Flush()
}

func forecastRow(offset int, desc string, high, low float64, conditionID int) []any {
	row := make([]any, forecastColumnCount)
	row[forecastColID] = int64(offset + 1)
	row[forecastColDate] = dayMillis(offset)
	row[forecastColDesc] = desc
	row[forecastColMaxTemp] = high
	row[forecastColMinTemp] = low
	row[forecastColLocationSetting] = "94043"
	row[forecastColConditionID] = int64(conditionID)
	row[forecastColCoordLat] = 37.39
	row[forecastColCoordLong] = -122.08
	return row
}

func weekOfRows() [][]any {
	rows := make([][]any, 7)
	for i := range rows {
		rows[i] = forecastRow(i, "Clear", 20+float64(i), 10+float64(i), 800)
	}
	return rows
}

func detailRow(offset int, desc string, high, low float64) []any {
	row := make([]any, detailColumnCount)
	row[detailColID] = int64(offset + 1)
	row[detailColDate] = dayMillis(offset)
	row[detailColDesc] = desc
	row[detailColMaxTemp] = high
	row[detailColMinTemp] = low
	row[detailColHumidity] = 81.0
	row[detailColPressure] = 1014.0
	row[detailColWindSpeed] = 5.0
	row[detailColDegrees] = 225.0
	row[detailColConditionID] = int64(803)
	row[detailColLocationSetting] = "94043"
	return row
}

var errStoreDown = errors.New("store down")
