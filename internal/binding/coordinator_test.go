package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/sunshine/internal/loader/loadertest"
	"github.com/i474232898/sunshine/internal/query"
	"github.com/i474232898/sunshine/internal/weather"
)

func TestNewCoordinatorValidates(t *testing.T) {
	f := newFixture(t, loadertest.Rows())
	list := NewListController(f.env, &fakeListView{})

	_, err := NewCoordinator(CoordinatorConfig{Mode: ModeSplit})
	assert.ErrorIs(t, err, ErrNoList)

	_, err = NewCoordinator(CoordinatorConfig{Mode: ModeSplit, List: list})
	assert.ErrorIs(t, err, ErrNoNavigator)

	_, err = NewCoordinator(CoordinatorConfig{Mode: ModeCombined, List: list})
	assert.ErrorIs(t, err, ErrNoDetail)
}

func TestModeFor(t *testing.T) {
	assert.Equal(t, ModeCombined, ModeFor(true))
	assert.Equal(t, ModeSplit, ModeFor(false))
	assert.Equal(t, "combined", ModeCombined.String())
	assert.Equal(t, "split", ModeSplit.String())
}

// mixedResponder answers list queries with a week and detail queries with one row.
func mixedResponder(t *testing.T) func(query.Descriptor) loadertest.Result {
	return func(d query.Descriptor) loadertest.Result {
		p, err := weather.ParseLocator(d.Source())
		require.NoError(t, err)
		if p.Kind == weather.LocatorLocationWithDate {
			row := detailRow(0, "Cloudy", 20, 12.2)
			row[detailColDate] = p.Date
			return loadertest.Result{Rows: [][]any{row}}
		}
		return loadertest.Result{Rows: weekOfRows()}
	}
}

func TestSplitModeNavigates(t *testing.T) {
	f := newFixture(t, mixedResponder(t))
	view := &fakeListView{}
	list := NewListController(f.env, view)
	nav := &selections{}

	c, err := NewCoordinator(CoordinatorConfig{
		Mode:        ModeSplit,
		List:        list,
		Navigator:   nav,
		Preferences: f.prefs,
	})
	require.NoError(t, err)
	assert.Equal(t, ModeSplit, c.Mode())

	c.Start(nil)
	f.settle()

	rows := view.render()
	require.Len(t, rows, 7)
	assert.Equal(t, ViewKindPrimary, rows[0].Kind, "split mode uses the today layout")

	list.OnRowActivated(1)
	assert.Equal(t, []weather.Locator{weather.BuildWeatherLocationWithDate("94043", dayMillis(1))}, nav.locators)
}

func TestCombinedModeUpdatesDetail(t *testing.T) {
	f := newFixture(t, mixedResponder(t))
	view := &fakeListView{}
	detailView := &fakeDetailView{}
	list := NewListController(f.env, view)
	detail := NewDetailController(f.env, detailView)

	c, err := NewCoordinator(CoordinatorConfig{
		Mode:        ModeCombined,
		List:        list,
		Detail:      detail,
		Preferences: f.prefs,
	})
	require.NoError(t, err)

	c.Start(nil)
	f.settle()

	rows := view.render()
	require.Len(t, rows, 7)
	for _, r := range rows {
		assert.Equal(t, ViewKindStandard, r.Kind)
	}
	assert.Empty(t, detailView.shown)

	list.OnRowActivated(2)
	f.settle()

	want := weather.BuildWeatherLocationWithDate("94043", dayMillis(2))
	assert.Equal(t, want, detail.Locator())
	require.Len(t, detailView.shown, 1)
	assert.Equal(t, dayMillis(2), detailView.shown[0].DateMillis)
}

func TestCombinedModeRestoresSelection(t *testing.T) {
	f := newFixture(t, mixedResponder(t))
	view := &fakeListView{}
	detailView := &fakeDetailView{}
	list := NewListController(f.env, view)
	detail := NewDetailController(f.env, detailView)

	c, err := NewCoordinator(CoordinatorConfig{Mode: ModeCombined, List: list, Detail: detail, Preferences: f.prefs})
	require.NoError(t, err)

	pos := 3
	locator := weather.BuildWeatherLocationWithDate("94043", dayMillis(3))
	c.Start(&SelectionState{ScrollPosition: &pos, SelectedRowLocator: locator})
	f.settle()

	assert.Equal(t, []int{3}, view.scrolls)
	assert.Equal(t, locator, detail.Locator())
	require.Len(t, detailView.shown, 1)
	assert.Equal(t, locator, list.SaveSelection().SelectedRowLocator)
}

func TestResumeAfterLocationChange(t *testing.T) {
	f := newFixture(t, mixedResponder(t))
	list := NewListController(f.env, &fakeListView{})
	syncs := &syncCalls{}

	c, err := NewCoordinator(CoordinatorConfig{
		Mode:        ModeSplit,
		List:        list,
		Navigator:   &selections{},
		Preferences: f.prefs,
		Sync:        syncs,
	})
	require.NoError(t, err)
	c.Start(nil)
	f.settle()

	c.Resume()
	assert.Empty(t, syncs.locations, "unchanged location")
	assert.Len(t, f.querier.Issued(), 1)

	f.prefs.location = "10001"
	c.Resume()
	assert.Equal(t, []string{"10001"}, syncs.locations)
	issued := f.querier.Issued()
	require.Len(t, issued, 2)
	assert.Equal(t, weather.BuildWeatherLocationWithStartDate("10001", dayMillis(0)), issued[1].Source())

	// Seen once, not again.
	c.Resume()
	assert.Len(t, syncs.locations, 1)
}

func TestStopDetachesControllers(t *testing.T) {
	f := newFixture(t, mixedResponder(t))
	view := &fakeListView{}
	list := NewListController(f.env, view)
	detail := NewDetailController(f.env, &fakeDetailView{})
	c, err := NewCoordinator(CoordinatorConfig{Mode: ModeCombined, List: list, Detail: detail, Preferences: f.prefs})
	require.NoError(t, err)

	c.Start(nil)
	f.settle()
	list.OnRowActivated(0)
	f.settle()

	c.Stop()
	assert.Equal(t, LoadStateIdle, list.State())
	assert.Equal(t, LoadStateIdle, detail.State())
	assert.Zero(t, f.querier.Observers())
	assert.Empty(t, view.render())
}
