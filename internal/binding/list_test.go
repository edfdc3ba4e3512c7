package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/sunshine/internal/loader/loadertest"
	"github.com/i474232898/sunshine/internal/query"
	"github.com/i474232898/sunshine/internal/weather"
)

func TestAttachIssuesForecastQuery(t *testing.T) {
	f := newFixture(t, loadertest.Rows(weekOfRows()...))
	view := &fakeListView{}
	c := NewListController(f.env, view)

	assert.Equal(t, LoadStateIdle, c.State())
	c.Attach(nil)
	assert.Equal(t, LoadStateLoading, c.State())

	issued := f.querier.Issued()
	require.Len(t, issued, 1)
	d := issued[0]
	assert.Equal(t, weather.BuildWeatherLocationWithStartDate("94043", dayMillis(0)), d.Source())
	assert.Equal(t, ForecastColumns(), d.Columns())
	assert.Equal(t, []query.Order{{Column: weather.ColumnDate}}, d.Sort())

	f.settle()
	assert.Equal(t, LoadStateLoaded, c.State())
	assert.Len(t, view.render(), 7)
	assert.Empty(t, view.scrolls)
}

func TestOnlyLatestIssuedDescriptorIsApplied(t *testing.T) {
	f := newFixture(t, func(d query.Descriptor) loadertest.Result {
		p, err := weather.ParseLocator(d.Source())
		require.NoError(t, err)
		row := forecastRow(0, "Clear", 20, 10, 800)
		row[forecastColLocationSetting] = p.Setting
		return loadertest.Result{Rows: [][]any{row}}
	})
	view := &fakeListView{}
	c := NewListController(f.env, view)

	c.Refresh(FilterInputs{Location: "d1"})
	c.Refresh(FilterInputs{Location: "d2"})

	// The second query completes before the first one.
	f.executor.RunLast()
	f.executor.RunLast()
	f.poster.Flush()

	assert.Equal(t, 1, view.swaps)
	require.Equal(t, 1, c.Len())
	c.OnRowActivated(0)
	assert.Equal(t, weather.BuildWeatherLocationWithDate("d2", dayMillis(0)), c.SaveSelection().SelectedRowLocator)
}

func TestRestoreScrollPositionExactlyOnce(t *testing.T) {
	f := newFixture(t, loadertest.Rows(weekOfRows()...))
	first := NewListController(f.env, &fakeListView{})
	first.Attach(nil)
	f.settle()

	first.OnRowActivated(3)
	saved := first.SaveSelection()
	first.Detach()
	require.NotNil(t, saved.ScrollPosition)
	assert.Equal(t, 3, *saved.ScrollPosition)

	// Recreated view.
	view := &fakeListView{}
	second := NewListController(f.env, view)
	second.Attach(&saved)
	assert.Empty(t, view.scrolls, "nothing to scroll before data arrives")

	f.settle()
	assert.Equal(t, []int{3}, view.scrolls)

	// Later deliveries do not scroll again.
	f.querier.NotifyChanged()
	f.poster.Flush()
	f.settle()
	assert.Equal(t, 2, view.swaps)
	assert.Equal(t, []int{3}, view.scrolls)

	again := second.SaveSelection()
	require.NotNil(t, again.ScrollPosition)
	assert.Equal(t, 3, *again.ScrollPosition)
}

func TestSaveSelectionOmitsUnsetPosition(t *testing.T) {
	f := newFixture(t, loadertest.Rows(weekOfRows()...))
	c := NewListController(f.env, &fakeListView{})
	c.Attach(nil)
	f.settle()

	s := c.SaveSelection()
	assert.Nil(t, s.ScrollPosition)
	assert.Empty(t, s.SelectedRowLocator)
}

func TestResetThenRenderProducesNothing(t *testing.T) {
	f := newFixture(t, loadertest.Rows(weekOfRows()...))
	view := &fakeListView{}
	picks := &selections{}
	c := NewListController(f.env, view)
	c.SetCallback(picks)
	c.Attach(nil)
	f.settle()
	require.Len(t, view.render(), 7)

	c.Detach()
	assert.Equal(t, LoadStateIdle, c.State())
	assert.Empty(t, view.render())

	// An activation racing the reset is ignored.
	assert.NotPanics(t, func() { c.OnRowActivated(2) })
	assert.Empty(t, picks.locators)
	assert.Equal(t, 0, c.Len())

	for _, rs := range f.querier.Returned() {
		assert.True(t, rs.Closed())
	}
}

func TestRowSourceReleasedMidRender(t *testing.T) {
	f := newFixture(t, loadertest.Rows(weekOfRows()...))
	view := &fakeListView{}
	c := NewListController(f.env, view)
	c.Attach(nil)
	f.settle()

	src := view.src
	c.Detach()

	// A renderer still holding the old source binds nothing.
	_, ok := src.Bind(0)
	assert.False(t, ok)
}

func TestRefreshTwiceAppliesOneResult(t *testing.T) {
	f := newFixture(t, loadertest.Rows(weekOfRows()...))
	view := &fakeListView{}
	c := NewListController(f.env, view)
	c.Attach(nil)
	f.settle()
	require.Equal(t, 1, view.swaps)

	c.Refresh(FilterInputs{Location: "94043"})
	c.Refresh(FilterInputs{Location: "94043"})
	f.settle()

	assert.Equal(t, 2, view.swaps)
	returned := f.querier.Returned()
	require.Len(t, returned, 3)
	assert.True(t, returned[0].Closed())
	assert.True(t, returned[1].Closed(), "first refresh is superseded")
	assert.False(t, returned[2].Closed())
	assert.True(t, f.querier.Issued()[1].Equal(f.querier.Issued()[2]))
}

func TestStoreChangeAdoptsNewRowsAndClosesOld(t *testing.T) {
	f := newFixture(t, loadertest.Rows(weekOfRows()...))
	view := &fakeListView{}
	c := NewListController(f.env, view)
	c.Attach(nil)
	f.settle()
	require.Equal(t, LoadStateLoaded, c.State())
	require.Len(t, view.render(), 7)

	f.querier.SetResponder(loadertest.Rows(
		forecastRow(0, "Snow", 2, -3, 601),
		forecastRow(1, "Snow", 1, -4, 601),
	))
	f.querier.NotifyChanged()
	f.poster.Flush()
	f.settle()

	assert.Equal(t, LoadStateLoaded, c.State())
	assert.Equal(t, 2, view.swaps)
	rows := view.render()
	require.Len(t, rows, 2, "list binds from the new result")
	assert.Equal(t, "Snow", rows[0].Description)

	returned := f.querier.Returned()
	require.Len(t, returned, 2)
	assert.True(t, returned[0].Closed(), "superseded rows are released")
	assert.False(t, returned[1].Closed())
}

func TestSeekFailureLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t, loadertest.Rows(weekOfRows()...))
	picks := &selections{}
	c := NewListController(f.env, &fakeListView{})
	c.SetCallback(picks)
	c.Attach(nil)
	f.settle()

	c.OnRowActivated(2)
	before := c.SaveSelection()
	stateBefore := c.State()

	c.OnRowActivated(7)
	c.OnRowActivated(-1)

	assert.Equal(t, stateBefore, c.State())
	assert.Equal(t, before, c.SaveSelection())
	assert.Len(t, picks.locators, 1)
}

func TestRowActivationEmitsLocator(t *testing.T) {
	f := newFixture(t, loadertest.Rows(weekOfRows()...))
	picks := &selections{}
	c := NewListController(f.env, &fakeListView{})
	c.SetCallback(picks)
	c.Attach(nil)
	f.settle()

	c.OnRowActivated(4)

	want := weather.BuildWeatherLocationWithDate("94043", dayMillis(4))
	assert.Equal(t, []weather.Locator{want}, picks.locators)
	assert.Equal(t, want, c.SaveSelection().SelectedRowLocator)
}

func TestEmptyResultRendersBlankAndKeepsPendingScroll(t *testing.T) {
	f := newFixture(t, func(query.Descriptor) loadertest.Result { return loadertest.Result{} })
	view := &fakeListView{}
	c := NewListController(f.env, view)

	pos := 2
	c.Attach(&SelectionState{ScrollPosition: &pos})
	f.settle()

	assert.Equal(t, LoadStateIdle, c.State())
	assert.Nil(t, view.src)
	assert.Empty(t, view.scrolls)
	assert.Empty(t, f.errs.errs, "an empty result is not an error")

	f.querier.SetResponder(loadertest.Rows(weekOfRows()...))
	c.Refresh(FilterInputs{})
	f.settle()
	assert.Equal(t, []int{2}, view.scrolls)
}

func TestFailureKeepsPriorRowsAndReports(t *testing.T) {
	f := newFixture(t, loadertest.Rows(weekOfRows()...))
	view := &fakeListView{}
	c := NewListController(f.env, view)
	c.Attach(nil)
	f.settle()

	f.querier.SetResponder(func(query.Descriptor) loadertest.Result {
		return loadertest.Result{Err: errStoreDown}
	})
	c.Refresh(FilterInputs{Location: "10001"})
	f.settle()

	assert.Equal(t, LoadStateLoaded, c.State())
	assert.Len(t, view.render(), 7)
	require.Len(t, f.errs.errs, 1)
	assert.ErrorIs(t, f.errs.errs[0], errStoreDown)
	assert.Len(t, f.querier.Issued(), 2)
}

func TestFailureWithoutDataGoesIdle(t *testing.T) {
	f := newFixture(t, func(query.Descriptor) loadertest.Result {
		return loadertest.Result{Err: errStoreDown}
	})
	view := &fakeListView{}
	c := NewListController(f.env, view)
	c.Attach(nil)
	f.settle()

	assert.Equal(t, LoadStateIdle, c.State())
	assert.Empty(t, view.render())
}

func TestListRowKinds(t *testing.T) {
	f := newFixture(t, loadertest.Rows(weekOfRows()...))
	view := &fakeListView{}
	c := NewListController(f.env, view)
	c.SetUseTodayLayout(true)
	c.Attach(nil)
	f.settle()

	rows := view.render()
	require.Len(t, rows, 7)
	assert.Equal(t, ViewKindPrimary, rows[0].Kind)
	assert.Equal(t, "art_clear", rows[0].Icon.Resource())
	assert.Equal(t, "Today, Mar 1", rows[0].Day)
	for _, r := range rows[1:] {
		assert.Equal(t, ViewKindStandard, r.Kind)
		assert.Equal(t, "ic_clear", r.Icon.Resource())
	}
}
