package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/sunshine/internal/query"
	"github.com/i474232898/sunshine/internal/testutil"
	"github.com/i474232898/sunshine/internal/weather"
)

type forecastStore = Forecasts

var march1 = time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)

func day(offset int) int64 {
	return weather.DayStart(march1.AddDate(0, 0, offset))
}

func mountainView() weather.Location {
	lat, lon := 37.39, -122.08
	return weather.Location{Setting: "94043", City: "Mountain View", Lat: &lat, Lon: &lon}
}

func week(desc string) []weather.DayForecast {
	days := make([]weather.DayForecast, 7)
	for i := range days {
		days[i] = weather.DayForecast{
			Date:        day(i),
			Description: desc,
			ConditionID: 800,
			MinTempC:    10 + float64(i),
			MaxTempC:    20 + float64(i),
			HumidityPct: 60,
			PressureHpa: 1012,
			WindSpeedMS: 3,
			WindDegrees: 90,
		}
	}
	return days
}

func eachStore(t *testing.T, fn func(t *testing.T, s forecastStore)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryStore(0))
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := OpenSQLite(context.Background(), ":memory:", testutil.NewTestLogger(t))
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		fn(t, s)
	})
}

var listColumns = []weather.Column{
	weather.ColumnWeatherID, weather.ColumnDate, weather.ColumnShortDesc,
	weather.ColumnMaxTemp, weather.ColumnMinTemp, weather.ColumnLocationSetting,
	weather.ColumnConditionID, weather.ColumnCoordLat, weather.ColumnCoordLong,
}

func TestQueryStartDateShape(t *testing.T) {
	eachStore(t, func(t *testing.T, s forecastStore) {
		ctx := context.Background()
		require.NoError(t, s.SaveForecast(ctx, mountainView(), week("Clear")))

		d := query.NewDescriptor(
			weather.BuildWeatherLocationWithStartDate("94043", day(2)),
			listColumns,
			query.WithSort(query.Order{Column: weather.ColumnDate}),
		)
		rs, err := s.Query(ctx, d)
		require.NoError(t, err)
		defer rs.Close()

		require.Equal(t, 5, rs.Len())
		for i := 0; i < rs.Len(); i++ {
			row, ok := rs.Row(i)
			require.True(t, ok)
			assert.Equal(t, day(i+2), row.Int64(1))
			assert.Equal(t, "Clear", row.String(2))
			assert.InDelta(t, 22+float64(i), row.Float64(3), 0.001)
			assert.Equal(t, "94043", row.String(5))
			assert.Equal(t, 800, row.Int(6))
			assert.InDelta(t, 37.39, row.Float64(7), 0.001)
		}
	})
}

func TestQueryDescendingSortAndFilter(t *testing.T) {
	eachStore(t, func(t *testing.T, s forecastStore) {
		ctx := context.Background()
		require.NoError(t, s.SaveForecast(ctx, mountainView(), week("Clear")))

		d := query.NewDescriptor(
			weather.BuildWeatherLocation("94043"),
			[]weather.Column{weather.ColumnDate, weather.ColumnMaxTemp},
			query.WithFilter(query.Filter{Column: weather.ColumnMaxTemp, Op: query.OpGte, Value: 24.0}),
			query.WithSort(query.Order{Column: weather.ColumnDate, Descending: true}),
		)
		rs, err := s.Query(ctx, d)
		require.NoError(t, err)

		require.Equal(t, 3, rs.Len())
		first, _ := rs.Row(0)
		last, _ := rs.Row(2)
		assert.Equal(t, day(6), first.Int64(0))
		assert.Equal(t, day(4), last.Int64(0))
	})
}

func TestQuerySingleDayShape(t *testing.T) {
	eachStore(t, func(t *testing.T, s forecastStore) {
		ctx := context.Background()
		require.NoError(t, s.SaveForecast(ctx, mountainView(), week("Clear")))

		d := query.NewDescriptor(
			weather.BuildWeatherLocationWithDate("94043", day(3)),
			[]weather.Column{weather.ColumnDate, weather.ColumnHumidity, weather.ColumnCityName},
		)
		rs, err := s.Query(ctx, d)
		require.NoError(t, err)
		require.Equal(t, 1, rs.Len())
		row, _ := rs.Row(0)
		assert.Equal(t, day(3), row.Int64(0))
		assert.InDelta(t, 60, row.Float64(1), 0.001)
		assert.Equal(t, "Mountain View", row.String(2))
	})
}

func TestQueryUnknownLocationIsEmpty(t *testing.T) {
	eachStore(t, func(t *testing.T, s forecastStore) {
		rs, err := s.Query(context.Background(), query.NewDescriptor(
			weather.BuildWeatherLocation("nowhere"), listColumns,
		))
		require.NoError(t, err)
		assert.Zero(t, rs.Len())
	})
}

func TestQueryRejectsBadDescriptors(t *testing.T) {
	eachStore(t, func(t *testing.T, s forecastStore) {
		ctx := context.Background()

		_, err := s.Query(ctx, query.NewDescriptor("content://elsewhere/x", listColumns))
		assert.ErrorIs(t, err, ErrUnknownLocator)

		_, err = s.Query(ctx, query.NewDescriptor(weather.BuildWeatherLocation("94043"),
			[]weather.Column{"max; DROP TABLE weather"}))
		assert.ErrorIs(t, err, ErrUnknownColumn)

		_, err = s.Query(ctx, query.NewDescriptor(weather.BuildWeatherLocation("94043"), listColumns,
			query.WithFilter(query.Filter{Column: weather.ColumnDate, Op: "LIKE", Value: "%"})))
		assert.ErrorIs(t, err, ErrUnsupportedOp)
	})
}

func TestSaveForecastUpsertsByDate(t *testing.T) {
	eachStore(t, func(t *testing.T, s forecastStore) {
		ctx := context.Background()
		require.NoError(t, s.SaveForecast(ctx, mountainView(), week("Clear")))
		require.NoError(t, s.SaveForecast(ctx, mountainView(), week("Rain")[:2]))

		rs, err := s.Query(ctx, query.NewDescriptor(
			weather.BuildWeatherLocation("94043"),
			[]weather.Column{weather.ColumnDate, weather.ColumnShortDesc},
			query.WithSort(query.Order{Column: weather.ColumnDate}),
		))
		require.NoError(t, err)
		require.Equal(t, 7, rs.Len())
		for i, want := range []string{"Rain", "Rain", "Clear"} {
			row, _ := rs.Row(i)
			assert.Equal(t, want, row.String(1))
		}
	})
}

func TestWritesNotifySubscribers(t *testing.T) {
	eachStore(t, func(t *testing.T, s forecastStore) {
		ctx := context.Background()
		calls := 0
		unsubscribe := s.Subscribe(func() { calls++ })

		require.NoError(t, s.SaveForecast(ctx, mountainView(), week("Clear")))
		assert.Equal(t, 1, calls)

		n, err := s.PurgeBefore(ctx, day(2))
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)
		assert.Equal(t, 2, calls)

		n, err = s.PurgeBefore(ctx, day(2))
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.Equal(t, 2, calls, "nothing purged, nothing to announce")

		unsubscribe()
		unsubscribe()
		require.NoError(t, s.SaveForecast(ctx, mountainView(), week("Rain")))
		assert.Equal(t, 2, calls)
	})
}

func TestMemoryStoreRetention(t *testing.T) {
	s := NewMemoryStore(3)
	ctx := context.Background()
	require.NoError(t, s.SaveForecast(ctx, mountainView(), week("Clear")))

	rs, err := s.Query(ctx, query.NewDescriptor(weather.BuildWeatherLocation("94043"),
		[]weather.Column{weather.ColumnDate}))
	require.NoError(t, err)
	require.Equal(t, 3, rs.Len())
	row, _ := rs.Row(0)
	assert.Equal(t, day(4), row.Int64(0))
}

func TestMemoryStoreHonoursContext(t *testing.T) {
	s := NewMemoryStore(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Query(ctx, query.NewDescriptor(weather.BuildWeatherLocation("94043"), listColumns))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQuerySettingWithSlash(t *testing.T) {
	eachStore(t, func(t *testing.T, s forecastStore) {
		ctx := context.Background()
		loc := weather.LocationFromSetting("Sao Paulo/BR")
		require.NoError(t, s.SaveForecast(ctx, loc, week("Rain")))

		rs, err := s.Query(ctx, query.NewDescriptor(
			weather.BuildWeatherLocationWithStartDate(loc.Setting, day(0)),
			listColumns,
			query.WithSort(query.Order{Column: weather.ColumnDate}),
		))
		require.NoError(t, err)
		defer rs.Close()
		assert.Equal(t, 7, rs.Len())

		rs, err = s.Query(ctx, query.NewDescriptor(
			weather.BuildWeatherLocationWithDate(loc.Setting, day(3)),
			listColumns,
		))
		require.NoError(t, err)
		defer rs.Close()
		require.Equal(t, 1, rs.Len())
		row, _ := rs.Row(0)
		assert.Equal(t, day(3), row.Int64(1))
		assert.Equal(t, "Sao Paulo/BR", row.String(5))
	})
}

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()
	logger := testutil.NewTestLogger(t)

	mem, err := Open(ctx, Options{Backend: BackendMemory, MaxDays: 3, Logger: logger})
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, mem)
	require.NoError(t, mem.SaveForecast(ctx, mountainView(), week("Clear")))
	rs, err := mem.Query(ctx, query.NewDescriptor(weather.BuildWeatherLocation("94043"), listColumns))
	require.NoError(t, err)
	assert.Equal(t, 3, rs.Len(), "retention applies")
	assert.NoError(t, mem.Close())

	db, err := Open(ctx, Options{Backend: BackendSQLite, Path: ":memory:", Logger: logger})
	require.NoError(t, err)
	require.IsType(t, &SQLStore{}, db)
	assert.NoError(t, db.Close())

	_, err = Open(ctx, Options{Backend: "postgres"})
	assert.Error(t, err)
}
