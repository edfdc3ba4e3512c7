package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/sunshine/internal/weather"
)

func TestDescriptorIsImmutable(t *testing.T) {
	cols := []weather.Column{weather.ColumnDate, weather.ColumnShortDesc}
	d := NewDescriptor(weather.BuildWeatherLocation("94043"), cols,
		WithSort(Order{Column: weather.ColumnDate}))

	cols[0] = weather.ColumnCityName
	got := d.Columns()
	got[1] = weather.ColumnCoordLat

	assert.Equal(t, []weather.Column{weather.ColumnDate, weather.ColumnShortDesc}, d.Columns())
	_, hasFilter := d.Filter()
	assert.False(t, hasFilter)
	assert.Len(t, d.Sort(), 1)
}

func TestDescriptorEqual(t *testing.T) {
	src := weather.BuildWeatherLocationWithStartDate("94043", 1000)
	cols := []weather.Column{weather.ColumnDate}

	a := NewDescriptor(src, cols, WithFilter(Filter{Column: weather.ColumnConditionID, Op: OpEq, Value: 800}))
	b := NewDescriptor(src, cols, WithFilter(Filter{Column: weather.ColumnConditionID, Op: OpEq, Value: 800}))
	c := NewDescriptor(src, cols, WithSort(Order{Column: weather.ColumnDate, Descending: true}))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestSliceResultSetAccessors(t *testing.T) {
	rs := NewSliceResultSet([][]any{
		{int64(7), 1709251200000.0, "Cloudy", []byte("20.5")},
	})

	row, ok := rs.Row(0)
	require.True(t, ok)
	assert.Equal(t, int64(7), row.Int64(0))
	assert.Equal(t, int64(1709251200000), row.Int64(1))
	assert.Equal(t, "Cloudy", row.String(2))
	assert.InDelta(t, 20.5, row.Float64(3), 1e-9)
	assert.Equal(t, "", row.String(9))

	_, ok = rs.Row(1)
	assert.False(t, ok)
}

func TestClosedResultSetRefusesToSeek(t *testing.T) {
	rs := NewSliceResultSet([][]any{{"a"}, {"b"}})
	require.NoError(t, rs.Close())
	require.NoError(t, rs.Close())

	assert.True(t, rs.Closed())
	assert.Equal(t, 0, rs.Len())
	_, ok := rs.Row(0)
	assert.False(t, ok)
}
