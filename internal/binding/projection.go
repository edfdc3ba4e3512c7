package binding

import (
	"fmt"

	"github.com/i474232898/sunshine/internal/weather"
)

const noColumn = -1

// Slots maps each visual slot to a column index of one projection.
// Slots the projection does not carry are noColumn.
type Slots struct {
	ID              int
	Date            int
	Description     int
	High            int
	Low             int
	Humidity        int
	Pressure        int
	Wind            int
	Degrees         int
	ConditionID     int
	LocationSetting int
}

func (s Slots) indices() []int {
	return []int{s.ID, s.Date, s.Description, s.High, s.Low, s.Humidity,
		s.Pressure, s.Wind, s.Degrees, s.ConditionID, s.LocationSetting}
}

// Forecast list projection. These indices are tied to forecastColumns; the
// array length is the last constant, so adding a column means adding a constant.
const (
	forecastColID = iota
	forecastColDate
	forecastColDesc
	forecastColMaxTemp
	forecastColMinTemp
	forecastColLocationSetting
	forecastColConditionID
	forecastColCoordLat
	forecastColCoordLong
	forecastColumnCount
)

var forecastColumns = [forecastColumnCount]weather.Column{
	forecastColID:              weather.ColumnWeatherID,
	forecastColDate:            weather.ColumnDate,
	forecastColDesc:            weather.ColumnShortDesc,
	forecastColMaxTemp:         weather.ColumnMaxTemp,
	forecastColMinTemp:         weather.ColumnMinTemp,
	forecastColLocationSetting: weather.ColumnLocationSetting,
	forecastColConditionID:     weather.ColumnConditionID,
	forecastColCoordLat:        weather.ColumnCoordLat,
	forecastColCoordLong:       weather.ColumnCoordLong,
}

var forecastSlots = Slots{
	ID:              forecastColID,
	Date:            forecastColDate,
	Description:     forecastColDesc,
	High:            forecastColMaxTemp,
	Low:             forecastColMinTemp,
	Humidity:        noColumn,
	Pressure:        noColumn,
	Wind:            noColumn,
	Degrees:         noColumn,
	ConditionID:     forecastColConditionID,
	LocationSetting: forecastColLocationSetting,
}

// Detail projection, tied to detailColumns.
const (
	detailColID = iota
	detailColDate
	detailColDesc
	detailColMaxTemp
	detailColMinTemp
	detailColHumidity
	detailColPressure
	detailColWindSpeed
	detailColDegrees
	detailColConditionID
	detailColLocationSetting
	detailColumnCount
)

var detailColumns = [detailColumnCount]weather.Column{
	detailColID:              weather.ColumnWeatherID,
	detailColDate:            weather.ColumnDate,
	detailColDesc:            weather.ColumnShortDesc,
	detailColMaxTemp:         weather.ColumnMaxTemp,
	detailColMinTemp:         weather.ColumnMinTemp,
	detailColHumidity:        weather.ColumnHumidity,
	detailColPressure:        weather.ColumnPressure,
	detailColWindSpeed:       weather.ColumnWindSpeed,
	detailColDegrees:         weather.ColumnDegrees,
	detailColConditionID:     weather.ColumnConditionID,
	detailColLocationSetting: weather.ColumnLocationSetting,
}

var detailSlots = Slots{
	ID:              detailColID,
	Date:            detailColDate,
	Description:     detailColDesc,
	High:            detailColMaxTemp,
	Low:             detailColMinTemp,
	Humidity:        detailColHumidity,
	Pressure:        detailColPressure,
	Wind:            detailColWindSpeed,
	Degrees:         detailColDegrees,
	ConditionID:     detailColConditionID,
	LocationSetting: detailColLocationSetting,
}

func init() {
	mustCheckProjection("forecast", forecastColumns[:], forecastSlots)
	mustCheckProjection("detail", detailColumns[:], detailSlots)
}

// mustCheckProjection panics at load time if a projection has a hole or a
// slot points outside it.
func mustCheckProjection(name string, columns []weather.Column, slots Slots) {
	seen := make(map[weather.Column]bool, len(columns))
	for i, c := range columns {
		if !c.Valid() {
			panic(fmt.Sprintf("binding: %s projection index %d has unknown column %q", name, i, c))
		}
		if seen[c] {
			panic(fmt.Sprintf("binding: %s projection repeats column %q", name, c))
		}
		seen[c] = true
	}
	for _, idx := range slots.indices() {
		if idx != noColumn && (idx < 0 || idx >= len(columns)) {
			panic(fmt.Sprintf("binding: %s slot index %d out of range", name, idx))
		}
	}
}

// ForecastColumns returns the list projection.
func ForecastColumns() []weather.Column {
	return append([]weather.Column(nil), forecastColumns[:]...)
}

// DetailColumns returns the detail projection.
func DetailColumns() []weather.Column {
	return append([]weather.Column(nil), detailColumns[:]...)
}
