package binding

import (
	"github.com/i474232898/sunshine/internal/format"
	"github.com/i474232898/sunshine/internal/query"
)

// Formatter produces display strings for raw stored values.
type Formatter interface {
	FriendlyDay(dateMillis int64) string
	DayName(dateMillis int64) string
	MonthDay(dateMillis int64) string
	IsToday(dateMillis int64) bool
	Temperature(celsius float64, metric bool) string
	PlainTemperature(celsius float64, metric bool) string
	Humidity(pct float64) string
	Pressure(hpa float64) string
	Wind(speedMS, degrees float64, metric bool) string
	ArtIcon(conditionID int) format.Icon
	SmallIcon(conditionID int) format.Icon
}

// RowViewModel is the render-ready form of one row. It is built fresh for
// every bind and never shared between rows.
type RowViewModel struct {
	Kind        ViewKind    `json:"kind"`
	Position    int         `json:"position"`
	Icon        format.Icon `json:"icon"`
	DateMillis  int64       `json:"dateMillis"`
	Day         string      `json:"day"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
	High        string      `json:"high"`
	Low         string      `json:"low"`
	Humidity    string      `json:"humidity,omitempty"`
	Wind        string      `json:"wind,omitempty"`
	Pressure    string      `json:"pressure,omitempty"`
}

// Project builds the view model for the row at position.
func Project(row query.Row, slots Slots, position int, useTodayLayout, metric bool, f Formatter) RowViewModel {
	vm := RowViewModel{
		Kind:     KindFor(position, useTodayLayout),
		Position: position,
	}

	conditionID := row.Int(slots.ConditionID)
	if vm.Kind == ViewKindPrimary {
		vm.Icon = f.ArtIcon(conditionID)
	} else {
		vm.Icon = f.SmallIcon(conditionID)
	}

	vm.DateMillis = row.Int64(slots.Date)
	vm.Day = f.FriendlyDay(vm.DateMillis)
	vm.Date = f.MonthDay(vm.DateMillis)
	vm.Description = row.String(slots.Description)
	vm.High = f.Temperature(row.Float64(slots.High), metric)
	vm.Low = f.Temperature(row.Float64(slots.Low), metric)

	if slots.Humidity != noColumn {
		vm.Humidity = f.Humidity(row.Float64(slots.Humidity))
	}
	if slots.Pressure != noColumn {
		vm.Pressure = f.Pressure(row.Float64(slots.Pressure))
	}
	if slots.Wind != noColumn && slots.Degrees != noColumn {
		vm.Wind = f.Wind(row.Float64(slots.Wind), row.Float64(slots.Degrees), metric)
	}
	return vm
}
