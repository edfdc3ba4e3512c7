// Package format turns stored forecast values into display strings.
package format

import (
	"fmt"
	"math"
	"time"

	"github.com/juju/clock"

	"github.com/i474232898/sunshine/internal/weather"
)

// IconSet tells which drawable family an Icon belongs to.
type IconSet string

const (
	// IconSetArt is the large, detailed set used for the primary row and the detail pane.
	IconSetArt IconSet = "art"
	// IconSetGlyph is the compact set used for standard rows.
	IconSetGlyph IconSet = "ic"
)

// Icon names a drawable resource. The zero Icon means no icon.
type Icon struct {
	Set  IconSet `json:"set,omitempty"`
	Name string  `json:"name,omitempty"`
}

// Resource returns the resource name, e.g. "art_clouds".
func (i Icon) Resource() string {
	if i.Name == "" {
		return ""
	}
	return string(i.Set) + "_" + i.Name
}

// Formatter formats dates relative to its clock's notion of today.
type Formatter struct {
	clock clock.Clock
}

// New returns a Formatter. A nil clock means the wall clock.
func New(c clock.Clock) *Formatter {
	if c == nil {
		c = clock.WallClock
	}
	return &Formatter{clock: c}
}

// FriendlyDay renders a row date the way the list shows it:
// "Today, Mar 1", "Tomorrow", a weekday name within the coming week, and
// "Mon Mar 11" beyond that.
func (f *Formatter) FriendlyDay(dateMillis int64) string {
	date := weather.DateOf(dateMillis)
	days := f.daysFromToday(dateMillis)
	switch {
	case days == 0:
		return "Today, " + f.MonthDay(dateMillis)
	case days == 1:
		return "Tomorrow"
	case days > 1 && days < 7:
		return date.Weekday().String()
	default:
		return date.Format("Mon Jan 2")
	}
}

// DayName returns "Today", "Tomorrow" or the weekday name.
func (f *Formatter) DayName(dateMillis int64) string {
	switch f.daysFromToday(dateMillis) {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	default:
		return weather.DateOf(dateMillis).Weekday().String()
	}
}

// MonthDay returns the short month and day, e.g. "Mar 1".
func (f *Formatter) MonthDay(dateMillis int64) string {
	return weather.DateOf(dateMillis).Format("Jan 2")
}

// IsToday reports whether dateMillis falls on the clock's current day.
func (f *Formatter) IsToday(dateMillis int64) bool {
	return f.daysFromToday(dateMillis) == 0
}

func (f *Formatter) daysFromToday(dateMillis int64) int {
	today := weather.DayStart(f.clock.Now())
	return int((weather.DayStart(weather.DateOf(dateMillis)) - today) / int64(24*time.Hour/time.Millisecond))
}

// Temperature renders a Celsius value in the preferred unit with a degree sign.
func (f *Formatter) Temperature(celsius float64, metric bool) string {
	return PlainTemperature(celsius, metric) + "°"
}

// PlainTemperature renders a Celsius value in the preferred unit, rounded,
// without a unit suffix.
func PlainTemperature(celsius float64, metric bool) string {
	v := celsius
	if !metric {
		v = celsius*1.8 + 32
	}
	v = math.Round(v)
	if v == 0 {
		// avoid "-0"
		v = 0
	}
	return fmt.Sprintf("%.0f", v)
}

// PlainTemperature is the method form of the package function.
func (f *Formatter) PlainTemperature(celsius float64, metric bool) string {
	return PlainTemperature(celsius, metric)
}

// Humidity renders a relative humidity percentage.
func (f *Formatter) Humidity(pct float64) string {
	return fmt.Sprintf("Humidity: %.0f %%", pct)
}

// Pressure renders a pressure in hPa.
func (f *Formatter) Pressure(hpa float64) string {
	return fmt.Sprintf("Pressure: %.0f hPa", hpa)
}

// Wind renders a wind speed given in m/s plus its compass direction.
func (f *Formatter) Wind(speedMS, degrees float64, metric bool) string {
	if metric {
		return fmt.Sprintf("Wind: %.0f km/h %s", speedMS*3.6, Compass(degrees))
	}
	return fmt.Sprintf("Wind: %.0f mph %s", speedMS*2.23694, Compass(degrees))
}

// Compass maps meteorological degrees to one of eight compass points.
func Compass(degrees float64) string {
	d := math.Mod(degrees, 360)
	if d < 0 {
		d += 360
	}
	switch {
	case d >= 337.5 || d < 22.5:
		return "N"
	case d < 67.5:
		return "NE"
	case d < 112.5:
		return "E"
	case d < 157.5:
		return "SE"
	case d < 202.5:
		return "S"
	case d < 247.5:
		return "SW"
	case d < 292.5:
		return "W"
	default:
		return "NW"
	}
}

// ArtIcon returns the detailed icon for an OpenWeatherMap condition code.
func (f *Formatter) ArtIcon(conditionID int) Icon {
	return iconFor(IconSetArt, conditionID)
}

// SmallIcon returns the compact icon for an OpenWeatherMap condition code.
func (f *Formatter) SmallIcon(conditionID int) Icon {
	return iconFor(IconSetGlyph, conditionID)
}

// Based on the condition groups documented at
// http://openweathermap.org/weather-conditions
func iconFor(set IconSet, id int) Icon {
	var name string
	switch {
	case id >= 200 && id <= 232:
		name = "storm"
	case id >= 300 && id <= 321:
		name = "light_rain"
	case id >= 500 && id <= 504:
		name = "rain"
	case id == 511:
		name = "snow"
	case id >= 520 && id <= 531:
		name = "rain"
	case id >= 600 && id <= 622:
		name = "snow"
	case id >= 701 && id <= 761:
		name = "fog"
	case id == 762 || id == 771 || id == 781:
		name = "storm"
	case id == 800:
		name = "clear"
	case id == 801:
		name = "light_clouds"
	case id >= 802 && id <= 804:
		name = "clouds"
	default:
		return Icon{}
	}
	return Icon{Set: set, Name: name}
}
