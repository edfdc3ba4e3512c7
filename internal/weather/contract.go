package weather

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Column identifies one column the store can project.
type Column string

const (
	ColumnWeatherID       Column = "weather._id"
	ColumnDate            Column = "date"
	ColumnShortDesc       Column = "short_desc"
	ColumnMaxTemp         Column = "max"
	ColumnMinTemp         Column = "min"
	ColumnHumidity        Column = "humidity"
	ColumnPressure        Column = "pressure"
	ColumnWindSpeed       Column = "wind"
	ColumnDegrees         Column = "degrees"
	ColumnConditionID     Column = "weather_id"
	ColumnLocationSetting Column = "location_setting"
	ColumnCityName        Column = "city_name"
	ColumnCoordLat        Column = "coord_lat"
	ColumnCoordLong       Column = "coord_long"
)

// Columns lists every column the store knows about.
var Columns = []Column{
	ColumnWeatherID, ColumnDate, ColumnShortDesc, ColumnMaxTemp, ColumnMinTemp,
	ColumnHumidity, ColumnPressure, ColumnWindSpeed, ColumnDegrees, ColumnConditionID,
	ColumnLocationSetting, ColumnCityName, ColumnCoordLat, ColumnCoordLong,
}

// Valid reports whether c is a known column.
func (c Column) Valid() bool {
	for _, known := range Columns {
		if c == known {
			return true
		}
	}
	return false
}

// Locator is an opaque reference to a collection of forecast rows or to a
// single row. Build one with the Build* functions.
type Locator string

const (
	locatorScheme = "sunshine"
	locatorHost   = "weather"
	startDateKey  = "date"
)

// ErrMalformedLocator is returned by ParseLocator for locators not produced
// by this package.
var ErrMalformedLocator = errors.New("malformed locator")

// BuildWeatherLocation returns a locator for every row stored for a location.
func BuildWeatherLocation(setting string) Locator {
	u := locationURL(setting)
	return Locator(u.String())
}

// BuildWeatherLocationWithStartDate returns a locator for the rows of a
// location dated on or after startMillis.
func BuildWeatherLocationWithStartDate(setting string, startMillis int64) Locator {
	u := locationURL(setting)
	u.RawQuery = url.Values{startDateKey: []string{strconv.FormatInt(startMillis, 10)}}.Encode()
	return Locator(u.String())
}

// BuildWeatherLocationWithDate returns a locator for the single row of a
// location on the given day.
func BuildWeatherLocationWithDate(setting string, dateMillis int64) Locator {
	u := locationURL(setting)
	date := "/" + strconv.FormatInt(dateMillis, 10)
	u.Path += date
	u.RawPath += date
	return Locator(u.String())
}

// locationURL puts setting in a single path segment, whatever it contains.
func locationURL(setting string) url.URL {
	return url.URL{
		Scheme:  locatorScheme,
		Host:    locatorHost,
		Path:    "/" + setting,
		RawPath: "/" + url.PathEscape(setting),
	}
}

// LocatorKind tells which query shape a locator addresses.
type LocatorKind int

const (
	LocatorLocation LocatorKind = iota
	LocatorLocationWithStartDate
	LocatorLocationWithDate
)

// ParsedLocator is the decoded form of a Locator, used by stores.
type ParsedLocator struct {
	Kind    LocatorKind
	Setting string
	Date    int64
}

// ParseLocator decodes a locator built by this package.
func ParseLocator(l Locator) (ParsedLocator, error) {
	u, err := url.Parse(string(l))
	if err != nil {
		return ParsedLocator{}, fmt.Errorf("%w: %v", ErrMalformedLocator, err)
	}
	if u.Scheme != locatorScheme || u.Host != locatorHost {
		return ParsedLocator{}, fmt.Errorf("%w: %q", ErrMalformedLocator, l)
	}

	segments := strings.Split(strings.TrimPrefix(u.EscapedPath(), "/"), "/")
	for i, s := range segments {
		unescaped, err := url.PathUnescape(s)
		if err != nil {
			return ParsedLocator{}, fmt.Errorf("%w: %v", ErrMalformedLocator, err)
		}
		segments[i] = unescaped
	}
	if len(segments) == 0 || segments[0] == "" {
		return ParsedLocator{}, fmt.Errorf("%w: missing location in %q", ErrMalformedLocator, l)
	}

	p := ParsedLocator{Kind: LocatorLocation, Setting: segments[0]}
	switch len(segments) {
	case 1:
		if raw := u.Query().Get(startDateKey); raw != "" {
			start, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return ParsedLocator{}, fmt.Errorf("%w: bad start date %q", ErrMalformedLocator, raw)
			}
			p.Kind = LocatorLocationWithStartDate
			p.Date = start
		}
	case 2:
		date, err := strconv.ParseInt(segments[1], 10, 64)
		if err != nil {
			return ParsedLocator{}, fmt.Errorf("%w: bad date %q", ErrMalformedLocator, segments[1])
		}
		p.Kind = LocatorLocationWithDate
		p.Date = date
	default:
		return ParsedLocator{}, fmt.Errorf("%w: %q", ErrMalformedLocator, l)
	}
	return p, nil
}
