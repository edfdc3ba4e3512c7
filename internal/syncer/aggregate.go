package syncer

import (
	"sort"

	"github.com/i474232898/sunshine/internal/weather"
)

// AggregateDay combines several providers' readings for one day into a single
// stored row. Numeric fields are averaged over the providers that report
// them; the condition is the majority one, ties going to the earliest reading.
func AggregateDay(date int64, readings []weather.ProviderReading) weather.DayForecast {
	day := weather.DayForecast{Date: date}
	if len(readings) == 0 {
		day.Description = weather.ConditionUnknown.Description()
		day.ConditionID = weather.ConditionUnknown.ConditionID()
		return day
	}

	var minT, maxT, humidity, pressure, wind, degrees mean
	conditionCounts := make(map[weather.Condition]int)
	var order []weather.Condition

	for _, r := range readings {
		minT.add(r.MinTempC, true)
		maxT.add(r.MaxTempC, true)
		humidity.add(r.HumidityPct, r.HumidityPct > 0)
		pressure.add(r.PressureHpa, r.PressureHpa > 0)
		wind.add(r.WindSpeedMS, true)
		degrees.add(r.WindDegrees, r.WindDegrees > 0)

		if conditionCounts[r.Condition] == 0 {
			order = append(order, r.Condition)
		}
		conditionCounts[r.Condition]++
	}

	// Pick majority condition; unknown only wins when nothing else was reported.
	best := weather.ConditionUnknown
	bestCount := 0
	for _, cond := range order {
		if cond == weather.ConditionUnknown {
			continue
		}
		if count := conditionCounts[cond]; count > bestCount {
			best, bestCount = cond, count
		}
	}

	day.MinTempC = minT.value()
	day.MaxTempC = maxT.value()
	day.HumidityPct = humidity.value()
	day.PressureHpa = pressure.value()
	day.WindSpeedMS = wind.value()
	day.WindDegrees = degrees.value()
	day.ConditionID = best.ConditionID()
	day.Description = best.Description()

	// Prefer a provider's own code and wording for the winning condition.
	for _, r := range readings {
		if r.Condition == best && r.ConditionID > 0 {
			day.ConditionID = r.ConditionID
			if r.Description != "" {
				day.Description = r.Description
			}
			break
		}
	}
	return day
}

// AggregateForecast groups readings by day and aggregates each day, returning
// at most days rows in date order.
func AggregateForecast(readings []weather.ProviderReading, days int) []weather.DayForecast {
	byDay := make(map[int64][]weather.ProviderReading)
	for _, r := range readings {
		byDay[r.Date] = append(byDay[r.Date], r)
	}

	dates := make([]int64, 0, len(byDay))
	for d := range byDay {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })

	out := make([]weather.DayForecast, 0, len(dates))
	for _, d := range dates {
		if days > 0 && len(out) >= days {
			break
		}
		out = append(out, AggregateDay(d, byDay[d]))
	}
	return out
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64, ok bool) {
	if !ok {
		return
	}
	m.sum += v
	m.n++
}

func (m mean) value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}
