package forecast

import (
	"fmt"
	"strings"

	"github.com/i474232898/weather-dashboard/internal/common"
)

// City identifies one of the supported dashboard locations.
type City string

const (
	CityTokyo   City = "tokyo"
	CityOsaka   City = "osaka"
	CitySapporo City = "sapporo"
	CityFukuoka City = "fukuoka"
	CityNagoya  City = "nagoya"
)

// Metric is the hourly variable plotted on the chart.
type Metric string

const (
	MetricTemperature   Metric = "temperature"
	MetricHumidity      Metric = "humidity"
	MetricWindSpeed     Metric = "wind_speed"
	MetricPrecipitation Metric = "precipitation"
)

// Period selects the chart window.
type Period string

const (
	// PeriodShort is the current hour plus the next 48 hours.
	PeriodShort Period = "48h"
	// PeriodLong is one sample per day for up to 7 days.
	PeriodLong Period = "7d"
)

// Unit is the temperature unit. It only affects MetricTemperature.
type Unit string

const (
	UnitCelsius    Unit = "celsius"
	UnitFahrenheit Unit = "fahrenheit"
)

// Selection is the full set of user choices behind one query.
type Selection struct {
	City   City   `json:"city"`
	Metric Metric `json:"metric"`
	Period Period `json:"period"`
	Unit   Unit   `json:"unit"`
}

// DefaultSelection is what a fresh dashboard shows.
func DefaultSelection() Selection {
	return Selection{
		City:   CityTokyo,
		Metric: MetricTemperature,
		Period: PeriodShort,
		Unit:   UnitCelsius,
	}
}

// Key returns the cache key for this selection.
func (s Selection) Key() string {
	return strings.Join([]string{string(s.City), string(s.Metric), string(s.Period), string(s.Unit)}, "-")
}

// Validate reports whether every field is a known value. An unknown city is
// reported as ErrUnknownCity, anything else as ErrInvalidSelection.
func (s Selection) Validate() error {
	if _, ok := cityTable[s.City]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCity, s.City)
	}
	if _, ok := metricKeys[s.Metric]; !ok {
		return fmt.Errorf("%w: metric %q", ErrInvalidSelection, s.Metric)
	}
	if s.Period != PeriodShort && s.Period != PeriodLong {
		return fmt.Errorf("%w: period %q", ErrInvalidSelection, s.Period)
	}
	if s.Unit != UnitCelsius && s.Unit != UnitFahrenheit {
		return fmt.Errorf("%w: unit %q", ErrInvalidSelection, s.Unit)
	}
	return nil
}

// Point is one chart sample. The JSON names match what the chart consumes:
// "time" is the offset label and "hour" the categorical axis position.
type Point struct {
	Label   string  `json:"time"`
	Value   float64 `json:"value"`
	Index   int     `json:"hour"`
	Missing bool    `json:"missing,omitempty"`
}

// ParseCity accepts the identifier or the Japanese display name.
func ParseCity(s string) (City, error) {
	n := common.Normalize(s)
	for c, info := range cityTable {
		if n == string(c) || n == info.name {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCity, s)
}

// ParseMetric accepts the identifier, the upstream field name or the display name.
func ParseMetric(s string) (Metric, error) {
	n := common.Normalize(s)
	for m, key := range metricKeys {
		if n == string(m) || n == key || n == metricNames[m] {
			return m, nil
		}
	}
	if n == "windspeed" || n == "wind" {
		return MetricWindSpeed, nil
	}
	return "", fmt.Errorf("%w: metric %q", ErrInvalidSelection, s)
}

// ParsePeriod accepts "48h"/"short"/"48時間" and "7d"/"long"/"7日間".
func ParsePeriod(s string) (Period, error) {
	switch common.Normalize(s) {
	case "48h", "short", "48時間":
		return PeriodShort, nil
	case "7d", "long", "7日間":
		return PeriodLong, nil
	}
	return "", fmt.Errorf("%w: period %q", ErrInvalidSelection, s)
}

// ParseUnit accepts "celsius"/"c"/"°c" and "fahrenheit"/"f"/"°f".
func ParseUnit(s string) (Unit, error) {
	switch common.Normalize(s) {
	case "celsius", "c", "°c":
		return UnitCelsius, nil
	case "fahrenheit", "f", "°f":
		return UnitFahrenheit, nil
	}
	return "", fmt.Errorf("%w: unit %q", ErrInvalidSelection, s)
}

// ParseSelection parses the four raw selector values. Empty values fall back
// to DefaultSelection.
func ParseSelection(city, metric, period, unit string) (Selection, error) {
	sel := DefaultSelection()
	var err error
	if city != "" {
		if sel.City, err = ParseCity(city); err != nil {
			return Selection{}, err
		}
	}
	if metric != "" {
		if sel.Metric, err = ParseMetric(metric); err != nil {
			return Selection{}, err
		}
	}
	if period != "" {
		if sel.Period, err = ParsePeriod(period); err != nil {
			return Selection{}, err
		}
	}
	if unit != "" {
		if sel.Unit, err = ParseUnit(unit); err != nil {
			return Selection{}, err
		}
	}
	return sel, nil
}
