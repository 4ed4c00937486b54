package dashboard

import (
	"time"

	"github.com/i474232898/weather-dashboard/internal/forecast"
)

// Status is the chart's tri-state.
type Status string

const (
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusSuccess Status = "success"
)

// UnavailableMessage is the only error text a chart ever shows.
const UnavailableMessage = "data unavailable"

// Tick is one categorical x-axis position.
type Tick struct {
	Index   int    `json:"hour"`
	Label   string `json:"label"`
	Visible bool   `json:"visible"`
}

// ChartState is everything a renderer needs for one selection.
type ChartState struct {
	Status     Status             `json:"status"`
	Generation uint64             `json:"generation"`
	Key        string             `json:"key"`
	Selection  forecast.Selection `json:"selection"`
	Title      string             `json:"title"`
	SeriesName string             `json:"seriesName"`
	Points     []forecast.Point   `json:"points,omitempty"`
	Ticks      []Tick             `json:"ticks,omitempty"`
	FetchedAt  *time.Time         `json:"fetchedAt,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// AxisLabel is the chart heading for a metric, with its unit.
func AxisLabel(m forecast.Metric, u forecast.Unit) string {
	switch m {
	case forecast.MetricTemperature:
		return "気温 (" + u.Symbol() + ")"
	case forecast.MetricHumidity:
		return "湿度 (%)"
	case forecast.MetricWindSpeed:
		return "風速 (m/s)"
	case forecast.MetricPrecipitation:
		return "降水量 (mm)"
	}
	return string(m)
}

// BuildTicks labels n axis positions with the same rule the series uses and
// hides all but every sixth label on the short period.
func BuildTicks(p forecast.Period, labels forecast.Labels, n int) []Tick {
	ticks := make([]Tick, n)
	for i := range ticks {
		ticks[i] = Tick{
			Index:   i,
			Label:   labels.For(p, i),
			Visible: forecast.TickVisible(p, i),
		}
	}
	return ticks
}

func baseState(sel forecast.Selection, gen uint64) ChartState {
	return ChartState{
		Generation: gen,
		Key:        sel.Key(),
		Selection:  sel,
		Title:      AxisLabel(sel.Metric, sel.Unit),
		SeriesName: sel.Metric.DisplayName(),
	}
}

// Loading is the state shown while a fetch is outstanding.
func Loading(sel forecast.Selection, gen uint64) ChartState {
	s := baseState(sel, gen)
	s.Status = StatusLoading
	return s
}

// Failed collapses any fetch error into the generic unavailable state.
func Failed(sel forecast.Selection, gen uint64) ChartState {
	s := baseState(sel, gen)
	s.Status = StatusError
	s.Error = UnavailableMessage
	return s
}

// Ready is the success state for a fetched series.
func Ready(sel forecast.Selection, gen uint64, labels forecast.Labels, points []forecast.Point, fetchedAt time.Time) ChartState {
	s := baseState(sel, gen)
	s.Status = StatusSuccess
	s.Points = points
	s.Ticks = BuildTicks(sel.Period, labels, len(points))
	if !fetchedAt.IsZero() {
		t := fetchedAt
		s.FetchedAt = &t
	}
	return s
}
