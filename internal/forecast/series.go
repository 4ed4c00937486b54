package forecast

import (
	"fmt"
	"math"
	"time"
)

const (
	// shortWindow is the current hour plus the following 48 hours.
	shortWindow = 49
	longSamples = 7
	dayStride   = 24

	// TickEvery is the label spacing on the short-period axis.
	TickEvery = 6

	upstreamTimeLayout = "2006-01-02T15:04"
)

// Labels is a set of offset label formats.
type Labels struct {
	Now     string
	HourFmt string
	Today   string
	DayFmt  string
}

var (
	LabelsJA = Labels{Now: "現在", HourFmt: "+%d時間", Today: "今日", DayFmt: "+%d日"}
	LabelsEN = Labels{Now: "now", HourFmt: "+%dh", Today: "today", DayFmt: "+%dd"}
)

// LabelsFor returns the label set for a locale; anything but "en" is Japanese.
func LabelsFor(locale string) Labels {
	if locale == "en" {
		return LabelsEN
	}
	return LabelsJA
}

// For formats the label of the sample at offset positions after the anchor.
func (l Labels) For(p Period, offset int) string {
	if p == PeriodLong {
		if offset == 0 {
			return l.Today
		}
		return fmt.Sprintf(l.DayFmt, offset)
	}
	if offset == 0 {
		return l.Now
	}
	return fmt.Sprintf(l.HourFmt, offset)
}

// TickVisible reports whether the axis label at offset is drawn.
func TickVisible(p Period, offset int) bool {
	if p == PeriodLong {
		return true
	}
	return offset%TickEvery == 0
}

// AnchorIndex returns the index of the current hour: the first timestamp at or
// after now, stepped back by one unless it is already the first element.
func AnchorIndex(times []time.Time, now time.Time) (int, error) {
	for i, t := range times {
		if !t.Before(now) {
			if i > 0 {
				return i - 1, nil
			}
			return 0, nil
		}
	}
	return 0, ErrNoCurrentTime
}

// WindowIndices returns the source indices shown for a period, starting at
// anchor, bounded by n. It never pads or wraps.
func WindowIndices(p Period, anchor, n int) []int {
	var idx []int
	if p == PeriodLong {
		for i := 0; i < longSamples; i++ {
			j := anchor + i*dayStride
			if j >= n {
				break
			}
			idx = append(idx, j)
		}
		return idx
	}
	for j := anchor; j < n && j < anchor+shortWindow; j++ {
		idx = append(idx, j)
	}
	return idx
}

// ConvertValue applies the unit conversion for the metric and rounds the
// result to one decimal.
func ConvertValue(m Metric, u Unit, v float64) float64 {
	if m == MetricTemperature && u == UnitFahrenheit {
		v = v*1.8 + 32
	}
	return Round1(v)
}

// Round1 rounds half up to one decimal place.
func Round1(x float64) float64 {
	return math.Floor(x*10+0.5) / 10
}

// ParseTimes parses upstream local timestamps in loc.
func ParseTimes(raw []string, loc *time.Location) ([]time.Time, error) {
	out := make([]time.Time, len(raw))
	for i, s := range raw {
		t, err := time.ParseInLocation(upstreamTimeLayout, s, loc)
		if err != nil {
			// Some deployments return seconds or an offset.
			if t, err = time.Parse(time.RFC3339, s); err != nil {
				return nil, fmt.Errorf("%w: time[%d] %q", ErrMalformedResponse, i, s)
			}
		}
		out[i] = t
	}
	return out, nil
}

// BuildSeries turns a raw hourly block into the chart series for sel.
func BuildSeries(h Hourly, sel Selection, now time.Time, loc *time.Location, labels Labels) ([]Point, error) {
	key, ok := sel.Metric.UpstreamKey()
	if !ok {
		return nil, fmt.Errorf("%w: metric %q", ErrInvalidSelection, sel.Metric)
	}
	values, ok := h.Values[key]
	if !ok || h.Time == nil {
		return nil, fmt.Errorf("%w: hourly.time or hourly.%s missing", ErrMalformedResponse, key)
	}
	if len(values) < len(h.Time) {
		return nil, fmt.Errorf("%w: hourly.%s has %d samples for %d timestamps",
			ErrMalformedResponse, key, len(values), len(h.Time))
	}

	times, err := ParseTimes(h.Time, loc)
	if err != nil {
		return nil, err
	}
	anchor, err := AnchorIndex(times, now)
	if err != nil {
		return nil, err
	}

	idx := WindowIndices(sel.Period, anchor, len(times))
	points := make([]Point, 0, len(idx))
	for i, j := range idx {
		p := Point{Label: labels.For(sel.Period, i), Index: i}
		if v := values[j]; v != nil {
			p.Value = ConvertValue(sel.Metric, sel.Unit, *v)
		} else {
			p.Missing = true
		}
		points = append(points, p)
	}
	return points, nil
}
