package forecast

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeSource struct {
	hourly Hourly
	err    error
	calls  atomic.Int32
	last   HourlyRequest
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) FetchHourly(_ context.Context, req HourlyRequest) (Hourly, error) {
	f.calls.Add(1)
	f.last = req
	return f.hourly, f.err
}

func TestFetchSeriesRequestsAllMetrics(t *testing.T) {
	loc := tokyo(t)
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, loc)
	src := &fakeSource{hourly: hourlyFixture(start, 24*7)}

	a, err := NewAdapter(src, loc, WithClock(func() time.Time { return start.Add(90 * time.Minute) }))
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}

	sel := Selection{City: CitySapporo, Metric: MetricWindSpeed, Period: PeriodShort, Unit: UnitCelsius}
	points, err := a.FetchSeries(context.Background(), sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 49 {
		t.Fatalf("expected 49 points, got %d", len(points))
	}
	if points[0].Value != 1 {
		t.Fatalf("expected anchor value 1, got %v", points[0].Value)
	}

	if len(src.last.Fields) != 4 {
		t.Fatalf("expected all four hourly fields, got %v", src.last.Fields)
	}
	if src.last.Timezone != "Asia/Tokyo" {
		t.Fatalf("unexpected timezone %q", src.last.Timezone)
	}
	want, _ := Lookup(CitySapporo)
	if src.last.Coordinate != want {
		t.Fatalf("unexpected coordinate %+v", src.last.Coordinate)
	}
}

func TestFetchSeriesUnknownCityMakesNoCall(t *testing.T) {
	src := &fakeSource{}
	a, err := NewAdapter(src, nil)
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}

	sel := DefaultSelection()
	sel.City = "kyoto"
	if _, err := a.FetchSeries(context.Background(), sel); !errors.Is(err, ErrUnknownCity) {
		t.Fatalf("expected ErrUnknownCity, got %v", err)
	}
	if n := src.calls.Load(); n != 0 {
		t.Fatalf("expected no upstream call, got %d", n)
	}
}

func TestFetchSeriesPropagatesSourceError(t *testing.T) {
	src := &fakeSource{err: ErrNetwork}
	a, err := NewAdapter(src, nil)
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}
	_, err = a.FetchSeries(context.Background(), DefaultSelection())
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if !IsUnavailable(err) {
		t.Fatalf("expected network error to count as unavailable")
	}
}

func TestFetchSeriesEnglishLabels(t *testing.T) {
	loc := tokyo(t)
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, loc)
	src := &fakeSource{hourly: hourlyFixture(start, 24*7)}
	a, err := NewAdapter(src, loc,
		WithClock(func() time.Time { return start }),
		WithLabels(LabelsEN),
	)
	if err != nil {
		t.Fatalf("NewAdapter: %v", err)
	}

	sel := DefaultSelection()
	sel.Period = PeriodLong
	points, err := a.FetchSeries(context.Background(), sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if points[0].Label != "today" || points[1].Label != "+1d" {
		t.Fatalf("unexpected labels %q %q", points[0].Label, points[1].Label)
	}
}
