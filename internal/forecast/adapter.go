package forecast

import (
	"context"
	"fmt"
	"log"
	"time"
	_ "time/tzdata"
)

// DefaultTimezone is the zone upstream timestamps are requested in.
const DefaultTimezone = "Asia/Tokyo"

// Adapter maps a Selection to a display-ready series using an HourlySource.
type Adapter struct {
	source   HourlySource
	location *time.Location
	labels   Labels
	now      func() time.Time
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithClock overrides the wall clock used to find the current hour.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) { a.now = now }
}

// WithLabels overrides the offset label set.
func WithLabels(l Labels) Option {
	return func(a *Adapter) { a.labels = l }
}

// NewAdapter creates a new Adapter. A nil location means DefaultTimezone.
func NewAdapter(source HourlySource, location *time.Location, opts ...Option) (*Adapter, error) {
	if location == nil {
		loc, err := time.LoadLocation(DefaultTimezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %s: %w", DefaultTimezone, err)
		}
		location = loc
	}
	a := &Adapter{
		source:   source,
		location: location,
		labels:   LabelsJA,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Labels returns the label set used for offsets, so renderers can stay
// consistent with the series.
func (a *Adapter) Labels() Labels {
	return a.labels
}

// FetchSeries resolves the city, fetches the hourly forecast and returns the
// windowed, converted series for sel.
func (a *Adapter) FetchSeries(ctx context.Context, sel Selection) ([]Point, error) {
	coord, ok := Lookup(sel.City)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCity, sel.City)
	}
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	log.Printf("DEBUG: FetchSeries %s via %s", sel.Key(), a.source.Name())

	hourly, err := a.source.FetchHourly(ctx, HourlyRequest{
		Coordinate: coord,
		Fields:     HourlyFields,
		Timezone:   a.location.String(),
	})
	if err != nil {
		return nil, err
	}

	points, err := BuildSeries(hourly, sel, a.now(), a.location, a.labels)
	if err != nil {
		log.Printf("ERROR: building series for %s: %v", sel.Key(), err)
		return nil, err
	}
	return points, nil
}
