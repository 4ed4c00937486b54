package forecast

import "context"

// HourlyRequest describes one upstream forecast query.
type HourlyRequest struct {
	Coordinate Coordinate
	// Fields are the hourly variables to request.
	Fields []string
	// Timezone is an IANA name; upstream timestamps are local to it.
	Timezone string
}

// Hourly is the raw hourly block of an upstream response.
// Time holds local wall-clock timestamps without offset ("2006-01-02T15:04").
// A field that the upstream did not return is absent from Values; a null
// sample inside a field is a nil pointer.
type Hourly struct {
	Time   []string
	Values map[string][]*float64
}

// HourlySource abstracts the hourly forecast API (Open-Meteo).
type HourlySource interface {
	Name() string
	FetchHourly(ctx context.Context, req HourlyRequest) (Hourly, error)
}
