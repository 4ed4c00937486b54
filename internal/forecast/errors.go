package forecast

import "errors"

var (
	// ErrUnknownCity is returned when a city is not in the coordinate table.
	// It is raised before any upstream request is made.
	ErrUnknownCity = errors.New("unknown city")

	// ErrInvalidSelection is returned for an unknown metric, period or unit.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrNetwork covers transport failures and non-success upstream statuses.
	ErrNetwork = errors.New("upstream request failed")

	// ErrMalformedResponse is returned when the hourly arrays are absent or unusable.
	ErrMalformedResponse = errors.New("malformed upstream response")

	// ErrNoCurrentTime is returned when no timestamp is at or after now.
	ErrNoCurrentTime = errors.New("no forecast sample at or after the current time")
)

// IsUnavailable reports whether err is a per-query data failure, as opposed
// to a bad request.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrNetwork) ||
		errors.Is(err, ErrMalformedResponse) ||
		errors.Is(err, ErrNoCurrentTime)
}
