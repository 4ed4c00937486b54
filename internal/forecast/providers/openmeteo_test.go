package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/weather-dashboard/internal/forecast"
)

const hourlyBody = `{
  "latitude": 35.7,
  "longitude": 139.69,
  "timezone": "Asia/Tokyo",
  "hourly": {
    "time": ["2025-06-01T00:00", "2025-06-01T01:00", "2025-06-01T02:00"],
    "temperature_2m": [20.0, 19.5, null],
    "relative_humidity_2m": [80, 82, 85],
    "precipitation": [0, 0.2, 1.4],
    "windspeed_10m": [3.1, 2.8, 2.2]
  }
}`

func newTestProvider(baseURL string, retries int) *OpenMeteoProvider {
	return NewOpenMeteoProvider(&http.Client{Timeout: 2 * time.Second}, OpenMeteoOptions{
		BaseURL: baseURL,
		Backoff: BackoffConfig{MaxRetries: retries, InitialInterval: time.Millisecond},
	})
}

func testRequest() forecast.HourlyRequest {
	coord, _ := forecast.Lookup(forecast.CityTokyo)
	return forecast.HourlyRequest{
		Coordinate: coord,
		Fields:     forecast.HourlyFields,
		Timezone:   "Asia/Tokyo",
	}
}

func TestOpenMeteoFetchHourly(t *testing.T) {
	var query atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query.Store(r.URL.Query())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(hourlyBody))
	}))
	defer ts.Close()

	p := newTestProvider(ts.URL, 0)
	h, err := p.FetchHourly(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	q := query.Load().(url.Values)
	if got := q["hourly"][0]; got != "temperature_2m,relative_humidity_2m,precipitation,windspeed_10m" {
		t.Fatalf("unexpected hourly param %q", got)
	}
	if got := q["timezone"][0]; got != "Asia/Tokyo" {
		t.Fatalf("unexpected timezone param %q", got)
	}
	if got := q["latitude"][0]; got != "35.6895" {
		t.Fatalf("unexpected latitude param %q", got)
	}

	if len(h.Time) != 3 {
		t.Fatalf("expected 3 timestamps, got %d", len(h.Time))
	}
	temps := h.Values["temperature_2m"]
	if len(temps) != 3 || *temps[0] != 20.0 || temps[2] != nil {
		t.Fatalf("unexpected temperatures %v", temps)
	}
}

func TestOpenMeteoNonSuccessStatus(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":true,"reason":"Latitude must be in range"}`))
	}))
	defer ts.Close()

	p := newTestProvider(ts.URL, 0)
	_, err := p.FetchHourly(context.Background(), testRequest())
	if !errors.Is(err, forecast.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("expected a single attempt without retries, got %d", n)
	}
}

func TestOpenMeteoRetriesWhenConfigured(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(hourlyBody))
	}))
	defer ts.Close()

	p := newTestProvider(ts.URL, 2)
	if _, err := p.FetchHourly(context.Background(), testRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := hits.Load(); n != 2 {
		t.Fatalf("expected 2 attempts, got %d", n)
	}
}

func TestOpenMeteoUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := ts.URL
	ts.Close()

	p := newTestProvider(addr, 0)
	if _, err := p.FetchHourly(context.Background(), testRequest()); !errors.Is(err, forecast.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestOpenMeteoMalformed(t *testing.T) {
	bodies := map[string]string{
		"no hourly":  `{"latitude": 35.7}`,
		"bad json":   `{"hourly": [`,
		"bad values": `{"hourly": {"time": ["2025-06-01T00:00"], "temperature_2m": ["warm"]}}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer ts.Close()

			p := newTestProvider(ts.URL, 0)
			if _, err := p.FetchHourly(context.Background(), testRequest()); !errors.Is(err, forecast.ErrMalformedResponse) {
				t.Fatalf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}

func TestOpenMeteoMissingFieldIsAbsent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hourly": {"time": ["2025-06-01T00:00"], "precipitation": [0.1]}}`))
	}))
	defer ts.Close()

	p := newTestProvider(ts.URL, 0)
	h, err := p.FetchHourly(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := h.Values["temperature_2m"]; ok {
		t.Fatalf("expected temperature_2m to be absent")
	}
	if _, ok := h.Values["precipitation"]; !ok {
		t.Fatalf("expected precipitation to be present")
	}
}
