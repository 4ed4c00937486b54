package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-dashboard/internal/forecast"
	"github.com/i474232898/weather-dashboard/internal/metrics"
)

// DefaultOpenMeteoURL is the public forecast endpoint.
const DefaultOpenMeteoURL = "https://api.open-meteo.com/v1/forecast"

// OpenMeteoOptions configures the Open-Meteo provider.
type OpenMeteoOptions struct {
	BaseURL string
	Backoff BackoffConfig
	// RPS and Burst bound outbound calls; RPS <= 0 disables limiting.
	RPS   float64
	Burst int
}

// OpenMeteoProvider implements forecast.HourlySource for Open-Meteo.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	limiter *rate.Limiter
}

func NewOpenMeteoProvider(client *http.Client, opts OpenMeteoOptions) *OpenMeteoProvider {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultOpenMeteoURL
	}
	if opts.Backoff.InitialInterval <= 0 {
		opts.Backoff.InitialInterval = 500 * time.Millisecond
	}
	if opts.Backoff.MaxInterval <= 0 {
		opts.Backoff.MaxInterval = 5 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RPS > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RPS), burst)
	}

	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: opts.BaseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: opts.Backoff,
		},
		circuit: newCircuitBreaker("openmeteo"),
		limiter: limiter,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// FetchHourly requests the hourly block for req. Transport failures, non-2xx
// statuses and an open circuit are reported as forecast.ErrNetwork; a body
// without the hourly block as forecast.ErrMalformedResponse.
func (p *OpenMeteoProvider) FetchHourly(ctx context.Context, req forecast.HourlyRequest) (forecast.Hourly, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return forecast.Hourly{}, fmt.Errorf("%w: rate limit wait: %v", forecast.ErrNetwork, err)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(req.Coordinate.Latitude, 'f', -1, 64))
		values.Set("longitude", strconv.FormatFloat(req.Coordinate.Longitude, 'f', -1, 64))
		values.Set("hourly", strings.Join(req.Fields, ","))
		if req.Timezone != "" {
			values.Set("timezone", req.Timezone)
		}

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	started := time.Now()
	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	metrics.UpstreamLatency.WithLabelValues(p.name).Observe(time.Since(started).Seconds())
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(p.name, "network_error").Inc()
		return forecast.Hourly{}, fmt.Errorf("%w: %s: %v", forecast.ErrNetwork, p.name, err)
	}
	defer resp.Body.Close()

	var payload struct {
		Hourly map[string]json.RawMessage `json:"hourly"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		metrics.UpstreamRequests.WithLabelValues(p.name, "malformed").Inc()
		return forecast.Hourly{}, fmt.Errorf("%w: decode: %v", forecast.ErrMalformedResponse, err)
	}

	hourly, err := decodeHourly(payload.Hourly, req.Fields)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(p.name, "malformed").Inc()
		return forecast.Hourly{}, err
	}

	metrics.UpstreamRequests.WithLabelValues(p.name, "ok").Inc()
	return hourly, nil
}

// decodeHourly keeps the absent/null distinction: a missing field stays out of
// Values, a null sample becomes a nil pointer.
func decodeHourly(raw map[string]json.RawMessage, fields []string) (forecast.Hourly, error) {
	if raw == nil {
		return forecast.Hourly{}, fmt.Errorf("%w: hourly block missing", forecast.ErrMalformedResponse)
	}

	var h forecast.Hourly
	if t, ok := raw["time"]; ok {
		if err := json.Unmarshal(t, &h.Time); err != nil {
			return forecast.Hourly{}, fmt.Errorf("%w: hourly.time: %v", forecast.ErrMalformedResponse, err)
		}
	}

	h.Values = make(map[string][]*float64, len(fields))
	for _, f := range fields {
		data, ok := raw[f]
		if !ok || string(data) == "null" {
			continue
		}
		var vals []*float64
		if err := json.Unmarshal(data, &vals); err != nil {
			return forecast.Hourly{}, fmt.Errorf("%w: hourly.%s: %v", forecast.ErrMalformedResponse, f, err)
		}
		h.Values[f] = vals
	}
	return h, nil
}
