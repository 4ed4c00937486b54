package forecast

// Coordinate is a WGS84 position.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type cityInfo struct {
	name  string
	coord Coordinate
}

// Read-only lookup tables. Nothing in this package writes to them after init.
var (
	cityTable = map[City]cityInfo{
		CityTokyo:   {name: "東京", coord: Coordinate{Latitude: 35.6895, Longitude: 139.6917}},
		CityOsaka:   {name: "大阪", coord: Coordinate{Latitude: 34.6937, Longitude: 135.5023}},
		CitySapporo: {name: "札幌", coord: Coordinate{Latitude: 43.0618, Longitude: 141.3545}},
		CityFukuoka: {name: "福岡", coord: Coordinate{Latitude: 33.5902, Longitude: 130.4017}},
		CityNagoya:  {name: "名古屋", coord: Coordinate{Latitude: 35.1815, Longitude: 136.9066}},
	}

	metricKeys = map[Metric]string{
		MetricTemperature:   "temperature_2m",
		MetricHumidity:      "relative_humidity_2m",
		MetricWindSpeed:     "windspeed_10m",
		MetricPrecipitation: "precipitation",
	}

	metricNames = map[Metric]string{
		MetricTemperature:   "気温",
		MetricHumidity:      "湿度",
		MetricWindSpeed:     "風速",
		MetricPrecipitation: "降水量",
	}
)

// Cities lists the supported cities in display order.
var Cities = []City{CityTokyo, CityOsaka, CitySapporo, CityFukuoka, CityNagoya}

// Metrics lists the supported metrics in display order.
var Metrics = []Metric{MetricTemperature, MetricHumidity, MetricWindSpeed, MetricPrecipitation}

// HourlyFields is the superset of hourly variables requested upstream,
// regardless of which metric is being displayed.
var HourlyFields = []string{"temperature_2m", "relative_humidity_2m", "precipitation", "windspeed_10m"}

// Lookup returns the coordinates of a supported city.
func Lookup(c City) (Coordinate, bool) {
	info, ok := cityTable[c]
	return info.coord, ok
}

// DisplayName returns the Japanese city name, or the identifier if unknown.
func (c City) DisplayName() string {
	if info, ok := cityTable[c]; ok {
		return info.name
	}
	return string(c)
}

// UpstreamKey returns the Open-Meteo hourly field for the metric.
func (m Metric) UpstreamKey() (string, bool) {
	k, ok := metricKeys[m]
	return k, ok
}

// DisplayName returns the Japanese metric name.
func (m Metric) DisplayName() string {
	if n, ok := metricNames[m]; ok {
		return n
	}
	return string(m)
}

// DisplayName returns the selector label for the period.
func (p Period) DisplayName() string {
	switch p {
	case PeriodShort:
		return "48時間"
	case PeriodLong:
		return "7日間"
	}
	return string(p)
}

// Symbol returns °C or °F.
func (u Unit) Symbol() string {
	if u == UnitFahrenheit {
		return "°F"
	}
	return "°C"
}
