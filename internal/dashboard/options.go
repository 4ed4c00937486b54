package dashboard

import "github.com/i474232898/weather-dashboard/internal/forecast"

// Choice is one selector entry.
type Choice struct {
	Value   string `json:"value"`
	Label   string `json:"label"`
	Default bool   `json:"default,omitempty"`
}

// Panel lists the four independent selectors.
type Panel struct {
	Cities  []Choice `json:"cities"`
	Metrics []Choice `json:"metrics"`
	Periods []Choice `json:"periods"`
	Units   []Choice `json:"units"`
}

// Options returns the selection panel contents with the defaults marked.
func Options() Panel {
	def := forecast.DefaultSelection()
	var p Panel
	for _, c := range forecast.Cities {
		p.Cities = append(p.Cities, Choice{Value: string(c), Label: c.DisplayName(), Default: c == def.City})
	}
	for _, m := range forecast.Metrics {
		p.Metrics = append(p.Metrics, Choice{Value: string(m), Label: m.DisplayName(), Default: m == def.Metric})
	}
	for _, per := range []forecast.Period{forecast.PeriodShort, forecast.PeriodLong} {
		p.Periods = append(p.Periods, Choice{Value: string(per), Label: per.DisplayName(), Default: per == def.Period})
	}
	for _, u := range []forecast.Unit{forecast.UnitCelsius, forecast.UnitFahrenheit} {
		p.Units = append(p.Units, Choice{Value: string(u), Label: u.Symbol(), Default: u == def.Unit})
	}
	return p
}
