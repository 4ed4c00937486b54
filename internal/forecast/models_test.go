package forecast

import (
	"errors"
	"testing"
)

func TestCityCoordinatesAreStable(t *testing.T) {
	want := map[City]Coordinate{
		CityTokyo:   {35.6895, 139.6917},
		CityOsaka:   {34.6937, 135.5023},
		CitySapporo: {43.0618, 141.3545},
		CityFukuoka: {33.5902, 130.4017},
		CityNagoya:  {35.1815, 136.9066},
	}
	if len(Cities) != len(want) {
		t.Fatalf("expected %d cities, got %d", len(want), len(Cities))
	}
	for _, c := range Cities {
		for i := 0; i < 3; i++ {
			got, ok := Lookup(c)
			if !ok {
				t.Fatalf("city %s missing", c)
			}
			if got != want[c] {
				t.Fatalf("city %s: expected %+v, got %+v", c, want[c], got)
			}
		}
	}
	if _, ok := Lookup("kyoto"); ok {
		t.Fatalf("unexpected coordinates for unsupported city")
	}
}

func TestParseSelection(t *testing.T) {
	sel, err := ParseSelection("大阪", "風速", "7日間", "°F")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Selection{City: CityOsaka, Metric: MetricWindSpeed, Period: PeriodLong, Unit: UnitFahrenheit}
	if sel != want {
		t.Fatalf("expected %+v, got %+v", want, sel)
	}
	if sel.Key() != "osaka-wind_speed-7d-fahrenheit" {
		t.Fatalf("unexpected key %q", sel.Key())
	}

	sel, err = ParseSelection(" Nagoya ", "relative_humidity_2m", "short", "c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel.City != CityNagoya || sel.Metric != MetricHumidity || sel.Period != PeriodShort {
		t.Fatalf("unexpected selection %+v", sel)
	}

	sel, err = ParseSelection("", "", "", "")
	if err != nil || sel != DefaultSelection() {
		t.Fatalf("expected default selection, got %+v (%v)", sel, err)
	}

	if _, err := ParseSelection("kyoto", "", "", ""); !errors.Is(err, ErrUnknownCity) {
		t.Fatalf("expected ErrUnknownCity, got %v", err)
	}
	if _, err := ParseSelection("", "pressure", "", ""); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}
	if _, err := ParseSelection("", "", "3d", ""); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}
	if _, err := ParseSelection("", "", "", "kelvin"); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}
}

func TestSelectionValidate(t *testing.T) {
	if err := DefaultSelection().Validate(); err != nil {
		t.Fatalf("default selection invalid: %v", err)
	}
	bad := DefaultSelection()
	bad.Unit = "kelvin"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("expected ErrInvalidSelection, got %v", err)
	}
}
