// Package weather fetches current conditions and a five-day outlook from
// OpenWeatherMap and shapes them for display.
package weather

import (
	"context"
	"math"
	"strconv"
	"time"
	"unicode"
)

const (
	Metric   = "metric"
	Imperial = "imperial"
	Standard = "standard"
)

// Units lists the supported unit systems in cycling order.
var Units = []string{Metric, Imperial, Standard}

func ValidUnits(u string) bool {
	for _, k := range Units {
		if k == u {
			return true
		}
	}
	return false
}

// NextUnits cycles through Units.
func NextUnits(u string) string {
	for i, k := range Units {
		if k == u {
			return Units[(i+1)%len(Units)]
		}
	}
	return Metric
}

// Current is a snapshot of conditions for one city.
type Current struct {
	City        string    `json:"city"`
	Country     string    `json:"country"`
	Temp        float64   `json:"temp"`
	FeelsLike   float64   `json:"feels_like"`
	TempMin     float64   `json:"temp_min"`
	TempMax     float64   `json:"temp_max"`
	Humidity    int       `json:"humidity"`
	Pressure    int       `json:"pressure"`
	WindSpeed   float64   `json:"wind_speed"`
	WindDeg     float64   `json:"wind_deg"`
	Visibility  int       `json:"visibility"` // meters
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Sunrise     time.Time `json:"sunrise"`
	Sunset      time.Time `json:"sunset"`
	TZOffset    int       `json:"tz_offset"` // seconds east of UTC
}

// Location returns "City, CC", or just the city when the country is unknown.
func (c Current) Location() string {
	if c.Country == "" {
		return c.City
	}
	return c.City + ", " + c.Country
}

// Local converts t to the city's wall clock.
func (c Current) Local(t time.Time) time.Time {
	return t.In(time.FixedZone("", c.TZOffset))
}

// Day is one aggregated forecast day.
type Day struct {
	Date        time.Time `json:"date"` // local midnight
	Avg         int       `json:"avg"`
	Max         int       `json:"max"`
	Min         int       `json:"min"`
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
}

// Service is what the dashboard and CLI need from a weather backend.
type Service interface {
	Current(ctx context.Context, city, units string) (Current, error)
	Forecast(ctx context.Context, city, units string) ([]Day, error)
}

var compass = [8]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// WindDirection maps degrees to an 8-point compass heading.
func WindDirection(deg float64) string {
	i := int(math.Round(deg/45)) % 8
	if i < 0 {
		i += 8
	}
	return compass[i]
}

// CapitalizeWords upper-cases the first letter of every word.
func CapitalizeWords(s string) string {
	out := []rune(s)
	start := true
	for i, r := range out {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			if start {
				out[i] = unicode.ToUpper(r)
			}
			start = false
			continue
		}
		start = true
	}
	return string(out)
}

func UnitSymbol(units string) string {
	switch units {
	case Imperial:
		return "°F"
	case Standard:
		return "K"
	default:
		return "°C"
	}
}

func SpeedUnit(units string) string {
	if units == Imperial {
		return "mph"
	}
	return "m/s"
}

// VisibilityText renders meters as km or miles with one decimal.
func VisibilityText(meters int, units string) string {
	if units == Imperial {
		return strconv.FormatFloat(float64(meters)/1609, 'f', 1, 64) + " miles"
	}
	return strconv.FormatFloat(float64(meters)/1000, 'f', 1, 64) + " km"
}
