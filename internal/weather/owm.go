package weather

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/newsdesk/newsdesk/internal/remote"
)

// code is OpenWeatherMap's "cod" field, which arrives as 200 on one endpoint
// and "200" on another.
type code string

func (c *code) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*c = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = code(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*c = code(n.String())
	return nil
}

func (c code) ok() bool { return c == "200" }

type owmCondition struct {
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
}

type owmMain struct {
	Temp      *float64 `json:"temp"`
	FeelsLike *float64 `json:"feels_like"`
	TempMin   *float64 `json:"temp_min"`
	TempMax   *float64 `json:"temp_max"`
	Humidity  *int     `json:"humidity"`
	Pressure  *int     `json:"pressure"`
}

type owmCurrent struct {
	Cod     code           `json:"cod"`
	Message string         `json:"message"`
	Name    *string        `json:"name"`
	Main    *owmMain       `json:"main"`
	Weather []owmCondition `json:"weather"`
	Wind    *struct {
		Speed *float64 `json:"speed"`
		Deg   *float64 `json:"deg"`
	} `json:"wind"`
	Visibility *int `json:"visibility"`
	Sys        *struct {
		Country *string `json:"country"`
		Sunrise *int64  `json:"sunrise"`
		Sunset  *int64  `json:"sunset"`
	} `json:"sys"`
	Timezone *int `json:"timezone"`
}

type owmForecast struct {
	Cod     code   `json:"cod"`
	Message any    `json:"message"`
	List    []struct {
		Dt      *int64         `json:"dt"`
		Main    *owmMain       `json:"main"`
		Weather []owmCondition `json:"weather"`
	} `json:"list"`
	City *struct {
		Timezone *int `json:"timezone"`
	} `json:"city"`
}

type owmError struct {
	Cod     code   `json:"cod"`
	Message string `json:"message"`
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func num[T int | int64 | float64](p *T) T {
	if p == nil {
		return 0
	}
	return *p
}

func unix(p *int64) time.Time {
	if p == nil || *p == 0 {
		return time.Time{}
	}
	return time.Unix(*p, 0).UTC()
}

func (w owmCurrent) normalize(op string) (Current, error) {
	if w.Name == nil || w.Main == nil || w.Main.Temp == nil || len(w.Weather) == 0 {
		return Current{}, remote.Malformed(op, "missing name, main or weather")
	}
	c := Current{
		City:        *w.Name,
		Temp:        *w.Main.Temp,
		FeelsLike:   num(w.Main.FeelsLike),
		TempMin:     num(w.Main.TempMin),
		TempMax:     num(w.Main.TempMax),
		Humidity:    num(w.Main.Humidity),
		Pressure:    num(w.Main.Pressure),
		Visibility:  num(w.Visibility),
		Description: str(w.Weather[0].Description),
		Icon:        str(w.Weather[0].Icon),
		TZOffset:    num(w.Timezone),
	}
	if w.Wind != nil {
		c.WindSpeed = num(w.Wind.Speed)
		c.WindDeg = num(w.Wind.Deg)
	}
	if w.Sys != nil {
		c.Country = str(w.Sys.Country)
		c.Sunrise = unix(w.Sys.Sunrise)
		c.Sunset = unix(w.Sys.Sunset)
	}
	return c, nil
}

// Slot is one 3-hour forecast reading.
type Slot struct {
	At          time.Time
	Temp        float64
	Icon        string
	Description string
}

func (f owmForecast) slots(op string) ([]Slot, *time.Location, error) {
	if f.List == nil {
		return nil, nil, remote.Malformed(op, "missing list")
	}
	offset := 0
	if f.City != nil {
		offset = num(f.City.Timezone)
	}
	out := make([]Slot, 0, len(f.List))
	for _, it := range f.List {
		if it.Dt == nil || it.Main == nil || it.Main.Temp == nil {
			continue
		}
		s := Slot{At: time.Unix(*it.Dt, 0).UTC(), Temp: *it.Main.Temp}
		if len(it.Weather) > 0 {
			s.Icon = str(it.Weather[0].Icon)
			s.Description = str(it.Weather[0].Description)
		}
		out = append(out, s)
	}
	return out, time.FixedZone("", offset), nil
}

// OpenWeatherMap is the production Service.
type OpenWeatherMap struct {
	client  *remote.Client
	baseURL string
	apiKey  string
}

func NewOpenWeatherMap(client *remote.Client, baseURL, apiKey string) *OpenWeatherMap {
	return &OpenWeatherMap{client: client, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

func (o *OpenWeatherMap) endpoint(path, city, units string) string {
	params := url.Values{}
	params.Set("q", city)
	params.Set("units", units)
	params.Set("appid", o.apiKey)
	return o.baseURL + path + "?" + params.Encode()
}

func (o *OpenWeatherMap) get(ctx context.Context, op, path, city, units string, out any) error {
	var errBody owmError
	err := o.client.GetJSON(ctx, op, o.endpoint(path, city, units), out, &errBody)
	var re *remote.Error
	if errors.As(err, &re) && errBody.Message != "" {
		re.Message = errBody.Message
	}
	return err
}

func (o *OpenWeatherMap) Current(ctx context.Context, city, units string) (Current, error) {
	const op = "current weather"
	var w owmCurrent
	if err := o.get(ctx, op, "/data/2.5/weather", city, units, &w); err != nil {
		return Current{}, err
	}
	if !w.Cod.ok() {
		return Current{}, remote.APIError(op, apiMessage(w.Cod, w.Message))
	}
	return w.normalize(op)
}

func (o *OpenWeatherMap) Forecast(ctx context.Context, city, units string) ([]Day, error) {
	const op = "forecast"
	var f owmForecast
	if err := o.get(ctx, op, "/data/2.5/forecast", city, units, &f); err != nil {
		return nil, err
	}
	if !f.Cod.ok() {
		msg, _ := f.Message.(string)
		return nil, remote.APIError(op, apiMessage(f.Cod, msg))
	}
	slots, loc, err := f.slots(op)
	if err != nil {
		return nil, err
	}
	return Aggregate(slots, loc, ForecastDays), nil
}

func apiMessage(c code, msg string) string {
	if msg != "" {
		return msg
	}
	return "cod " + strconv.Quote(string(c))
}
