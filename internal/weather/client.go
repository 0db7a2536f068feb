// Package weather wraps the OpenWeather REST API for current conditions
// and short-range forecasts at a single configured location.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultCurrentEndpoint  = "https://api.openweathermap.org/data/2.5/weather"
	defaultForecastEndpoint = "https://api.openweathermap.org/data/2.5/forecast"
)

// Report is one observed or forecast weather data point.
type Report struct {
	Location    string
	Description string
	TempC       float64
	Humidity    int
	RainMM      float64
	At          time.Time
}

// Provider answers weather questions for the configured location.
type Provider interface {
	Current(ctx context.Context) (Report, error)
	// Forecast returns the data point closest to hoursAhead from now.
	Forecast(ctx context.Context, hoursAhead int) (Report, error)
}

// Client queries the OpenWeather API. Temperatures are metric.
type Client struct {
	apiKey           string
	location         string
	currentEndpoint  string
	forecastEndpoint string
	client           *http.Client
	now              func() time.Time
}

type ClientOption func(*Client)

// WithEndpoints overrides both API endpoints, mainly for tests.
func WithEndpoints(current, forecast string) ClientOption {
	return func(c *Client) {
		c.currentEndpoint = current
		c.forecastEndpoint = forecast
	}
}

func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.client.Timeout = d }
}

func withClock(now func() time.Time) ClientOption {
	return func(c *Client) { c.now = now }
}

// NewClient builds a client for one location, given as "place, city".
func NewClient(apiKey, city, place string, opts ...ClientOption) *Client {
	location := city
	if place != "" {
		location = place + ", " + city
	}
	c := &Client{
		apiKey:           apiKey,
		location:         location,
		currentEndpoint:  defaultCurrentEndpoint,
		forecastEndpoint: defaultForecastEndpoint,
		client:           &http.Client{Timeout: 5 * time.Second},
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Location returns the configured "place, city" string.
func (c *Client) Location() string { return c.location }

type conditions struct {
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Rain map[string]float64 `json:"rain"`
	Dt   int64              `json:"dt"`
}

func (c *Client) Current(ctx context.Context) (Report, error) {
	body, err := c.get(ctx, c.currentEndpoint)
	if err != nil {
		return Report{}, err
	}

	var payload conditions
	if err := json.Unmarshal(body, &payload); err != nil {
		return Report{}, fmt.Errorf("decode weather response: %w", err)
	}
	return c.report(payload, "1h"), nil
}

func (c *Client) Forecast(ctx context.Context, hoursAhead int) (Report, error) {
	if hoursAhead <= 0 {
		hoursAhead = 3
	}
	body, err := c.get(ctx, c.forecastEndpoint)
	if err != nil {
		return Report{}, err
	}

	var payload struct {
		List []conditions `json:"list"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Report{}, fmt.Errorf("decode forecast response: %w", err)
	}
	if len(payload.List) == 0 {
		return Report{}, fmt.Errorf("no forecast data for %s", c.location)
	}

	// Pick the data point closest to the requested horizon.
	target := c.now().UTC().Add(time.Duration(hoursAhead) * time.Hour)
	closest := payload.List[0]
	minDiff := time.Duration(1<<63 - 1)
	for _, entry := range payload.List {
		diff := time.Unix(entry.Dt, 0).UTC().Sub(target)
		if diff < 0 {
			diff = -diff
		}
		if diff < minDiff {
			minDiff = diff
			closest = entry
		}
	}
	return c.report(closest, "3h"), nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	params := url.Values{}
	params.Set("q", c.location)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create weather request: %w", err)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send weather request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather status %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read weather response: %w", err)
	}
	return body, nil
}

func (c *Client) report(p conditions, rainKey string) Report {
	r := Report{
		Location: c.location,
		TempC:    p.Main.Temp,
		Humidity: p.Main.Humidity,
		RainMM:   p.Rain[rainKey],
		At:       time.Unix(p.Dt, 0).UTC(),
	}
	if len(p.Weather) > 0 {
		r.Description = capitalize(p.Weather[0].Description)
	}
	return r
}

// FormatCurrent renders a current-conditions report as a reply line.
func FormatCurrent(r Report) string {
	s := fmt.Sprintf("Weather in %s: %s, %.1f°C, Humidity: %d%%. ", r.Location, r.Description, r.TempC, r.Humidity)
	if r.RainMM > 0 {
		return s + fmt.Sprintf("Rain in the last hour: %.1fmm.", r.RainMM)
	}
	return s + "No rain in the last hour."
}

// FormatForecast renders a forecast report as a reply line.
func FormatForecast(r Report) string {
	s := fmt.Sprintf("Forecast for %s at %s: %s, %.1f°C, Humidity: %d%%. ",
		r.Location, r.At.Format("2006-01-02 15:04 UTC"), r.Description, r.TempC, r.Humidity)
	if r.RainMM > 0 {
		return s + fmt.Sprintf("Rain: %.1fmm.", r.RainMM)
	}
	return s + "No rain expected."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
