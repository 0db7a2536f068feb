package assistant

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/secondbrain/secondbrain/internal/weather"
)

// Matching on word boundaries keeps "brain" and "train" from reading as
// rain questions.
var weatherTriggers = regexp.MustCompile(
	`\b(weather|rain|raining|temperature|forecast|humidity|sunny|cloudy|windy|storm|climate)\b`)

var (
	forecastWords = regexp.MustCompile(`\b(forecast|later|upcoming|future|next)\b`)
	hoursAheadRe  = regexp.MustCompile(`\bin (\d{1,2})(?: ?- ?(\d{1,2}))? ?hours?\b`)
)

func (a *Assistant) handleWeather(ctx context.Context, message string) string {
	if a.weather == nil {
		return "Weather lookups aren't set up. Set OPENWEATHER_API_KEY and WEATHER_CITY to enable them."
	}

	lower := strings.ToLower(strings.TrimSpace(message))
	if m := hoursAheadRe.FindStringSubmatch(lower); m != nil {
		return a.weatherForecast(ctx, parseHoursAhead(m))
	}
	if forecastWords.MatchString(lower) {
		return a.weatherForecast(ctx, 3)
	}

	report, err := a.weather.Current(ctx)
	if err != nil {
		slog.Warn("weather lookup failed", "error", err)
		return "I couldn't fetch the weather right now."
	}
	return weather.FormatCurrent(report)
}

func (a *Assistant) weatherForecast(ctx context.Context, hoursAhead int) string {
	report, err := a.weather.Forecast(ctx, hoursAhead)
	if err != nil {
		slog.Warn("weather forecast failed", "hours_ahead", hoursAhead, "error", err)
		return "I couldn't fetch the weather forecast right now."
	}
	return weather.FormatForecast(report)
}

// parseHoursAhead maps "in N hours" to N and "in N-M hours" to the midpoint.
func parseHoursAhead(m []string) int {
	h1, _ := strconv.Atoi(m[1])
	if m[2] != "" {
		h2, _ := strconv.Atoi(m[2])
		return (h1 + h2) / 2
	}
	return h1
}
