package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/newsdesk/newsdesk/internal/weather"
)

// weatherGlyph maps an OpenWeatherMap icon code to a terminal-friendly glyph.
func weatherGlyph(icon string) string {
	if len(icon) < 2 {
		return "·"
	}
	switch icon[:2] {
	case "01":
		if strings.HasSuffix(icon, "n") {
			return "☾"
		}
		return "☀"
	case "02", "03", "04":
		return "☁"
	case "09", "10":
		return "☂"
	case "11":
		return "⚡"
	case "13":
		return "❄"
	case "50":
		return "≋"
	default:
		return "·"
	}
}

func renderCurrent(c weather.Current, units string) string {
	sym := weather.UnitSymbol(units)

	lines := []string{
		paneTitleStyle.Render(c.Location()),
		tempLargeStyle.Render(fmt.Sprintf("%s %d%s", weatherGlyph(c.Icon), int(math.Round(c.Temp)), sym)) +
			"  " + itemDescStyle.Render(weather.CapitalizeWords(c.Description)),
		itemTimeStyle.Render(fmt.Sprintf("Feels like %d%s · H %d%s L %d%s",
			int(math.Round(c.FeelsLike)), sym, int(math.Round(c.TempMax)), sym, int(math.Round(c.TempMin)), sym)),
		"",
		fmt.Sprintf("Humidity   %d%%", c.Humidity),
		fmt.Sprintf("Wind       %.1f %s %s", c.WindSpeed, weather.SpeedUnit(units), weather.WindDirection(c.WindDeg)),
		fmt.Sprintf("Pressure   %d hPa", c.Pressure),
		"Visibility " + weather.VisibilityText(c.Visibility, units),
	}
	if !c.Sunrise.IsZero() && !c.Sunset.IsZero() {
		lines = append(lines, fmt.Sprintf("Sun        %s ↑ %s ↓",
			c.Local(c.Sunrise).Format("15:04"), c.Local(c.Sunset).Format("15:04")))
	}
	return strings.Join(lines, "\n")
}

func renderForecast(days []weather.Day, units string, width int) string {
	if len(days) == 0 {
		return itemTimeStyle.Render("No forecast available")
	}
	sym := weather.UnitSymbol(units)
	var rows []string
	for _, d := range days {
		row := forecastDayStyle.Render(d.Date.Format("Mon Jan 2")) + "  " +
			weatherGlyph(d.Icon) + " " +
			fmt.Sprintf("%d%s/%d%s", d.Max, sym, d.Min, sym) + "  " +
			itemDescStyle.Render(truncateStr(weather.CapitalizeWords(d.Description), max(width-26, 0)))
		rows = append(rows, row)
	}
	return strings.Join(rows, "\n")
}

func (a *App) renderWeatherPane(width, height int) string {
	inner := width - 4
	var content string
	switch {
	case a.weatherPane.err != nil:
		content = paneTitleStyle.Render(a.city) + "\n\n" + renderError(a.weatherPane.err, "weather data", inner)
	case a.weatherPane.loading && !a.weatherPane.loaded:
		content = a.spinner.View() + " Loading weather for " + a.city + "..."
	case a.weatherPane.loaded:
		content = renderCurrent(a.current, a.weatherUnits)
		content += "\n\n" + paneTitleStyle.Render("5-Day Forecast") + "\n"
		if a.forecastErr != nil {
			content += renderError(a.forecastErr, "forecast", inner)
		} else {
			content += renderForecast(a.days, a.weatherUnits, inner)
		}
		if a.weatherPane.loading {
			content += "\n" + a.spinner.View()
		}
	}
	return paneStyle.Width(width - 2).Height(height).Render(lipgloss.NewStyle().MaxWidth(inner).Render(content))
}
