package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/newsdesk/newsdesk/internal/remote"
	"github.com/newsdesk/newsdesk/internal/weather"
	"github.com/spf13/cobra"
)

var flagUnits string

var weatherCmd = &cobra.Command{
	Use:   "weather [city]",
	Short: "Print current weather and the five-day forecast",
	Long: `Print current conditions and a five-day outlook. Without a city the
stored weather location is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(func(ctx context.Context, e *env) error {
			city := e.prefs.Location(e.cfg.Weather.DefaultCity)
			if len(args) == 1 {
				city = strings.TrimSpace(args[0])
			}
			units := e.prefs.Units(e.cfg.Weather.Units)
			if flagUnits != "" {
				if !weather.ValidUnits(flagUnits) {
					return fmt.Errorf("unknown units %q (want one of %s)", flagUnits, strings.Join(weather.Units, ", "))
				}
				units = flagUnits
			}
			e.refresh(city, units, e.prefs.News().DefaultCategory)

			cur, err := e.weather.Current(ctx, city, units)
			if err != nil {
				return errors.New(remote.UserMessage(err, "weather data"))
			}
			days, ferr := e.weather.Forecast(ctx, city, units)
			printWeather(cmd.OutOrStdout(), cur, days, ferr, units)
			return nil
		})
	},
}

func init() {
	weatherCmd.Flags().StringVarP(&flagUnits, "units", "u", "", "metric, imperial or standard (default: stored preference)")
}

func printWeather(w io.Writer, c weather.Current, days []weather.Day, forecastErr error, units string) {
	sym := weather.UnitSymbol(units)
	fmt.Fprintf(w, "%s\n", c.Location())
	fmt.Fprintf(w, "  %d%s  %s\n", int(math.Round(c.Temp)), sym, weather.CapitalizeWords(c.Description))
	fmt.Fprintf(w, "  Feels like %d%s   H %d%s  L %d%s\n",
		int(math.Round(c.FeelsLike)), sym, int(math.Round(c.TempMax)), sym, int(math.Round(c.TempMin)), sym)
	fmt.Fprintf(w, "  Humidity %d%%   Pressure %d hPa\n", c.Humidity, c.Pressure)
	fmt.Fprintf(w, "  Wind %.1f %s %s   Visibility %s\n",
		c.WindSpeed, weather.SpeedUnit(units), weather.WindDirection(c.WindDeg), weather.VisibilityText(c.Visibility, units))
	if !c.Sunrise.IsZero() {
		fmt.Fprintf(w, "  Sunrise %s   Sunset %s\n", c.Local(c.Sunrise).Format("15:04"), c.Local(c.Sunset).Format("15:04"))
	}

	fmt.Fprintln(w)
	if forecastErr != nil {
		fmt.Fprintln(w, remote.UserMessage(forecastErr, "forecast"))
		return
	}
	for _, d := range days {
		fmt.Fprintf(w, "  %-4s %4d%s / %d%s  %s\n",
			d.Date.Format("Mon"), d.Max, sym, d.Min, sym, weather.CapitalizeWords(d.Description))
	}
}
