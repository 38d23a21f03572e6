package cmd

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/newsdesk/newsdesk/internal/classify"
	"github.com/newsdesk/newsdesk/internal/prefs"
	"github.com/newsdesk/newsdesk/internal/remote"
	"github.com/newsdesk/newsdesk/internal/weather"
	"github.com/spf13/cobra"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change stored preferences",
}

var prefsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print stored preferences",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(func(_ context.Context, e *env) error {
			printPrefs(cmd.OutOrStdout(), e.prefs, e.cfg.Weather.DefaultCity, e.cfg.Weather.Units)
			return nil
		})
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set <location|units|category|sort> <value>",
	Short: "Change a preference",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(func(_ context.Context, e *env) error {
			if err := setPref(e.prefs, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s set to %s\n", args[0], args[1])
			return nil
		})
	},
}

var flagNoWeather bool

var prefsLocationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "List saved locations with their current weather",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(func(ctx context.Context, e *env) error {
			units := e.prefs.Units(e.cfg.Weather.Units)
			var current func(string) (weather.Current, error)
			if !flagNoWeather {
				current = func(city string) (weather.Current, error) {
					return e.weather.Current(ctx, city, units)
				}
			}
			printLocations(cmd.OutOrStdout(), e.prefs.SavedLocations(), current, units)
			return nil
		})
	},
}

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "Manage saved locations",
}

var flagLabel string

var locationsAddCmd = &cobra.Command{
	Use:   "add <city>",
	Short: "Save a location",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(func(_ context.Context, e *env) error {
			loc, err := e.prefs.AddLocation(strings.Join(args, " "), flagLabel)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", loc.Name)
			return nil
		})
	},
}

var locationsRemoveCmd = &cobra.Command{
	Use:     "remove <city>",
	Aliases: []string{"rm"},
	Short:   "Forget a saved location",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(func(_ context.Context, e *env) error {
			name := strings.Join(args, " ")
			if err := e.prefs.RemoveLocation(name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", name)
			return nil
		})
	},
}

var (
	flagEmail         string
	flagCategories    []string
	flagWeatherAlerts bool
)

var subscribeCmd = &cobra.Command{
	Use:   "subscribe",
	Short: "Sign up for the newsletter",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEnv(func(_ context.Context, e *env) error {
			sub, err := e.prefs.Subscribe(flagEmail, flagCategories, flagWeatherAlerts)
			if err != nil {
				return err
			}
			e.log.Info("newsletter subscription stored", "id", sub.ID, "categories", sub.Categories)
			fmt.Fprintf(cmd.OutOrStdout(), "Subscribed %s to %s\n", sub.Email, strings.Join(sub.Categories, ", "))
			return nil
		})
	},
}

func init() {
	prefsLocationsCmd.Flags().BoolVar(&flagNoWeather, "no-weather", false, "list the locations without fetching weather")
	prefsCmd.AddCommand(prefsGetCmd, prefsSetCmd, prefsLocationsCmd)

	locationsAddCmd.Flags().StringVar(&flagLabel, "label", "", "display label for the location")
	locationsCmd.AddCommand(locationsAddCmd, locationsRemoveCmd)

	subscribeCmd.Flags().StringVar(&flagEmail, "email", "", "address to send the newsletter to")
	subscribeCmd.Flags().StringSliceVar(&flagCategories, "categories", nil, "comma-separated news categories (default: general)")
	subscribeCmd.Flags().BoolVar(&flagWeatherAlerts, "weather-alerts", false, "include weather alerts")
	subscribeCmd.MarkFlagRequired("email")
}

func setPref(p *prefs.Prefs, key, value string) error {
	switch key {
	case "location":
		return p.SetLocation(value)
	case "units":
		return p.SetUnits(value)
	case "category":
		c, err := classify.Resolve(value)
		if err != nil {
			return err
		}
		return p.SetCategory(string(c))
	case "sort":
		return p.SetSortBy(value)
	}
	return fmt.Errorf("unknown preference %q (want location, units, category or sort)", key)
}

func printPrefs(w io.Writer, p *prefs.Prefs, defaultCity, defaultUnits string) {
	n := p.News()
	fmt.Fprintf(w, "location:  %s\n", p.Location(defaultCity))
	fmt.Fprintf(w, "units:     %s\n", p.Units(defaultUnits))
	fmt.Fprintf(w, "category:  %s\n", n.DefaultCategory)
	fmt.Fprintf(w, "sort:      %s\n", n.SortBy)
	if sub, ok := p.Newsletter(); ok {
		fmt.Fprintf(w, "newsletter: %s (%s", sub.Email, strings.Join(sub.Categories, ", "))
		if sub.WeatherAlerts {
			fmt.Fprint(w, ", weather alerts")
		}
		fmt.Fprintln(w, ")")
	}
}

// printLocations lists saved locations. When current is set each one is
// followed by its current conditions; a failed lookup only affects its own
// line.
func printLocations(w io.Writer, locs []prefs.Location, current func(string) (weather.Current, error), units string) {
	if len(locs) == 0 {
		fmt.Fprintln(w, "No saved locations.")
		return
	}
	sym := weather.UnitSymbol(units)
	for _, l := range locs {
		if l.Label != "" {
			fmt.Fprintf(w, "%s (%s)  added %s\n", l.Name, l.Label, l.AddedAt.Format("2006-01-02"))
		} else {
			fmt.Fprintf(w, "%s  added %s\n", l.Name, l.AddedAt.Format("2006-01-02"))
		}
		if current == nil {
			continue
		}
		c, err := current(l.Name)
		if err != nil {
			fmt.Fprintf(w, "    %s\n", remote.UserMessage(err, "weather data"))
			continue
		}
		fmt.Fprintf(w, "    %d%s  %s\n", int(math.Round(c.Temp)), sym, weather.CapitalizeWords(c.Description))
	}
}
