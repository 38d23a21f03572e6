package cmd

import (
	"github.com/newsdesk/newsdesk/internal/browser"
	"github.com/newsdesk/newsdesk/internal/tui"
	"github.com/spf13/cobra"
)

func runTUI(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	greeting, err := e.prefs.Visit()
	if err != nil {
		e.log.Warn("recording visit", "err", err)
	}
	e.log.Info("starting dashboard", "version", version, "store", e.cfg.Store.Driver, "ephemeral", flagEphemeral)

	return tui.Run(tui.RunOpts{
		Feed:         e.feed,
		Weather:      e.weather,
		Prefs:        e.prefs,
		Search:       e.searchController(1),
		Open:         browser.NewOpener().Open,
		Log:          e.log,
		Greeting:     greeting,
		DefaultCity:  e.cfg.Weather.DefaultCity,
		DefaultUnits: e.cfg.Weather.Units,
		Refresh:      flagRefresh,
	})
}
