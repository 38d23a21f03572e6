package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig      string
	flagRefresh     bool
	flagMetricsAddr string
	flagEphemeral   bool
)

var rootCmd = &cobra.Command{
	Use:   "newsdesk",
	Short: "Terminal news and weather portal",
	Long: `newsdesk shows current weather, a five-day forecast, breaking news and top
stories in one terminal dashboard, with search-as-you-type over the news.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "path to config file")
	pf.BoolVar(&flagRefresh, "refresh", false, "ignore cached responses and fetch again")
	pf.StringVar(&flagMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	pf.BoolVar(&flagEphemeral, "ephemeral", false, "keep the cache and preferences in memory only")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(weatherCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(prefsCmd)
	rootCmd.AddCommand(locationsCmd)
	rootCmd.AddCommand(subscribeCmd)
	rootCmd.AddCommand(cacheCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "newsdesk %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
