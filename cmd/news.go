package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/newsdesk/newsdesk/internal/classify"
	"github.com/newsdesk/newsdesk/internal/news"
	"github.com/newsdesk/newsdesk/internal/remote"
	"github.com/newsdesk/newsdesk/internal/search"
	"github.com/spf13/cobra"
)

var (
	flagCategory string
	flagBreaking bool
	flagPage     int
)

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Print top stories",
	Long: `Print top stories for a category. Categories accept short names:
biz, ent, sci, sport, tech and top.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagPage < 1 {
			return fmt.Errorf("--page must be at least 1, got %d", flagPage)
		}
		if flagBreaking && flagPage > 1 {
			return errors.New("--page does not apply to --breaking")
		}
		return withEnv(func(ctx context.Context, e *env) error {
			category := e.prefs.News().DefaultCategory
			if flagCategory != "" {
				c, err := classify.Resolve(flagCategory)
				if err != nil {
					return err
				}
				category = string(c)
			}
			e.refresh(e.prefs.Location(e.cfg.Weather.DefaultCity), e.prefs.Units(e.cfg.Weather.Units), category)

			var (
				articles []news.Article
				err      error
				what     = "top stories"
			)
			if flagBreaking {
				what = "breaking news"
				articles, err = e.feed.Breaking(ctx)
			} else {
				articles, err = e.feed.StoriesPage(ctx, category, flagPage)
			}
			if err != nil {
				return errors.New(remote.UserMessage(err, what))
			}
			printArticles(cmd.OutOrStdout(), articles, time.Now())
			return nil
		})
	},
}

var flagSearchPage int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search news articles",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagSearchPage < 1 {
			return fmt.Errorf("--page must be at least 1, got %d", flagSearchPage)
		}
		return withEnv(func(ctx context.Context, e *env) error {
			c := e.searchController(flagSearchPage)
			q := strings.Join(args, " ")
			req, ok := c.Submit(q)
			if !ok {
				return fmt.Errorf("type at least %d characters to search", c.Config().MinLength)
			}
			c.Resolve(c.Run(ctx, req))
			printRows(cmd.OutOrStdout(), c.Surface, time.Now())
			return nil
		})
	},
}

func init() {
	newsCmd.Flags().StringVarP(&flagCategory, "category", "c", "", "category to show (default: stored preference)")
	newsCmd.Flags().BoolVar(&flagBreaking, "breaking", false, "show breaking news instead of top stories")
	newsCmd.Flags().IntVarP(&flagPage, "page", "p", 1, "page of top stories to show")
	searchCmd.Flags().IntVarP(&flagSearchPage, "page", "p", 1, "page of results to show")
}

func printArticles(w io.Writer, articles []news.Article, now time.Time) {
	if len(articles) == 0 {
		fmt.Fprintln(w, "No articles available at the moment.")
		return
	}
	for i, a := range articles {
		fmt.Fprintf(w, "%2d. %s\n", i+1, a.Title)
		fmt.Fprintf(w, "    %s • %s\n", a.SourceName(), news.RelativeTime(a.PublishedAt, now))
		fmt.Fprintf(w, "    %s\n", a.URL)
	}
}

func printRows(w io.Writer, s *search.Surface, now time.Time) {
	rows := s.Rows(func(it search.Item) string { return news.RelativeTime(it.Published, now) })
	for _, r := range rows {
		if r.Placeholder {
			fmt.Fprintln(w, r.Title)
			continue
		}
		fmt.Fprintf(w, "%s\n    %s • %s\n    %s\n    %s\n", r.Title, r.Source, r.Published, r.Description, r.URL)
	}
}
