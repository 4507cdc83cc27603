package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/zhadevv/anichin/internal/scraper/anichin"
	"github.com/zhadevv/anichin/internal/scraper/envelope"
	"github.com/zhadevv/anichin/internal/scraper/extract"
)

type scrapeFunc func(ctx context.Context, c *anichin.Client, cmd *cobra.Command, args []string) (envelope.Envelope, error)

// runScrape wraps an operation into a cobra RunE: it builds a client, runs the
// operation and renders the envelope in the selected format.
func (o *rootOptions) runScrape(fn scrapeFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		client, log, err := o.newClient()
		if err != nil {
			return err
		}
		defer log.Close()

		env, err := fn(cmd.Context(), client, cmd, args)
		if err != nil {
			return err
		}

		if o.format == formatJSON {
			if err := render(cmd.OutOrStdout(), o.format, env); err != nil {
				return err
			}
			if !env.Succeeded() {
				return errReported
			}
			return nil
		}

		if !env.Succeeded() {
			return fmt.Errorf("%s", env.MessageText())
		}
		return render(cmd.OutOrStdout(), o.format, env)
	}
}

func addPageFlag(cmd *cobra.Command) *cobra.Command {
	cmd.Flags().IntP("page", "p", 1, "Page number")
	return cmd
}

func pageFlag(cmd *cobra.Command) int {
	return lo.Must(cmd.Flags().GetInt("page"))
}

func newScrapeCmds(o *rootOptions) []*cobra.Command {
	cmds := []*cobra.Command{
		{
			Use:   "sidebar",
			Short: "Sitewide sidebar: quick filter, ongoing, popular, new movies and taxonomies",
			Args:  cobra.NoArgs,
			RunE: o.runScrape(func(ctx context.Context, c *anichin.Client, _ *cobra.Command, _ []string) (envelope.Envelope, error) {
				return c.Sidebar(ctx), nil
			}),
		},
		addPageFlag(&cobra.Command{
			Use:   "home",
			Short: "Home page: slider, popular today, latest release and recommendations",
			Args:  cobra.NoArgs,
			RunE: o.runScrape(func(ctx context.Context, c *anichin.Client, cmd *cobra.Command, _ []string) (envelope.Envelope, error) {
				return c.Home(ctx, pageFlag(cmd)), nil
			}),
		}),
		addPageFlag(&cobra.Command{
			Use:   "search <query>",
			Short: "Search series by title",
			Args:  cobra.MinimumNArgs(1),
			RunE: o.runScrape(func(ctx context.Context, c *anichin.Client, cmd *cobra.Command, args []string) (envelope.Envelope, error) {
				return c.Search(ctx, strings.Join(args, " "), pageFlag(cmd)), nil
			}),
		}),
		{
			Use:       "schedule [day]",
			Short:     "Weekly release schedule, or one day of it",
			Args:      cobra.MaximumNArgs(1),
			ValidArgs: extract.Weekdays,
			RunE: o.runScrape(func(ctx context.Context, c *anichin.Client, _ *cobra.Command, args []string) (envelope.Envelope, error) {
				day := ""
				if len(args) == 1 {
					day = args[0]
				}
				return c.Schedule(ctx, day), nil
			}),
		},
		addPageFlag(&cobra.Command{
			Use:   "ongoing",
			Short: "Ongoing series",
			Args:  cobra.NoArgs,
			RunE: o.runScrape(func(ctx context.Context, c *anichin.Client, cmd *cobra.Command, _ []string) (envelope.Envelope, error) {
				return c.Ongoing(ctx, pageFlag(cmd)), nil
			}),
		}),
		addPageFlag(&cobra.Command{
			Use:   "completed",
			Short: "Completed series",
			Args:  cobra.NoArgs,
			RunE: o.runScrape(func(ctx context.Context, c *anichin.Client, cmd *cobra.Command, _ []string) (envelope.Envelope, error) {
				return c.Completed(ctx, pageFlag(cmd)), nil
			}),
		}),
		addPageFlag(&cobra.Command{
			Use:   "azlist [letter]",
			Short: "Alphabetical series index",
			Args:  cobra.MaximumNArgs(1),
			RunE: o.runScrape(func(ctx context.Context, c *anichin.Client, cmd *cobra.Command, args []string) (envelope.Envelope, error) {
				letter := ""
				if len(args) == 1 {
					letter = args[0]
				}
				return c.AZList(ctx, pageFlag(cmd), letter), nil
			}),
		}),
		{
			Use:   "season <slug>",
			Short: "Series airing in one season, e.g. fall-2023",
			Args:  cobra.ExactArgs(1),
			RunE: o.runScrape(func(ctx context.Context, c *anichin.Client, _ *cobra.Command, args []string) (envelope.Envelope, error) {
				return c.Season(ctx, args[0]), nil
			}),
		},
		{
			Use:   "series <slug|url>",
			Short: "Series detail with its episode list",
			Args:  cobra.ExactArgs(1),
			RunE: o.runScrape(func(ctx context.Context, c *anichin.Client, _ *cobra.Command, args []string) (envelope.Envelope, error) {
				return c.Series(ctx, args[0]), nil
			}),
		},
		{
			Use:   "watch <slug> <episode>",
			Short: "Episode page with its mirrors and downloads",
			Args:  cobra.ExactArgs(2),
			RunE: o.runScrape(func(ctx context.Context, c *anichin.Client, _ *cobra.Command, args []string) (envelope.Envelope, error) {
				episode, err := strconv.Atoi(args[1])
				if err != nil {
					return nil, fmt.Errorf("invalid episode %q: %w", args[1], err)
				}
				return c.Watch(ctx, args[0], episode), nil
			}),
		},
		newAdvancedSearchCmd(o),
		{
			Use:   "quickfilter",
			Short: "Filter options of the advanced search form",
			Args:  cobra.NoArgs,
			RunE: o.runScrape(func(ctx context.Context, c *anichin.Client, _ *cobra.Command, _ []string) (envelope.Envelope, error) {
				return c.QuickFilter(ctx), nil
			}),
		},
	}

	taxonomies := []struct {
		use   string
		short string
		fn    func(*anichin.Client, context.Context, string, int) *envelope.Response[extract.Taxonomy]
	}{
		{"genres <slug>", "Series tagged with a genre", (*anichin.Client).Genres},
		{"studio <slug>", "Series produced by a studio", (*anichin.Client).Studio},
		{"network <slug>", "Series aired on a network", (*anichin.Client).Network},
		{"country <slug>", "Series from a country", (*anichin.Client).Country},
	}
	for _, tx := range taxonomies {
		fn := tx.fn
		cmds = append(cmds, addPageFlag(&cobra.Command{
			Use:   tx.use,
			Short: tx.short,
			Args:  cobra.ExactArgs(1),
			RunE: o.runScrape(func(ctx context.Context, c *anichin.Client, cmd *cobra.Command, args []string) (envelope.Envelope, error) {
				return fn(c, ctx, args[0], pageFlag(cmd)), nil
			}),
		}))
	}

	return cmds
}

func newAdvancedSearchCmd(o *rootOptions) *cobra.Command {
	var (
		mode   string
		filter extract.SearchFilter
	)

	cmd := addPageFlag(&cobra.Command{
		Use:   "advanced-search",
		Short: "Filtered series search in image or text mode",
		Args:  cobra.NoArgs,
		RunE: o.runScrape(func(ctx context.Context, c *anichin.Client, cmd *cobra.Command, _ []string) (envelope.Envelope, error) {
			return c.AdvancedSearch(ctx, mode, filter, pageFlag(cmd)), nil
		}),
	})

	flags := cmd.Flags()
	flags.StringVarP(&mode, "mode", "m", extract.ModeImage, "Result mode: image or text")
	flags.StringVar(&filter.Status, "status", "", "Status filter (ongoing, completed, hiatus)")
	flags.StringVar(&filter.Type, "type", "", "Type filter (tv, ova, movie, special...)")
	flags.StringVar(&filter.Order, "order", "", "Sort order (title, titlereverse, update, latest, popular)")
	flags.StringVar(&filter.Sub, "sub", "", "Subtitle filter (sub, dub, raw)")
	flags.StringSliceVar(&filter.Genres, "genre", nil, "Genre slugs")
	flags.StringSliceVar(&filter.Studios, "studio", nil, "Studio slugs")
	flags.StringSliceVar(&filter.Seasons, "season", nil, "Season slugs")
	flags.IntVar(&filter.PerPage, "per-page", 0, "Results per page")
	lo.Must0(cmd.RegisterFlagCompletionFunc("mode", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{extract.ModeImage, extract.ModeText}, cobra.ShellCompDirectiveNoFileComp
	}))

	return cmd
}
