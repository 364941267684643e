package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rubiojr/pocketdiary/pkg/config"
	"github.com/rubiojr/pocketdiary/pkg/core"
	"github.com/rubiojr/pocketdiary/pkg/log"
	"github.com/rubiojr/pocketdiary/pkg/realtime"
	"github.com/rubiojr/pocketdiary/pkg/search"
	"github.com/rubiojr/pocketdiary/pkg/settings"
	"github.com/rubiojr/pocketdiary/pkg/watch"
	"github.com/urfave/cli/v3"
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search diary entries",
		ArgsUsage: "<text>",
		Description: "Options not given on the command line come from the saved search settings.\n" +
			"Options that are given are saved for the next search (unless --no-save).",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "exact",
				Aliases: []string{"e"},
				Usage:   "Match the whole phrase, case-sensitively",
			},
			&cli.StringFlag{
				Name:  "scope",
				Usage: "Where to look: " + tagList(core.SearchScopes()),
			},
			&cli.StringFlag{
				Name:  "range",
				Usage: "Time range: " + tagList(core.TimeRanges()),
			},
			&cli.StringFlag{
				Name:  "sort",
				Usage: "Order: " + tagList(core.SortModes()),
			},
			&cli.StringFlag{
				Name:  "from",
				Usage: "Custom range start (YYYY-MM-DD), requires --to",
			},
			&cli.StringFlag{
				Name:  "to",
				Usage: "Custom range end (YYYY-MM-DD), inclusive",
			},
			&cli.BoolFlag{
				Name:  "no-save",
				Usage: "Do not save the given options as the new defaults",
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Keep running and re-run the search when the diary changes",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return withDiary(ctx, c, func(d *diary) error {
				return runSearch(ctx, c, d)
			})
		},
	}
}

func runSearch(ctx context.Context, c *cli.Command, d *diary) error {
	values := searchValues(c)
	q, err := buildQuery(ctx, d.settings, values, d.loc)
	if err != nil {
		return err
	}

	if !c.Bool("no-save") {
		if err := saveSearchFlags(ctx, c, d.settings, q); err != nil {
			return err
		}
	}

	s := search.New(d.store, search.WithLocation(d.loc))
	entries, err := s.Search(ctx, q)
	if err != nil {
		return err
	}
	renderResults(stdout(c), s, q, entries)

	if !c.Bool("watch") {
		return nil
	}
	return watchSearch(ctx, c, d, s, values)
}

// searchValues maps the command line onto the parameters understood by
// search.ParseQueryParams. Only flags that were given are included.
func searchValues(c *cli.Command) url.Values {
	values := url.Values{}
	values.Set("q", strings.Join(c.Args().Slice(), " "))
	for _, name := range []string{"scope", "range", "sort", "from", "to"} {
		if c.IsSet(name) {
			values.Set(name, c.String(name))
		}
	}
	if c.IsSet("exact") {
		values.Set("exact", strconv.FormatBool(c.Bool("exact")))
	}
	return values
}

// buildQuery resolves values on top of the current settings.
func buildQuery(ctx context.Context, prefs *settings.Settings, values url.Values, loc *time.Location) (core.SearchQuery, error) {
	snap, err := prefs.Snapshot(ctx)
	if err != nil {
		return core.SearchQuery{}, fmt.Errorf("reading search settings: %w", err)
	}
	return search.ParseQueryParams(values, snap, loc)
}

// saveSearchFlags writes explicitly given options back to the settings. A
// custom time range is not saved: its bounds are not persisted.
func saveSearchFlags(ctx context.Context, c *cli.Command, prefs *settings.Settings, q core.SearchQuery) error {
	logger := log.ForService("search")
	if c.IsSet("exact") {
		if err := prefs.SetExactMatch(ctx, q.ExactMatch); err != nil {
			return err
		}
	}
	if c.IsSet("scope") {
		if err := prefs.SetScope(ctx, q.Scope); err != nil {
			return err
		}
	}
	if c.IsSet("range") && q.TimeRange != core.Custom {
		if err := prefs.SetTimeRange(ctx, q.TimeRange); err != nil {
			return err
		}
	}
	if c.IsSet("sort") {
		if err := prefs.SetSortMode(ctx, q.SortMode); err != nil {
			return err
		}
	}
	logger.Debugf("saved search options")
	return nil
}

// watchSearch re-runs the search whenever the database or the settings file
// changes, until interrupted.
func watchSearch(ctx context.Context, c *cli.Command, d *diary, s *search.Searcher, values url.Values) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub(0)
	id, events := hub.Register()
	defer hub.Unregister(id)

	w, err := watch.New(hub, d.cfg.Watch.Debounce.Duration)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.AddDatabase(d.store.Path()); err != nil {
		return err
	}
	if d.cfg.SettingsBackend == config.SettingsBackendFile {
		if err := w.AddFile(d.cfg.SettingsFile, realtime.SettingsChanged); err != nil {
			return err
		}
	}
	go w.Run(ctx)

	out := stdout(c)
	fmt.Fprintln(out, metaStyle.Render("Watching for changes, Ctrl+C to stop."))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			q, err := buildQuery(ctx, d.settings, values, d.loc)
			if err != nil {
				return err
			}
			entries, err := s.Search(ctx, q)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, metaStyle.Render(fmt.Sprintf("updated (%s at %s)", ev.Kind, ev.At.Format("15:04:05"))))
			renderResults(out, s, q, entries)
		}
	}
}

type tagged interface {
	String() string
}

func tagList[T tagged](values []T) string {
	tags := make([]string, len(values))
	for i, v := range values {
		tags[i] = v.String()
	}
	return strings.Join(tags, ", ")
}
