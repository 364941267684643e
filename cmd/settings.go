package cmd

import (
	"context"
	"fmt"

	"github.com/rubiojr/pocketdiary/pkg/core"
	"github.com/rubiojr/pocketdiary/pkg/settings"
	"github.com/urfave/cli/v3"
)

// SettingsCommand creates the settings command
func SettingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or change the saved search settings",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the saved search settings",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withDiary(ctx, c, func(d *diary) error {
						snap, err := d.settings.Snapshot(ctx)
						if err != nil {
							return err
						}
						renderSettings(stdout(c), snap)
						return nil
					})
				},
			},
			{
				Name:  "set",
				Usage: "Change one or more saved search settings",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "exact", Usage: "Exact phrase matching"},
					&cli.StringFlag{Name: "scope", Usage: tagList(core.SearchScopes())},
					&cli.StringFlag{Name: "range", Usage: tagList(core.TimeRanges())},
					&cli.StringFlag{Name: "sort", Usage: tagList(core.SortModes())},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return withDiary(ctx, c, func(d *diary) error {
						return setSettings(ctx, c, d)
					})
				},
			},
			{
				Name:  "values",
				Usage: "List the accepted setting values",
				Action: func(ctx context.Context, c *cli.Command) error {
					out := stdout(c)
					fmt.Fprintln(out, titleStyle.Render("scope"))
					for _, v := range core.SearchScopes() {
						fmt.Fprintf(out, "  %-18s %s\n", v, v.Description())
					}
					fmt.Fprintln(out, titleStyle.Render("range"))
					for _, v := range core.TimeRanges() {
						fmt.Fprintf(out, "  %-18s %s\n", v, v.Description())
					}
					fmt.Fprintln(out, titleStyle.Render("sort"))
					for _, v := range core.SortModes() {
						fmt.Fprintf(out, "  %-18s %s\n", v, v.Description())
					}
					return nil
				},
			},
		},
	}
}

func setSettings(ctx context.Context, c *cli.Command, d *diary) error {
	snap, err := d.settings.Snapshot(ctx)
	if err != nil {
		return err
	}

	if c.IsSet("exact") {
		snap.ExactMatch = c.Bool("exact")
	}
	if c.IsSet("scope") {
		if snap.Scope, err = core.ParseSearchScope(c.String("scope")); err != nil {
			return err
		}
	}
	if c.IsSet("range") {
		if snap.TimeRange, err = core.ParseTimeRange(c.String("range")); err != nil {
			return err
		}
		if snap.TimeRange == core.Custom {
			return fmt.Errorf("%w: pass --from and --to to search instead", settings.ErrCustomRangeNotStored)
		}
	}
	if c.IsSet("sort") {
		if snap.SortMode, err = core.ParseSortMode(c.String("sort")); err != nil {
			return err
		}
	}

	if err := d.settings.Apply(ctx, snap); err != nil {
		return err
	}
	renderSettings(stdout(c), snap)
	return nil
}
