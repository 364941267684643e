package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rubiojr/pocketdiary/pkg/core"
	"github.com/rubiojr/pocketdiary/pkg/storage"
	"github.com/urfave/cli/v3"
)

// AddCommand creates the add command
func AddCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Write the entry for a day, replacing any existing one",
		ArgsUsage: "[content]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "date",
				Aliases: []string{"d"},
				Usage:   "Day of the entry (YYYY-MM-DD, today, yesterday)",
				Value:   "today",
			},
			&cli.StringFlag{
				Name:    "title",
				Aliases: []string{"t"},
				Usage:   "Entry title",
			},
			&cli.BoolFlag{
				Name:  "stdin",
				Usage: "Read the content from standard input",
			},
			&cli.StringFlag{
				Name:  "color",
				Usage: "Background color for the entry",
			},
			&cli.StringFlag{
				Name:  "image",
				Usage: "Path of an image to attach",
			},
			&cli.BoolFlag{
				Name:  "image-top",
				Usage: "Show the image above the text",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return withDiary(ctx, c, func(d *diary) error {
				return addEntry(ctx, c, d)
			})
		},
	}
}

func addEntry(ctx context.Context, c *cli.Command, d *diary) error {
	day, err := parseDayArg(c.String("date"), d.loc)
	if err != nil {
		return err
	}

	content := c.Args().First()
	if c.Bool("stdin") {
		data, err := io.ReadAll(stdin(c))
		if err != nil {
			return fmt.Errorf("reading content: %w", err)
		}
		content = string(data)
	}

	e := core.NewEntry(day, c.String("title"), content)
	e.BackgroundColor = c.String("color")
	e.ImagePositionTop = c.Bool("image-top")
	if path := c.String("image"); path != "" {
		img, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading image: %w", err)
		}
		e.Image = img
	}

	if err := d.store.PutEntry(ctx, e); err != nil {
		return err
	}
	fmt.Fprintf(stdout(c), "Saved %s\n", e.Summary())
	return nil
}

// ShowCommand creates the show command
func ShowCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show the entry for a day",
		ArgsUsage: "[YYYY-MM-DD]",
		Action: func(ctx context.Context, c *cli.Command) error {
			return withDiary(ctx, c, func(d *diary) error {
				day, err := parseDayArg(c.Args().First(), d.loc)
				if err != nil {
					return err
				}
				e, err := d.store.GetEntry(ctx, day)
				if errors.Is(err, storage.ErrNotFound) {
					return fmt.Errorf("no entry for %s", day.Format(core.DayLayout))
				}
				if err != nil {
					return err
				}
				renderEntry(stdout(c), e)
				return nil
			})
		},
	}
}

// DeleteCommand creates the delete command
func DeleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete the entry for a day",
		ArgsUsage: "YYYY-MM-DD",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.NArg() != 1 {
				return fmt.Errorf("delete needs exactly one day argument")
			}
			return withDiary(ctx, c, func(d *diary) error {
				day, err := parseDayArg(c.Args().First(), d.loc)
				if err != nil {
					return err
				}
				if err := d.store.DeleteEntry(ctx, day); err != nil {
					if errors.Is(err, storage.ErrNotFound) {
						return fmt.Errorf("no entry for %s", day.Format(core.DayLayout))
					}
					return err
				}
				fmt.Fprintf(stdout(c), "Deleted %s\n", day.Format(core.DayLayout))
				return nil
			})
		},
	}
}

// ListCommand creates the list command
func ListCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List diary entries, oldest first",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Show only the most recent N entries (0 for all)",
				Value: 0,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return withDiary(ctx, c, func(d *diary) error {
				entries, err := d.store.FetchAllEntries(ctx)
				if err != nil {
					return err
				}
				if limit := c.Int("limit"); limit > 0 && len(entries) > limit {
					entries = entries[len(entries)-limit:]
				}
				renderList(stdout(c), entries)
				return nil
			})
		},
	}
}
