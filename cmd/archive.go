package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rubiojr/pocketdiary/pkg/archive"
	"github.com/urfave/cli/v3"
)

// ExportCommand creates the export command
func ExportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export every entry as a JSON archive",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Archive file (default: standard output)",
			},
			&cli.BoolFlag{
				Name:  "zstd",
				Usage: "Compress the archive with zstd",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return withDiary(ctx, c, func(d *diary) error {
				entries, err := d.store.FetchAllEntries(ctx)
				if err != nil {
					return err
				}

				var w io.Writer = stdout(c)
				if path := c.String("output"); path != "" {
					f, err := os.Create(path)
					if err != nil {
						return fmt.Errorf("creating archive: %w", err)
					}
					defer f.Close()
					w = f
				}

				if err := archive.Export(w, entries, c.Bool("zstd")); err != nil {
					return err
				}
				if path := c.String("output"); path != "" {
					fmt.Fprintf(os.Stderr, "Exported %d entries to %s\n", len(entries), path)
				}
				return nil
			})
		},
	}
}

// ImportCommand creates the import command
func ImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import entries from an archive, replacing entries for the same day",
		ArgsUsage: "<archive>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.NArg() != 1 {
				return fmt.Errorf("import needs the archive path")
			}
			return withDiary(ctx, c, func(d *diary) error {
				f, err := os.Open(c.Args().First())
				if err != nil {
					return fmt.Errorf("opening archive: %w", err)
				}
				defer f.Close()

				doc, err := archive.Import(f)
				if err != nil {
					return err
				}
				for _, e := range doc.Entries {
					if err := d.store.PutEntry(ctx, e); err != nil {
						return err
					}
				}
				fmt.Fprintf(stdout(c), "Imported %d entries\n", len(doc.Entries))
				return nil
			})
		},
	}
}
