package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rubiojr/pocketdiary/pkg/config"
	"github.com/urfave/cli/v3"
)

// InitCommand creates the init command
func InitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a configuration file and create the diary database",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing configuration file",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return initDiary(ctx, c, c.String("config"), c.Bool("force"))
		},
	}
}

// initDiary writes the configuration template (unless one exists) and opens
// the database once so its schema is created.
func initDiary(ctx context.Context, c *cli.Command, configPath string, force bool) error {
	out := stdout(c)

	if _, err := os.Stat(configPath); err == nil && !force {
		fmt.Fprintf(out, "Configuration already exists at %s\n", configPath)
	} else {
		cfg, err := config.GetDefaultConfig()
		if err != nil {
			return fmt.Errorf("building default config: %w", err)
		}
		if err := cfg.SaveTemplateConfig(configPath); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		fmt.Fprintf(out, "Configuration initialized at %s\n", configPath)
	}

	return withDiary(ctx, c, func(d *diary) error {
		fmt.Fprintf(out, "Diary database ready at %s\n", d.store.Path())
		return nil
	})
}
