package main

import (
	"context"
	"log"
	"os"

	"github.com/rubiojr/pocketdiary/cmd"
	"github.com/rubiojr/pocketdiary/pkg/config"
	plog "github.com/rubiojr/pocketdiary/pkg/log"
	"github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:  "pocketdiary",
		Usage: "A personal diary with fast search",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
				Value: false,
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Configuration file path",
				Value: getDefaultConfigPathOrExit(),
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			plog.SetGlobalDebug(c.Bool("debug"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmd.InitCommand(),
			cmd.AddCommand(),
			cmd.ShowCommand(),
			cmd.DeleteCommand(),
			cmd.ListCommand(),
			cmd.SearchCommand(),
			cmd.SettingsCommand(),
			cmd.ExportCommand(),
			cmd.ImportCommand(),
			cmd.ServeCommand(),
			cmd.MigrateCommand(),
			cmd.VersionCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func getDefaultConfigPathOrExit() string {
	path, err := config.GetDefaultConfigPath()
	if err != nil {
		log.Fatalf("Failed to get default config path: %v", err)
	}
	return path
}
