package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/rubiojr/pocketdiary/pkg/config"
	"github.com/rubiojr/pocketdiary/pkg/db"
	"github.com/urfave/cli/v3"
)

// MigrateCommand creates the migrate command
func MigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Run database migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "status",
				Usage: "Show migration status without applying migrations",
				Value: false,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return RunMigrations(ctx, c, c.String("config"), c.Bool("status"))
		},
	}
}

// RunMigrations applies pending migrations, or only reports them when
// statusOnly is set.
func RunMigrations(ctx context.Context, c *cli.Command, configPath string, statusOnly bool) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	path := cfg.DatabasePath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer conn.Close()

	manager := db.NewMigrationManager(conn)
	out := stdout(c)

	if !statusOnly {
		if err := manager.ApplyPendingMigrations(ctx); err != nil {
			return err
		}
	}

	status, err := manager.Status(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Database: %s\n", path)
	for _, m := range status.Applied {
		fmt.Fprintf(out, "  [x] %03d %s (applied %s)\n", m.Version, m.Name, m.AppliedAt.Format("2006-01-02 15:04:05"))
	}
	for _, m := range status.Pending {
		fmt.Fprintf(out, "  [ ] %03d %s\n", m.Version, m.Name)
	}
	if len(status.Pending) == 0 {
		fmt.Fprintln(out, "Up to date")
	}
	return nil
}
