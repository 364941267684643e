package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rubiojr/pocketdiary/pkg/api"
	"github.com/rubiojr/pocketdiary/pkg/config"
	"github.com/rubiojr/pocketdiary/pkg/log"
	"github.com/rubiojr/pocketdiary/pkg/realtime"
	"github.com/rubiojr/pocketdiary/pkg/watch"
	"github.com/urfave/cli/v3"
)

// ServeCommand creates the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the HTTP API and live search",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "listen",
				Usage: "Address to listen on (overrides [server] listen)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return withDiary(ctx, c, func(d *diary) error {
				addr := d.cfg.Server.Listen
				if c.IsSet("listen") {
					addr = c.String("listen")
				}
				return serve(ctx, d, addr)
			})
		},
	}
}

func serve(ctx context.Context, d *diary, addr string) error {
	logger := log.ForService("serve")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub(0)
	watched := false

	// Changes made by other processes (the CLI, another server) reach live
	// searches through the file watcher.
	watcher, err := watch.New(hub, d.cfg.Watch.Debounce.Duration)
	if err != nil {
		logger.Warnf("live updates from other processes disabled: %v", err)
	} else {
		defer func() {
			if err := watcher.Close(); err != nil {
				logger.Warnf("failed to close file watcher: %v", err)
			}
		}()
		watched = true
		if err := watcher.AddDatabase(d.store.Path()); err != nil {
			logger.Warnf("failed to watch database: %v", err)
			watched = false
		}
		if d.cfg.SettingsBackend == config.SettingsBackendFile {
			if err := watcher.AddFile(d.cfg.SettingsFile, realtime.SettingsChanged); err != nil {
				logger.Warnf("failed to watch settings file: %v", err)
				watched = false
			}
		}
		go watcher.Run(ctx)
	}

	// With the watcher in place, API writes reach live searches through it.
	srv := api.NewServer(d.store, d.settings, hub, d.loc, api.WithWriteEvents(!watched))
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("listening on http://%s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := d.store.WALCheckpoint(shutdownCtx); err != nil {
		logger.Warnf("final WAL checkpoint failed: %v", err)
	}
	return nil
}
