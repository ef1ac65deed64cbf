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

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/tbourn/go-console-navigator/internal/config"
	httpapi "github.com/tbourn/go-console-navigator/internal/http"
	"github.com/tbourn/go-console-navigator/internal/observability"
	"github.com/tbourn/go-console-navigator/internal/repo"
	"github.com/tbourn/go-console-navigator/internal/services"
	"github.com/tbourn/go-console-navigator/internal/version"
)

const shutdownTimeout = 30 * time.Second

// ServeCommand creates the serve command
func ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "resources",
				Usage: "Resource CSV loaded at startup (overrides RESOURCES_PATH)",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Reload the resource CSV whenever it changes",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if p := c.String("resources"); p != "" {
				cfg.Index.ResourcesPath = p
			}
			if c.Bool("watch") {
				if cfg.Index.ResourcesPath == "" {
					return errors.New("--watch needs --resources or RESOURCES_PATH")
				}
				cfg.Index.Watch = true
			}
			return serve(ctx, cfg)
		},
	}
}

// serve runs the API until SIGINT or SIGTERM. SIGHUP reloads the resource
// file.
func serve(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version.Version)
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.Store.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	now := time.Now()
	if n, err := repo.MarkStaleLoads(ctx, db, now); err != nil {
		log.Warn().Err(err).Msg("mark stale loads")
	} else if n > 0 {
		log.Info().Int64("count", n).Msg("marked interrupted loads as failed")
	}
	if n, err := repo.PurgeExpiredIdempotency(ctx, db, now); err != nil {
		log.Warn().Err(err).Msg("purge idempotency keys")
	} else if n > 0 {
		log.Info().Int64("count", n).Msg("purged expired idempotency keys")
	}

	svc := newNavigator(cfg, db)
	if cfg.Index.ResourcesPath != "" {
		if info, err := svc.LoadFile(ctx, cfg.Index.ResourcesPath); err != nil {
			// the API still serves pages, resolve and uploads without an index
			log.Error().Err(err).Str("file", cfg.Index.ResourcesPath).Msg("initial load failed")
		} else {
			log.Info().Str("load_id", info.LoadID).Int("records", info.TotalNames).Msg("initial load finished")
		}
	}

	gin.SetMode(cfg.HTTP.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, svc, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           r,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("version", version.Version).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if cfg.Index.ResourcesPath != "" {
		g.Go(func() error {
			reloadOnHangup(gctx, svc, cfg.Index.ResourcesPath)
			return nil
		})
	}

	if cfg.Index.Watch {
		g.Go(func() error {
			return svc.Loader.Watch(gctx, cfg.Index.ResourcesPath, svc.LoadFile)
		})
	}

	return g.Wait()
}

// reloadOnHangup reloads path on every SIGHUP until ctx is done.
func reloadOnHangup(ctx context.Context, svc *services.NavigatorService, path string) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sigCh:
			log.Info().Str("file", path).Msg("received SIGHUP, reloading")
			if _, err := svc.LoadFile(ctx, path); err != nil {
				log.Error().Err(err).Str("file", path).Msg("reload failed")
			}
		}
	}
}
