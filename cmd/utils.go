package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"gorm.io/gorm"

	"github.com/tbourn/go-console-navigator/internal/config"
	"github.com/tbourn/go-console-navigator/internal/loader"
	"github.com/tbourn/go-console-navigator/internal/search"
	"github.com/tbourn/go-console-navigator/internal/services"
	"github.com/tbourn/go-console-navigator/internal/sysutil"
)

// SetupLogging configures the global logger from --debug, LOG_LEVEL and
// LOG_PRETTY before any command runs. Logs go to stderr so command output
// stays pipeable.
func SetupLogging(ctx context.Context, c *cli.Command) (context.Context, error) {
	debug := ""
	if c.Bool("debug") {
		debug = "debug"
	}
	sysutil.SetupLogger(os.Stderr, sysutil.IsTruthy(os.Getenv("LOG_PRETTY")))
	sysutil.SetLogLevel(sysutil.FirstNonEmpty(debug, os.Getenv("LOG_LEVEL"), "info"))
	return ctx, nil
}

// newNavigator builds a service over a fresh loader configured from cfg.
// db may be nil.
func newNavigator(cfg config.Config, db *gorm.DB) *services.NavigatorService {
	ld := loader.New(
		loader.WithLogger(log.Logger),
		loader.WithSearchOptions(search.WithMaxTokenRunes(cfg.Index.MaxTokenRunes)),
	)
	svc := services.NewNavigatorService(db, ld)
	svc.ResourceLimit = cfg.Index.ResourceLimit
	svc.PageLimit = cfg.Index.PageLimit
	svc.MaxLimit = cfg.Index.MaxLimit
	svc.IdempotencyTTL = cfg.Store.IdempotencyTTL
	return svc
}

// resourceFile returns the CSV a one-shot command should read: the --file
// flag or RESOURCES_PATH.
func resourceFile(c *cli.Command, cfg config.Config) (string, error) {
	path := sysutil.FirstNonEmpty(c.String("file"), cfg.Index.ResourcesPath)
	if path == "" {
		return "", fmt.Errorf("no resource file: pass --file or set RESOURCES_PATH")
	}
	return path, nil
}
