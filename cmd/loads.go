package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/tbourn/go-console-navigator/internal/config"
	"github.com/tbourn/go-console-navigator/internal/domain"
	"github.com/tbourn/go-console-navigator/internal/repo"
)

// LoadsCommand creates the loads command
func LoadsCommand() *cli.Command {
	return &cli.Command{
		Name:  "loads",
		Usage: "Show the load history recorded by the server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "db",
				Usage: "SQLite database (defaults to DB_PATH)",
			},
			&cli.IntFlag{
				Name:  "page",
				Usage: "Page number",
				Value: 1,
			},
			&cli.IntFlag{
				Name:  "page-size",
				Usage: "Loads per page",
				Value: 20,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if p := c.String("db"); p != "" {
				cfg.Store.DBPath = p
			}
			return listLoads(ctx, c, cfg, c.Int("page"), c.Int("page-size"))
		},
	}
}

func listLoads(ctx context.Context, c *cli.Command, cfg config.Config, page, pageSize int) error {
	db, err := repo.OpenSQLite(cfg.Store.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := repo.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}

	svc := newNavigator(cfg, db)
	items, total, err := svc.History(ctx, page, pageSize)
	if err != nil {
		return fmt.Errorf("listing loads: %w", err)
	}

	w := output(c)
	if len(items) == 0 {
		fmt.Fprintln(w, noDataStyle.Render("No loads recorded"))
		return nil
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Loads (%d total)", total)))
	if last, err := repo.LatestReadyLoad(ctx, db); err == nil {
		fmt.Fprintln(w, metaStyle.Render(fmt.Sprintf("last ready: %s, %d names", last.FileName, last.TotalNames)))
	}
	for _, it := range items {
		fmt.Fprintf(w, "%s %s %s %s\n",
			statusStyle(it.Status).Render(fmt.Sprintf("%-7s", it.Status)),
			it.StartedAt.Local().Format(time.DateTime),
			it.FileName,
			metaStyle.Render(loadDetail(it)),
		)
	}
	return nil
}

func loadDetail(it domain.LoadRecord) string {
	switch it.Status {
	case domain.LoadStatusReady:
		return fmt.Sprintf("%d names", it.TotalNames)
	case domain.LoadStatusFailed:
		return it.Error
	}
	return ""
}
