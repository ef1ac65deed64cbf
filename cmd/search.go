package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/tbourn/go-console-navigator/internal/config"
	"github.com/tbourn/go-console-navigator/internal/services"
)

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search a resource CSV and the console page catalog",
		ArgsUsage: "QUERY...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "file",
				Usage: "Resource CSV (defaults to RESOURCES_PATH)",
			},
			&cli.StringFlag{
				Name:  "kind",
				Usage: "resources, pages or both",
				Value: string(services.KindBoth),
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results, pages included (0 = default for kind)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			query := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(query) == "" {
				return fmt.Errorf("missing query")
			}
			kind, err := services.ParseKind(c.String("kind"))
			if err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return searchResources(ctx, c, cfg, query, kind, c.Int("limit"))
		},
	}
}

// searchResources loads the resource file (when the search needs it) and
// prints the hits.
func searchResources(ctx context.Context, c *cli.Command, cfg config.Config, query string, kind services.SearchKind, limit int) error {
	svc := newNavigator(cfg, nil)
	if kind != services.KindPages {
		path, err := resourceFile(c, cfg)
		if err != nil {
			return err
		}
		if _, err := svc.LoadFile(ctx, path); err != nil {
			return err
		}
	}

	hits, err := svc.Search(ctx, query, kind, limit)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}
	renderHits(output(c), query, hits)
	return nil
}
