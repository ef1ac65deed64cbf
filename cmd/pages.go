package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/tbourn/go-console-navigator/internal/catalog"
)

// PagesCommand creates the pages command
func PagesCommand() *cli.Command {
	return &cli.Command{
		Name:  "pages",
		Usage: "List the console page catalog",
		Action: func(ctx context.Context, c *cli.Command) error {
			w := output(c)
			fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Console pages (%s)", catalog.Version)))
			for _, p := range catalog.Pages() {
				fmt.Fprintf(w, "%s\n  %s\n", p.Name, metaStyle.Render(p.URL))
			}
			return nil
		},
	}
}
