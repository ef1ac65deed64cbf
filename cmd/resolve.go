package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/tbourn/go-console-navigator/internal/domain"
	"github.com/tbourn/go-console-navigator/internal/navigate"
)

// ResolveCommand creates the resolve command
func ResolveCommand() *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Print the AWS console URL of a resource",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "type",
				Usage:    "Resource type, see the types command",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "name",
				Usage:    "Resource name; compound names use a comma (sg-123,vpc-1)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "region",
				Usage: "AWS region",
			},
			&cli.StringFlag{
				Name:  "profile",
				Usage: "AWS profile",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			r := domain.ResourceRecord{
				Type:    c.String("type"),
				Name:    c.String("name"),
				Region:  c.String("region"),
				Profile: c.String("profile"),
			}
			u := navigate.ResolveResource(r)
			if u == "" {
				return fmt.Errorf("unknown resource type %q", r.Type)
			}
			fmt.Fprintln(output(c), u)
			return nil
		},
	}
}

// TypesCommand creates the types command
func TypesCommand() *cli.Command {
	return &cli.Command{
		Name:  "types",
		Usage: "List the resource types resolve understands",
		Action: func(ctx context.Context, c *cli.Command) error {
			w := output(c)
			for _, t := range navigate.Types() {
				fmt.Fprintln(w, t)
			}
			return nil
		},
	}
}

// output is where commands print results.
func output(c *cli.Command) io.Writer {
	if root := c.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}
