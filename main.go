// Command navigator serves and queries an in-memory search index over cloud
// resource inventories and resolves AWS console deep links.
//
//	@title			Console Navigator API
//	@version		1.0
//	@description	Search cloud resources and console pages, and resolve AWS console deep links.
//	@BasePath		/api/v1
package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/tbourn/go-console-navigator/cmd"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	app := &cli.Command{
		Name:  "navigator",
		Usage: "Search cloud resources and open them in the AWS console",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
				Value: false,
			},
		},
		Before: cmd.SetupLogging,
		Commands: []*cli.Command{
			cmd.ServeCommand(),
			cmd.SearchCommand(),
			cmd.ResolveCommand(),
			cmd.TypesCommand(),
			cmd.PagesCommand(),
			cmd.LoadsCommand(),
			cmd.VersionCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("navigator")
	}
}
