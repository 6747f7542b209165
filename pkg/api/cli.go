package api

import (
	"github.com/urfave/cli/v2"

	"github.com/windowseat/windowseat/pkg/config"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Provides the companion web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Usage: "listen target for the web server",
					},
					&cli.StringFlag{
						Name:  "config",
						Usage: "path to the configuration file",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}

					blobs, err := cfg.OpenBlobStore()
					if err != nil {
						return err
					}
					defer blobs.Close()

					d, packs, tiles, err := cfg.BuildDownloader(blobs)
					if err != nil {
						return err
					}

					listen := c.String("listen")
					if listen == "" {
						listen = cfg.API.Listen
					}

					return NewServer(packs, d, tiles).SetupServer(listen)
				},
			},
		},
	}
}
