package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/windowseat/windowseat/pkg/config"
	"github.com/windowseat/windowseat/pkg/util"
)

func registerMapsCLI() *cli.Command {
	return &cli.Command{
		Name:  "maps",
		Usage: "Manage the offline map tile cache",
		Subcommands: []*cli.Command{
			{
				Name:      "precache",
				Usage:     "re-download the map tiles for a stored flight pack",
				ArgsUsage: "<flight number>",
				Flags:     []cli.Flag{configFlag()},
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 1 {
						return errors.New("expected a single flight number argument")
					}

					cfg, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}

					blobs, err := cfg.OpenBlobStore()
					if err != nil {
						return err
					}
					defer blobs.Close()

					_, packs, tiles, err := cfg.BuildDownloader(blobs)
					if err != nil {
						return err
					}
					if tiles == nil {
						return errors.New("no tile or static map source configured")
					}

					pack, err := packs.Load(c.Args().First())
					if err != nil {
						return err
					}
					if pack == nil {
						return fmt.Errorf("no flight pack stored for %s", c.Args().First())
					}

					opts := cfg.TilePreCacheOptions()
					result := tiles.PreCache(context.Background(), pack.Route, pack.ID, func(completed, total int) {
						log.Info().Int("completed", completed).Int("total", total).Msg("Caching tiles")
					}, opts)

					fmt.Printf("Downloaded %d tiles (%s), skipped %d, failed %d\n",
						result.TilesDownloaded,
						util.FormatBytes(result.BytesDownloaded),
						result.TilesSkipped,
						result.TilesFailed)

					if !result.Success {
						return errors.New("tile pre-cache failed")
					}

					return nil
				},
			},
			{
				Name:      "clear",
				Usage:     "clear cached tiles, for one flight or everything",
				ArgsUsage: "[flight number]",
				Flags:     []cli.Flag{configFlag()},
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

					_, _, tiles, err := cfg.BuildDownloader(blobs)
					if err != nil {
						return err
					}
					if tiles == nil {
						return errors.New("no tile or static map source configured")
					}

					if c.Args().Len() == 1 {
						return tiles.ClearForFlight(c.Args().First())
					}

					return tiles.ClearAll()
				},
			},
		},
	}
}
