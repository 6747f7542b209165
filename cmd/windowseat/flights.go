package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/windowseat/windowseat/pkg/config"
	"github.com/windowseat/windowseat/pkg/possim"
	"github.com/windowseat/windowseat/pkg/skydf"
	"github.com/windowseat/windowseat/pkg/util"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "config",
		Usage: "path to the configuration file",
		Value: util.GetEnv("WINDOWSEAT_CONFIG", ""),
	}
}

func registerDownloadCLI() *cli.Command {
	return &cli.Command{
		Name:      "download",
		Usage:     "Download a flight pack for offline use",
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

			d, _, _, err := cfg.BuildDownloader(blobs)
			if err != nil {
				return err
			}

			pack, err := d.Download(context.Background(), c.Args().First(), func(status string, completed, total int) {
				event := log.Info().Str("status", status)
				if total > 0 {
					event = event.Int("completed", completed).Int("total", total)
				}
				event.Msg("Download progress")
			})
			if err != nil {
				return err
			}

			fmt.Printf("Flight pack %s ready: %d checkpoints, maps=%t audio=%t\n",
				pack.ID, len(pack.Checkpoints), pack.HasOfflineMaps, pack.HasAudio)

			return nil
		},
	}
}

func registerTrackCLI() *cli.Command {
	return &cli.Command{
		Name:      "track",
		Usage:     "Replay a stored flight pack as a simulated flight",
		ArgsUsage: "<flight number>",
		Flags: []cli.Flag{
			configFlag(),
			&cli.Float64Flag{
				Name:  "step",
				Value: 900,
				Usage: "metres between simulated position samples",
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "wall-clock delay between samples, zero replays instantly",
			},
		},
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

			d, _, _, err := cfg.BuildDownloader(blobs)
			if err != nil {
				return err
			}

			simulator := &possim.Simulator{
				StepMetres: c.Float64("step"),
				Interval:   c.Duration("interval"),
			}

			started := time.Now()
			err = d.Track(context.Background(), c.Args().First(), simulator, func(checkpoint skydf.Checkpoint) {
				fmt.Printf("[%s] %s: %s\n",
					time.Since(started).Round(time.Second),
					checkpoint.ID,
					util.TrimString(checkpoint.Narration, 120))
			})
			if err != nil {
				return err
			}

			fmt.Println("Flight complete")

			return nil
		},
	}
}
