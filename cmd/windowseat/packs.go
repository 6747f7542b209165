package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/windowseat/windowseat/pkg/blobstore"
	"github.com/windowseat/windowseat/pkg/config"
	"github.com/windowseat/windowseat/pkg/packstore"
	"github.com/windowseat/windowseat/pkg/util"
)

func openPackStore(c *cli.Context) (*packstore.Store, blobstore.Store, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, err
	}

	blobs, err := cfg.OpenBlobStore()
	if err != nil {
		return nil, nil, err
	}

	_, packs, _, err := cfg.BuildDownloader(blobs)
	if err != nil {
		blobs.Close()
		return nil, nil, err
	}

	return packs, blobs, nil
}

func registerPacksCLI() *cli.Command {
	return &cli.Command{
		Name:  "packs",
		Usage: "Manage stored flight packs",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list stored flight packs",
				Flags: []cli.Flag{configFlag()},
				Action: func(c *cli.Context) error {
					packs, blobs, err := openPackStore(c)
					if err != nil {
						return err
					}
					defer blobs.Close()

					summaries, err := packs.List()
					if err != nil {
						return err
					}

					if len(summaries) == 0 {
						fmt.Println("No flight packs stored")
						return nil
					}

					for _, summary := range summaries {
						fmt.Printf("%-8s %s -> %s  %2d checkpoints  maps=%-5t audio=%-5t  %s\n",
							summary.ID,
							summary.Origin,
							summary.Destination,
							summary.Checkpoints,
							summary.HasOfflineMaps,
							summary.HasAudio,
							summary.DownloadedAt.Format("2006-01-02 15:04"))
					}

					size, err := packs.SizeBytes()
					if err == nil {
						fmt.Printf("Total storage: %s\n", util.FormatBytes(size))
					}

					return nil
				},
			},
			{
				Name:      "show",
				Usage:     "show a stored flight pack",
				ArgsUsage: "<flight number>",
				Flags:     []cli.Flag{configFlag()},
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 1 {
						return errors.New("expected a single flight number argument")
					}

					packs, blobs, err := openPackStore(c)
					if err != nil {
						return err
					}
					defer blobs.Close()

					pack, err := packs.Load(c.Args().First())
					if err != nil {
						return err
					}
					if pack == nil {
						return fmt.Errorf("no flight pack stored for %s", c.Args().First())
					}

					fmt.Printf("%s  %s %s -> %s  downloaded %s\n",
						pack.ID, pack.Airline, pack.Origin, pack.Destination,
						pack.DownloadedAt.Format("2006-01-02 15:04"))
					fmt.Printf("Estimated duration %s, offline maps %t, audio %t\n\n",
						pack.EstimatedDuration.Round(time.Second), pack.HasOfflineMaps, pack.HasAudio)

					for _, checkpoint := range pack.Checkpoints {
						name := checkpoint.Name
						if name == "" {
							name = string(checkpoint.Kind)
						}
						fmt.Printf("%-14s %-30s %s\n",
							checkpoint.ID,
							util.TrimString(name, 30),
							util.TrimString(checkpoint.Narration, 80))
					}

					return nil
				},
			},
			{
				Name:      "delete",
				Usage:     "delete a stored flight pack and its cached assets",
				ArgsUsage: "<flight number>",
				Flags:     []cli.Flag{configFlag()},
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 1 {
						return errors.New("expected a single flight number argument")
					}

					packs, blobs, err := openPackStore(c)
					if err != nil {
						return err
					}
					defer blobs.Close()

					return packs.Delete(c.Args().First())
				},
			},
			{
				Name:  "clear",
				Usage: "delete every stored flight pack",
				Flags: []cli.Flag{configFlag()},
				Action: func(c *cli.Context) error {
					packs, blobs, err := openPackStore(c)
					if err != nil {
						return err
					}
					defer blobs.Close()

					return packs.Clear()
				},
			},
		},
	}
}
