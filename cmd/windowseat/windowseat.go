package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/windowseat/windowseat/pkg/api"

	_ "time/tzdata"
)

func main() {
	if os.Getenv("WINDOWSEAT_LOG_FORMAT") != "JSON" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	if os.Getenv("WINDOWSEAT_DEBUG") == "YES" {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	} else {
		log.Logger = log.Logger.Level(zerolog.InfoLevel)
	}

	app := &cli.App{
		Name:        "windowseat",
		Description: "Offline flight narration companion - builds and replays flight packs",

		Commands: []*cli.Command{
			registerDownloadCLI(),
			registerTrackCLI(),
			registerPacksCLI(),
			registerMapsCLI(),
			api.RegisterCLI(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal().Err(err).Send()
	}
}
