package main

import (
	"log/slog"
	"os"

	"github.com/velocet/rfremote/cmd/waveplot/app"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	config, err := app.NewConfigFromCLI()
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}

	if err = app.Run(config, logger); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}
