package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/stecurtis/imx/internal/config"
	"github.com/stecurtis/imx/internal/logging"
	"github.com/stecurtis/imx/internal/paths"
	"github.com/stecurtis/imx/internal/tui"
)

func main() {
	configFlag := flag.String("config", "", "config file path (overrides default)")
	flag.Parse()

	configPath := *configFlag
	if configPath == "" {
		configPath = paths.ConfigPath()
	}

	if err := paths.EnsureBaseDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: config unreadable, using defaults: %v\n", err)
	}

	logger, err := logging.New(paths.LogPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: open log: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	app := tui.NewApp(cfg, logger)
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
