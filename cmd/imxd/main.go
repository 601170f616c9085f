package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/stecurtis/imx/internal/daemon"
	"github.com/stecurtis/imx/internal/paths"
	"go.uber.org/fx"
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

	app := fx.New(
		daemon.Module(daemon.Params{ConfigPath: configPath}),
	)

	app.Run()
}
