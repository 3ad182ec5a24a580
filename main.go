/*
meshdraw indexes a directory of models and extracts the tangent vertex
buffers of every mesh in it, optionally watching the directory for changes.
*/
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/meshdraw/engine"
	"github.com/spaghettifunk/meshdraw/engine/core"
)

func main() {
	configPath := flag.String("config", "meshdraw.toml", "path to the TOML configuration")
	meshPath := flag.String("mesh", "", "extra model file to load")
	flag.Parse()

	cfg, err := core.LoadConfig(*configPath)
	if err != nil {
		core.LogFatal(err.Error())
	}
	core.SetLogLevel(cfg.Log.Level)

	e, err := engine.New(cfg)
	if err != nil {
		core.LogFatal(err.Error())
	}

	if err := e.Initialize(); err != nil {
		core.LogFatal(err.Error())
	}
	if *meshPath != "" {
		if _, err := e.LoadMesh(*meshPath); err != nil {
			core.LogError(err.Error())
		}
	}

	// capture sigterm and other system call here
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	runErr := e.Run(ctx)
	if err := e.Shutdown(); err != nil {
		core.LogError(err.Error())
	}
	if runErr != nil {
		core.LogError(runErr.Error())
		os.Exit(1)
	}
}
