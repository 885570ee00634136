package main

import (
	"os"

	"taskboard/internal/cmd"
	"taskboard/internal/config"
	"taskboard/internal/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.AppEnv, cfg.LogLevel)

	if err := cmd.NewRoot(cfg, log).Execute(); err != nil {
		os.Exit(1)
	}
}
