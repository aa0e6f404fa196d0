package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/mrlokans/bookshelf/internal/cli"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/logging"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}

	cfg := config.NewConfig()
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	log.Debug().Str("version", Version).Str("commit", Commit).Msg("Build info")

	if err := cli.NewRootCommand(cfg, Version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
