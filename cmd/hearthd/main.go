// hearthd is a small multi-threaded daemon serving disk-based content over
// TCP, built around a signal-driven lifecycle controller.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/hearthlabs/hearthd/pkg/config"
	"github.com/hearthlabs/hearthd/pkg/daemon"
	"github.com/hearthlabs/hearthd/pkg/logging"
)

const version = "0.1.0"

func main() {
	var (
		configPath  string
		logLevel    string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "path to the hearthd configuration file")
	flag.StringVar(&logLevel, "log-level", "", "log level override (debug, info, notice, warn, error, critical)")
	flag.BoolVar(&showVersion, "version", false, "show version and exit")

	flag.Parse()

	if showVersion {
		fmt.Printf("hearthd version %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hearthd: %v\n", err)
		os.Exit(1)
	}

	level := logging.ParseLevel(cfg.Log.Level)
	if logLevel != "" {
		level = logging.ParseLevel(logLevel)
	}
	logger := logging.New(level)
	if cfg.Log.File != "" {
		logger.EnableFile(logging.FileConfig{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
		})
		defer logger.Close()
	}

	logger.Notice("hearthd %s starting", version)

	d := daemon.New(cfg, logger)
	if err := d.Run(context.Background()); err != nil {
		logger.Error("hearthd failed: %v", err)
		os.Exit(1)
	}
}
