package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"sport-stat/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "sport-stat",
	Short:        "Sports statistics API: disciplines, teams and matches",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the YAML config file")
}

// loadConfig reads and validates the configuration and sets up logging from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	setupLogging(cfg.Log)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(lc config.LogConfig) {
	if strings.EqualFold(lc.Format, "json") {
		log.SetFormatter(log.JSONFormatter)
	}
	if lvl, err := log.ParseLevel(lc.Level); err == nil {
		log.SetLevel(lvl)
	}
	log.SetReportTimestamp(true)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
