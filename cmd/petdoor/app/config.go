package app

import (
	"flag"
	"fmt"
	"os"

	"github.com/doorkeeper/petdoor/pkg/config"
)

type flags struct {
	ConfigPath string
}

func parseFlags() (*flags, error) {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()
	return &flags{ConfigPath: *configPath}, nil
}

func loadConfig(configPath string) (*config.Config, error) {
	configFile := configPath
	if configFile == "" {
		configFile = config.DefaultConfigPath()
	}

	if _, err := os.Stat(configFile); err != nil {
		// No config file on disk: run with defaults rather than fail,
		// matching the teacher's loadConfig except for this fallback,
		// which this controller needs since it's expected to boot on a
		// freshly imaged device with no config authored yet.
		return config.DefaultConfig(), nil
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
