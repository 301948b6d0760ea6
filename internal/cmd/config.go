package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/preproc/internal/config"
)

// loadConfig loads the file named by --config, or the nearest
// .preproc/config.yaml above the working directory. Without either it
// returns the defaults rooted at the working directory.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath != "" {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
		return cfg, nil
	}

	path, err := config.FindConfig(".")
	if errors.Is(err, config.ErrConfigNotFound) {
		return config.LoadConfigFromDir(".")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find config: %w", err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
