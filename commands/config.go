package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/penwyp/go-start-clock/internal/data/startlist"
	"github.com/penwyp/go-start-clock/internal/data/store"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// FileConfig is the optional YAML config file. Flags given on the command
// line win over file values.
type FileConfig struct {
	Source     string   `yaml:"source"`
	StartGroup string   `yaml:"start_group"`
	Timezone   string   `yaml:"timezone"`
	TimeFormat string   `yaml:"time_format"`
	StateDir   string   `yaml:"state_dir"`
	Simulate   *bool    `yaml:"simulate"`
	Layout     string   `yaml:"layout"`
	SkipSteps  []string `yaml:"skip_steps"`
	Speech     struct {
		Command  string  `yaml:"command"`
		Language string  `yaml:"language"`
		Rate     float64 `yaml:"rate"`
		Prefix   string  `yaml:"prefix"`
	} `yaml:"speech"`
}

// Settings are the values shared by every command after merging flags and
// the config file
type Settings struct {
	Source     string
	StartGroup string
	Timezone   string
	TimeFormat string
	StateDir   string
	File       *FileConfig
}

func defaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, store.AppSlug, "config.yaml")
}

// loadFileConfig reads path. A missing file is an empty config.
func loadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config FileConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &config, nil
}

// ParseSkipSteps converts the configured skip steps, e.g. ["10s", "1m"]
func (c *FileConfig) ParseSkipSteps() ([]time.Duration, error) {
	steps := make([]time.Duration, 0, len(c.SkipSteps))
	for _, s := range c.SkipSteps {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid skip step %q: %w", s, err)
		}
		steps = append(steps, d)
	}
	return steps, nil
}

func resolveSettings(cmd *cobra.Command) (*Settings, error) {
	path := configPath
	if path == "" {
		path = defaultConfigPath()
	}
	file, err := loadFileConfig(expandPath(path))
	if err != nil {
		return nil, err
	}

	settings := &Settings{
		Source:     flagOr(cmd, "source", source, file.Source),
		StartGroup: flagOr(cmd, "start-group", startGroup, file.StartGroup),
		Timezone:   flagOr(cmd, "timezone", timezone, file.Timezone),
		TimeFormat: flagOr(cmd, "time-format", timeFormat, file.TimeFormat),
		StateDir:   flagOr(cmd, "state-dir", stateDir, file.StateDir),
		File:       file,
	}
	if useExample {
		settings.Source = startlist.ExampleURL
	}
	if settings.Source != "" && !startlist.IsURL(settings.Source) {
		settings.Source = expandPath(settings.Source)
	}
	if settings.StateDir != "" {
		settings.StateDir = expandPath(settings.StateDir)
	}
	if settings.Timezone == "auto" {
		settings.Timezone = "Local"
	}
	return settings, nil
}

// flagOr prefers an explicitly set flag, then the file value, then the
// flag default
func flagOr(cmd *cobra.Command, name, flagValue, fileValue string) string {
	if cmd.Flags().Changed(name) || fileValue == "" {
		return flagValue
	}
	return fileValue
}
