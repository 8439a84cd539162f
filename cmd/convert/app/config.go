package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const logExtension = ".bin"

// EngineConfig holds the tunable knobs of the aggregation engine.
type EngineConfig struct {
	PositionBoundsCheck bool    `yaml:"positionBoundsCheck"`
	SmoothingWindow     int     `yaml:"smoothingWindow"`
	KelvinThreshold     float64 `yaml:"kelvinThreshold"`
}

// Config represents the converter configuration.
type Config struct {
	InputFile  string
	OutputBase string
	DBPath     string
	Verbose    bool

	Engine EngineConfig
}

func NewConfig() *Config {
	return &Config{}
}

// NewConfigFromCLI builds the configuration from command line flags and the
// optional YAML engine configuration file.
func NewConfigFromCLI() (*Config, error) {
	c := NewConfig()

	var configFile string
	flag.StringVar(&c.InputFile, "in", "", "Path to the DataFlash log file (.bin)")
	flag.StringVar(&c.OutputBase, "out", "", "Base path for output files (default: input path without extension)")
	flag.StringVar(&configFile, "config", "", "Path to an optional YAML engine configuration file")
	flag.StringVar(&c.DBPath, "db", "", "Optional SQLite archive to store the converted sounding in")
	flag.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	flag.Parse()

	var err error
	switch {
	case c.InputFile == "":
		err = errors.New("input log file is required")
	case !strings.EqualFold(filepath.Ext(c.InputFile), logExtension):
		err = fmt.Errorf("input file must have the %s extension", logExtension)
	}

	if err != nil {
		flag.Usage()
		return nil, err
	}

	if c.OutputBase == "" {
		c.OutputBase = strings.TrimSuffix(c.InputFile, filepath.Ext(c.InputFile))
	}

	if configFile != "" {
		if err = loadEngineConfig(configFile, &c.Engine); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func loadEngineConfig(path string, engine *EngineConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var file struct {
		Engine EngineConfig `yaml:"engine"`
	}
	if err = yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	*engine = file.Engine
	return nil
}
