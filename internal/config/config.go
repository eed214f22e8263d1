package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	EnvInput           = "OB_INPUT"
	EnvOutput          = "OB_OUTPUT"
	EnvLogEnv          = "OB_LOG_ENV"
	EnvLogLevel        = "OB_LOG_LEVEL"
	EnvHaltOnEmptyBook = "OB_HALT_ON_EMPTY_BOOK"
	EnvDepthLevels     = "OB_DEPTH_LEVELS"

	// StdStream selects stdout as output
	StdStream = "-"
)

type Config struct {
	InputPath       string
	OutputPath      string
	LogEnv          string
	LogLevel        string
	HaltOnEmptyBook bool
	DepthLevels     int
}

func Default() Config {
	return Config{
		InputPath:       "input.txt",
		OutputPath:      "output.txt",
		LogEnv:          "prod",
		LogLevel:        "",
		HaltOnEmptyBook: true,
		DepthLevels:     10,
	}
}

// Load reads an optional .env file from the working directory, then applies
// environment variables on top of Default. Command line flags are bound to
// the returned values by the caller.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, errors.Wrap(err, "loading .env file")
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Default()

	if v := os.Getenv(EnvInput); v != "" {
		cfg.InputPath = v
	}
	if v := os.Getenv(EnvOutput); v != "" {
		cfg.OutputPath = v
	}
	if v := os.Getenv(EnvLogEnv); v != "" {
		cfg.LogEnv = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}

	if v := os.Getenv(EnvHaltOnEmptyBook); v != "" {
		halt, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, errors.Wrapf(err, "invalid %s", EnvHaltOnEmptyBook)
		}
		cfg.HaltOnEmptyBook = halt
	}

	if v := os.Getenv(EnvDepthLevels); v != "" {
		levels, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, errors.Wrapf(err, "invalid %s", EnvDepthLevels)
		}
		cfg.DepthLevels = levels
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.InputPath == "" {
		return errors.New("input path is required")
	}
	if c.OutputPath == "" {
		return errors.New("output path is required")
	}
	if c.DepthLevels < 0 {
		return errors.Errorf("depth levels must be non-negative, got %d", c.DepthLevels)
	}
	return nil
}
