package arena

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultGrowthFactor multiplies the capacity on each growth step.
const DefaultGrowthFactor = 2

// Config holds the arena settings that can be read from a TOML file.
type Config struct {
	InitialSize   int    `toml:"initial_size"`
	FixedCapacity bool   `toml:"fixed_capacity"`
	GrowthFactor  int    `toml:"growth_factor"`
	LogLevel      string `toml:"log_level"`
}

// DefaultConfig returns the settings NewArena(0) uses.
func DefaultConfig() Config {
	return Config{
		InitialSize:  DefaultInitialSize,
		GrowthFactor: DefaultGrowthFactor,
	}
}

// LoadConfig parses a TOML config file and fills in defaults for missing fields.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes TOML config data and fills in defaults.
func ParseConfig(data []byte) (Config, error) {
	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse error: %w", err)
	}

	// Defaults
	if c.InitialSize == 0 {
		c.InitialSize = DefaultInitialSize
	}
	if c.GrowthFactor == 0 {
		c.GrowthFactor = DefaultGrowthFactor
	}

	return c, c.Validate()
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var err error
	if c.InitialSize < 0 {
		err = multierr.Append(err, fmt.Errorf("initial_size must not be negative, got %d", c.InitialSize))
	}
	if c.InitialSize > MaxCapacity {
		err = multierr.Append(err, fmt.Errorf("initial_size %d exceeds maximum %d", c.InitialSize, MaxCapacity))
	}
	if c.GrowthFactor < 2 {
		err = multierr.Append(err, fmt.Errorf("growth_factor must be at least 2, got %d", c.GrowthFactor))
	}
	if c.LogLevel != "" {
		if _, lerr := zapcore.ParseLevel(c.LogLevel); lerr != nil {
			err = multierr.Append(err, fmt.Errorf("log_level: %w", lerr))
		}
	}
	return err
}

// Logger builds a production logger at LogLevel, or returns nil when no level is set.
func (c Config) Logger() (*zap.Logger, error) {
	if c.LogLevel == "" {
		return nil, nil
	}
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// Options converts the config into constructor options.
func (c Config) Options() ([]Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	opts := []Option{WithGrowthFactor(c.GrowthFactor)}
	if c.FixedCapacity {
		opts = append(opts, WithFixedCapacity())
	}
	l, err := c.Logger()
	if err != nil {
		return nil, err
	}
	if l != nil {
		opts = append(opts, WithLogger(l))
	}
	return opts, nil
}

// NewFromConfig creates an arena from validated settings.
func NewFromConfig(c Config) (*Arena, error) {
	opts, err := c.Options()
	if err != nil {
		return nil, err
	}
	return NewArena(c.InitialSize, opts...), nil
}
