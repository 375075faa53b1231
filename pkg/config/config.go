package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/henderiw/intervaltree/pkg/interval"
	"github.com/henderiw/intervaltree/pkg/iprange"
	"github.com/henderiw/intervaltree/pkg/tree"
	"github.com/spf13/viper"
	"k8s.io/apimachinery/pkg/labels"
)

const (
	envPrefix     = "ITREE"
	configName    = "intervals"
	defaultLevel  = "info"
	defaultFormat = "text"
	defaultOutput = "table"
)

var (
	ErrInvalidLogLevel     = errors.New("invalid log level")
	ErrInvalidLogFormat    = errors.New("invalid log format")
	ErrInvalidOutputFormat = errors.New("invalid output format")
)

// Config is the interval set file: labelled intervals and labelled IPv4 ranges,
// plus logging and output settings for the CLI.
type Config struct {
	Logging   LoggingConfig `mapstructure:"logging"`
	Output    OutputConfig  `mapstructure:"output"`
	Intervals []EntryConfig `mapstructure:"intervals"`
	IPRanges  []EntryConfig `mapstructure:"ip_ranges"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// EntryConfig is one labelled range, "1-5" for intervals and
// "10.0.0.1-10.0.0.9", "10.0.0.0/24" or "10.0.0.1" for ip ranges.
type EntryConfig struct {
	Range  string            `mapstructure:"range"`
	Labels map[string]string `mapstructure:"labels"`
}

// Load reads the config from configPath, or from intervals.yaml in . or ./config
// when configPath is empty. ITREE_ prefixed environment variables override file values.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(err, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", defaultLevel)
	v.SetDefault("logging.format", defaultFormat)
	v.SetDefault("output.format", defaultOutput)
}

func (c *Config) Validate() error {
	var errm error
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errm = errors.Join(errm, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level))
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errm = errors.Join(errm, fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format))
	}
	switch c.Output.Format {
	case "table", "yaml", "json":
	default:
		errm = errors.Join(errm, fmt.Errorf("%w: %q", ErrInvalidOutputFormat, c.Output.Format))
	}
	return errm
}

// Entries parses the intervals section. All malformed intervals are reported.
func (c *Config) Entries() (tree.Entries, error) {
	var errm error
	entries := make(tree.Entries, 0, len(c.Intervals))
	for idx, ec := range c.Intervals {
		i, err := interval.Parse(ec.Range)
		if err != nil {
			errm = errors.Join(errm, fmt.Errorf("intervals[%d]: %w", idx, err))
			continue
		}
		entries = append(entries, tree.NewEntry(i, labels.Set(ec.Labels)))
	}
	if errm != nil {
		return nil, errm
	}
	return entries, nil
}

// IPEntries parses the ip_ranges section; prefixes are carried as routes. All
// malformed ranges are reported.
func (c *Config) IPEntries() (iprange.Entries, error) {
	var errm error
	entries := make(iprange.Entries, 0, len(c.IPRanges))
	for idx, ec := range c.IPRanges {
		e, err := iprange.ParseEntry(ec.Range, labels.Set(ec.Labels))
		if err != nil {
			errm = errors.Join(errm, fmt.Errorf("ip_ranges[%d]: %w", idx, err))
			continue
		}
		entries = append(entries, e)
	}
	if errm != nil {
		return nil, errm
	}
	return entries, nil
}
