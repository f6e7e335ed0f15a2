// Package config provides configuration loading from YAML files with
// environment overrides.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/hsaj/bridge/internal/domain/blocked"
	"github.com/hsaj/bridge/internal/domain/track"
)

// Config represents the bridge configuration.
type Config struct {
	Server  ServerConfig     `yaml:"server"`
	Source  string           `yaml:"source" default:"roon-bridge"`
	Demo    DemoConfig       `yaml:"demo"`
	Blocked BlockedConfig    `yaml:"blocked"`
	Catalog []map[string]any `yaml:"catalog"`
}

// ServerConfig represents the HTTP listener configuration.
type ServerConfig struct {
	Addr   string `yaml:"addr" default:":8080"`
	WSPath string `yaml:"ws_path" default:"/events" validate:"startswith=/"`
}

// DemoConfig represents the synthetic demo feed configuration.
type DemoConfig struct {
	Enabled    bool `yaml:"enabled"`
	IntervalMS int  `yaml:"interval_ms" default:"15000" validate:"gte=100"`
}

// BlockedConfig represents the blocked-items endpoint configuration.
type BlockedConfig struct {
	EndpointEnabled bool             `yaml:"endpoint_enabled"`
	Items           []map[string]any `yaml:"items"`
}

// Load loads configuration from a YAML file. A missing file is not an
// error: the bridge can run entirely from defaults and environment
// variables. Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	case os.IsNotExist(err):
		// Defaults + env only.
	default:
		return nil, errors.Wrap(err, "failed to read config file")
	}

	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("BRIDGE_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("BRIDGE_WS_PATH"); v != "" {
		c.Server.WSPath = v
	}
	if v := os.Getenv("BRIDGE_SOURCE"); v != "" {
		c.Source = v
	}
	if v := os.Getenv("BRIDGE_DEMO_FEED"); v != "" {
		c.Demo.Enabled = parseBool(v)
	}
	if v := os.Getenv("BRIDGE_DEMO_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Demo.IntervalMS = n
		}
	}
	if v := os.Getenv("BRIDGE_BLOCKED_ENDPOINT"); v != "" {
		c.Blocked.EndpointEnabled = parseBool(v)
	}
}

func parseBool(v string) bool {
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}

// DemoInterval returns the demo feed tick interval.
func (c *Config) DemoInterval() time.Duration {
	return time.Duration(c.Demo.IntervalMS) * time.Millisecond
}

// TrackRecords decodes the catalog entries into track records.
func (c *Config) TrackRecords() ([]track.Record, error) {
	records := make([]track.Record, 0, len(c.Catalog))
	for i, entry := range c.Catalog {
		var r track.Record
		if err := decodeEntry(entry, &r); err != nil {
			return nil, errors.Wrapf(err, "catalog entry %d", i)
		}
		if r.RoonTrackID == "" {
			return nil, errors.Newf("catalog entry %d: roon_track_id is required", i)
		}
		records = append(records, r)
	}
	return records, nil
}

// BlockedItems decodes the configured blocked entries, dropping those
// missing type or id.
func (c *Config) BlockedItems() ([]blocked.Item, error) {
	items := make([]blocked.Item, 0, len(c.Blocked.Items))
	for i, entry := range c.Blocked.Items {
		var item blocked.Item
		if err := decodeEntry(entry, &item); err != nil {
			return nil, errors.Wrapf(err, "blocked entry %d", i)
		}
		items = append(items, item)
	}
	return blocked.NormalizeList(items), nil
}

// decodeEntry decodes a free-form YAML map into a typed struct. Weak
// typing tolerates YAML treating numeric IDs as ints.
func decodeEntry(entry map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errors.Wrap(err, "failed to build decoder")
	}
	return decoder.Decode(entry)
}
