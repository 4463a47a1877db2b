package main

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "3s" or "500ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Config is the optional nadctl configuration file. Flags override
// whatever the file sets.
type Config struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	QueryTimeout      Duration `yaml:"query_timeout"`
	ReconnectInterval Duration `yaml:"reconnect_interval"`

	Log LogConfig `yaml:"log"`
}

// LogConfig selects log verbosity and output format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func defaultConfig() *Config {
	return &Config{
		Port:              0, // library default
		QueryTimeout:      0,
		ReconnectInterval: 0,
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// loadConfig reads a YAML config file over the defaults. An empty path
// returns the defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
