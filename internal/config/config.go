package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Render RenderConfig `yaml:"render"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	HTTPAddr     string `yaml:"http_addr"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

type RenderConfig struct {
	// Engine is "lite" or "gfm".
	Engine   string `yaml:"engine"`
	Sanitize bool   `yaml:"sanitize"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:     ":8080",
			MaxBodyBytes: 1 << 20,
		},
		Render: RenderConfig{
			Engine:   "lite",
			Sanitize: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML config file on top of Default and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.HTTPAddr == "" {
		errs = append(errs, errors.New("server.http_addr must not be empty"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes must be positive, got %d", c.Server.MaxBodyBytes))
	}

	switch c.Render.Engine {
	case "lite", "gfm":
	default:
		errs = append(errs, fmt.Errorf("render.engine must be lite or gfm, got %q", c.Render.Engine))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level))
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}
