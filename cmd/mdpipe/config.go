package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/lucasew/mdpipe/internal/config"
	"github.com/lucasew/mdpipe/internal/markdown"
)

// loadConfig starts from the config file, when one was found, and lets
// environment variables and flags override it. It also replaces the
// process logger with one built from the resulting log section.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if path := viper.ConfigFileUsed(); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if viper.IsSet("server.http_addr") {
		cfg.Server.HTTPAddr = viper.GetString("server.http_addr")
	}
	if viper.IsSet("server.max_body_bytes") {
		cfg.Server.MaxBodyBytes = viper.GetInt64("server.max_body_bytes")
	}
	if viper.IsSet("render.engine") {
		cfg.Render.Engine = viper.GetString("render.engine")
	}
	if viper.IsSet("render.sanitize") {
		cfg.Render.Sanitize = viper.GetBool("render.sanitize")
	}
	if noSanitize {
		cfg.Render.Sanitize = false
	}
	if viper.IsSet("log.level") {
		cfg.Log.Level = viper.GetString("log.level")
	}
	if viper.IsSet("log.format") {
		cfg.Log.Format = viper.GetString("log.format")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger = newLogger(cfg.Log)
	slog.SetDefault(logger)
	return cfg, nil
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func newRenderer(cfg config.RenderConfig, logger *slog.Logger) (*markdown.Renderer, error) {
	engine, err := markdown.EngineByName(cfg.Engine)
	if err != nil {
		return nil, err
	}

	opts := []markdown.Option{
		markdown.WithEngine(engine),
		markdown.WithLogger(logger),
	}
	if cfg.Sanitize {
		opts = append(opts, markdown.WithSanitizer(markdown.NewPolicy()))
	}
	return markdown.New(opts...), nil
}
