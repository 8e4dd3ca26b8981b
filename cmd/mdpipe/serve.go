package main

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/lucasew/mdpipe/internal/server"
	"github.com/lucasew/mdpipe/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the renderer over HTTP",
	Long: `Starts an HTTP server with the following endpoints:

  POST /render   raw Markdown body, or {"markdown": "..."} as JSON
  GET  /ws       WebSocket live preview, one document per text frame
  GET  /health   liveness probe
  GET  /version  build version`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("http-addr", ":8080", "address to listen on")
	serveCmd.Flags().Int64("max-body-bytes", 1<<20, "largest accepted document in bytes")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	renderer, err := newRenderer(cfg.Render, logger)
	if err != nil {
		return err
	}

	l, err := net.Listen("tcp", cfg.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Server.HTTPAddr, err)
	}

	logger.Info("http server listening",
		"addr", l.Addr().String(),
		"version", version.Get(),
		"engine", cfg.Render.Engine,
		"sanitize", cfg.Render.Sanitize)

	if err := server.NewHttpServer(renderer, cfg.Server.MaxBodyBytes, logger).Serve(cmd.Context(), l); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	logger.Info("http server stopped")
	return nil
}
