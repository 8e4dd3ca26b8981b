package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile    string
	noSanitize bool
	logger     = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

var rootCmd = &cobra.Command{
	Use:          "mdpipe",
	Short:        "Converts lightweight Markdown into sanitized HTML",
	SilenceUsage: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		logger.Error("execution failed", "error", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./mdpipe.yaml)")
	rootCmd.PersistentFlags().String("engine", "lite", "markdown engine (lite or gfm)")
	rootCmd.PersistentFlags().BoolVar(&noSanitize, "no-sanitize", false, "skip the HTML sanitizer")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
}

// bindFlags runs from initConfig, after every command has registered its
// flags.
func bindFlags() {
	_ = viper.BindPFlag("render.engine", rootCmd.PersistentFlags().Lookup("engine"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("server.http_addr", serveCmd.Flags().Lookup("http-addr"))
	_ = viper.BindPFlag("server.max_body_bytes", serveCmd.Flags().Lookup("max-body-bytes"))
}

func initConfig() {
	bindFlags()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("mdpipe")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("MDPIPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	envVars := []string{
		"server.http_addr",
		"server.max_body_bytes",
		"render.engine",
		"render.sanitize",
		"log.level",
		"log.format",
	}
	for _, key := range envVars {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err == nil {
		logger.Info("using config file", "file", viper.ConfigFileUsed())
	}
}
