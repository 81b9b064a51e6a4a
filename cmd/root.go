package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/bnema/waycursor/internal/config"
	"github.com/bnema/waycursor/internal/logger"
)

var (
	configPath string
	logLevel   string

	// logFile is closed by Execute once the command returns.
	logFile io.Closer

	rootCmd = &cobra.Command{
		Use:   "waycursor",
		Short: "waycursor - seat input core for Wayland compositors",
		Long: `waycursor turns the events of mice, touchpads, touch screens and drawing
tablets into one logical cursor and one normalized event stream.

It reads Linux evdev devices directly, applies pointer constraints and
touch/tablet pointer emulation, and can replay scripted scenarios without
any hardware.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

// Execute runs the root command
func Execute() error {
	defer func() {
		if logFile != nil {
			logFile.Close()
		}
	}()
	rootCmd.Version = Version
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ~/.config/waycursor/waycursor.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

func initConfig(cmd *cobra.Command, args []string) error {
	if configPath != "" {
		config.SetConfigPath(configPath)
	}
	if err := config.Init(); err != nil {
		return err
	}

	cfg := config.Get()
	switch {
	case logLevel != "":
		logger.SetLevelFromString(logLevel)
	case cfg.Logging.LogLevel != "":
		logger.SetLevelFromString(cfg.Logging.LogLevel)
	}

	if cfg.Logging.FileLogging {
		path := cfg.Logging.LogFile
		if path == "" {
			path = "/tmp/waycursor.log"
		}
		f, err := logger.OpenLogFile(path)
		if err != nil {
			return fmt.Errorf("failed to enable file logging: %w", err)
		}
		logFile = f
	}
	return nil
}
