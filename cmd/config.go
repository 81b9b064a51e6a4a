package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bnema/waycursor/internal/config"
	"github.com/bnema/waycursor/internal/logger"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage waycursor configuration",
	Long:  `Manage waycursor configuration including seat behaviour, outputs and devices.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()

		logger.Info("Current Configuration:")
		logger.Infof("Config file: %s\n", config.GetConfigPath())

		logger.Info("[Seat]")
		logger.Infof("  Hide Cursor Timeout: %d ms", cfg.Seat.HideCursorTimeout)
		logger.Infof("  Allow Constrain: %v", cfg.Seat.AllowConstrain)
		logger.Infof("  Touch Handoff: %s", cfg.Seat.TouchHandoff)
		logger.Infof("  Max Touch Points: %d", cfg.Seat.MaxTouchPoints)
		logger.Infof("  Default Cursor: %s", cfg.Seat.DefaultCursor)

		logger.Info("\n[Devices]")
		logger.Infof("  Input Dir: %s", cfg.Devices.InputDir)
		logger.Infof("  Hotplug: %v", cfg.Devices.Hotplug)
		logger.Infof("  Grab: %v", cfg.Devices.Grab)
		if len(cfg.Devices.Paths) == 0 {
			logger.Info("  Paths: autodetect")
		} else {
			logger.Info("  Paths:")
			for _, p := range cfg.Devices.Paths {
				logger.Infof("    - %s", p)
			}
		}

		if len(cfg.Outputs) > 0 {
			logger.Info("\n[Outputs]")
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "  Name\tPosition\tSize\tEnabled")
			for _, o := range cfg.Outputs {
				fmt.Fprintf(w, "  %s\t%d,%d\t%dx%d\t%v\n", o.Name, o.X, o.Y, o.Width, o.Height, !o.Disabled)
			}
			if err := w.Flush(); err != nil {
				logger.Errorf("Failed to flush writer: %v", err)
			}
		}

		if len(cfg.Inputs) > 0 {
			logger.Info("\n[Inputs]")
			for _, in := range cfg.Inputs {
				logger.Infof("  %s", in.Identifier)
				if in.MapToOutput != "" {
					logger.Infof("    Map To Output: %s", in.MapToOutput)
				}
				if r := in.MapFromRegion; r != nil {
					unit := ""
					if r.MM {
						unit = " mm"
					}
					logger.Infof("    Map From Region: %g,%g %g,%g%s", r.X1, r.Y1, r.X2, r.Y2, unit)
				}
				for tool, mode := range in.ToolModes {
					logger.Infof("    Tool Mode: %s %s", tool, mode)
				}
			}
		}

		logger.Info("\n[Logging]")
		logger.Infof("  File Logging: %v", cfg.Logging.FileLogging)
		if cfg.Logging.LogFile != "" {
			logger.Infof("  Log File: %s", cfg.Logging.LogFile)
		}
		if cfg.Logging.LogLevel != "" {
			logger.Infof("  Log Level: %s", cfg.Logging.LogLevel)
		}
		return nil
	},
}

var configSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save current configuration to file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Save(); err != nil {
			return err
		}
		logger.Infof("Configuration saved to: %s", config.GetConfigPath())
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file with defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := config.GetConfigPath()
		if _, err := os.Stat(configPath); err == nil {
			logger.Infof("Configuration file already exists at: %s", configPath)

			force, _ := cmd.Flags().GetBool("force")
			if !force {
				logger.Info("Use --force to overwrite")
				return nil
			}
		}

		if err := config.Save(); err != nil {
			return err
		}

		logger.Infof("Configuration initialized at: %s", configPath)
		logger.Info("\nYou can now:")
		logger.Info("  - Edit the configuration file directly")
		logger.Info("  - Use 'waycursor setup' to choose input devices")
		logger.Info("  - Use 'waycursor config show' to view current settings")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSaveCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().Bool("force", false, "Force overwrite existing configuration")

	rootCmd.AddCommand(configCmd)
}
