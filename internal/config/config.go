// Package config handles configuration management using Viper
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/bnema/waycursor/internal/device"
	"github.com/bnema/waycursor/internal/geometry"
	"github.com/bnema/waycursor/internal/seat"
)

// Config represents the application configuration
type Config struct {
	// Seat behaviour
	Seat SeatConfig `mapstructure:"seat"`

	// Per-device settings, matched by identifier
	Inputs []InputConfig `mapstructure:"inputs"`

	// Output layout used when no compositor provides one
	Outputs []OutputConfig `mapstructure:"outputs"`

	// Device discovery
	Devices DevicesConfig `mapstructure:"devices"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// SeatConfig contains seat-wide settings
type SeatConfig struct {
	HideCursorTimeout int    `mapstructure:"hide_cursor_timeout"` // Milliseconds, 0 disables auto-hide
	AllowConstrain    bool   `mapstructure:"allow_constrain"`
	TouchHandoff      string `mapstructure:"touch_handoff"` // "touch_down" or "any_activity"
	MaxTouchPoints    int    `mapstructure:"max_touch_points"`
	DefaultCursor     string `mapstructure:"default_cursor"`
}

// InputConfig contains the settings of one device, or of every device when
// Identifier is "*"
type InputConfig struct {
	Identifier    string            `mapstructure:"identifier"`      // "vendor:product:name" or "*"
	MapToOutput   string            `mapstructure:"map_to_output"`   // Restrict absolute devices to one output
	MapFromRegion *RegionConfig     `mapstructure:"map_from_region"` // Calibration sub-region
	ToolModes     map[string]string `mapstructure:"tool_modes"`      // Tool type -> "absolute" or "relative"
}

// RegionConfig is a calibration region in normalized units, or millimetres
// when MM is set
type RegionConfig struct {
	X1 float64 `mapstructure:"x1"`
	Y1 float64 `mapstructure:"y1"`
	X2 float64 `mapstructure:"x2"`
	Y2 float64 `mapstructure:"y2"`
	MM bool    `mapstructure:"mm"`
}

// OutputConfig places one output in the layout
type OutputConfig struct {
	Name     string `mapstructure:"name"`
	X        int    `mapstructure:"x"`
	Y        int    `mapstructure:"y"`
	Width    int    `mapstructure:"width"`
	Height   int    `mapstructure:"height"`
	Disabled bool   `mapstructure:"disabled"`
}

// DevicesConfig controls which input devices are opened
type DevicesConfig struct {
	InputDir string   `mapstructure:"input_dir"`
	Paths    []string `mapstructure:"paths"`   // Explicit devices, empty means autodetect
	Hotplug  bool     `mapstructure:"hotplug"` // Watch input_dir for new devices
	Grab     bool     `mapstructure:"grab"`    // Take exclusive access to opened devices
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	FileLogging bool   `mapstructure:"file_logging"` // Enable/disable file logging
	LogFile     string `mapstructure:"log_file"`     // Empty means the default log file
	LogLevel    string `mapstructure:"log_level"`    // Override LOG_LEVEL env var
}

var (
	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Seat: SeatConfig{
			HideCursorTimeout: 0,
			AllowConstrain:    true,
			TouchHandoff:      "touch_down",
			MaxTouchPoints:    10,
			DefaultCursor:     "default",
		},
		Inputs: []InputConfig{},
		Outputs: []OutputConfig{
			{Name: "HEADLESS-1", Width: 1920, Height: 1080},
		},
		Devices: DevicesConfig{
			InputDir: "/dev/input",
			Paths:    []string{},
			Hotplug:  true,
			Grab:     false,
		},
		Logging: LoggingConfig{
			FileLogging: false,
			LogFile:     "",
			LogLevel:    "", // Empty means use LOG_LEVEL env var
		},
	}

	// Global config instance
	cfg *Config

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName("waycursor")
	viper.SetConfigType("toml")

	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		viper.AddConfigPath("/etc/waycursor")

		// If running with sudo, try the real user's config
		if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
			viper.AddConfigPath(fmt.Sprintf("/home/%s/.config/waycursor", sudoUser))
		} else if home := os.Getenv("HOME"); home != "" && home != "/root" {
			viper.AddConfigPath(filepath.Join(home, ".config", "waycursor"))
		}

		viper.AddConfigPath(".")
	}

	// Set defaults - need to set individual fields for proper merging
	viper.SetDefault("seat.hide_cursor_timeout", DefaultConfig.Seat.HideCursorTimeout)
	viper.SetDefault("seat.allow_constrain", DefaultConfig.Seat.AllowConstrain)
	viper.SetDefault("seat.touch_handoff", DefaultConfig.Seat.TouchHandoff)
	viper.SetDefault("seat.max_touch_points", DefaultConfig.Seat.MaxTouchPoints)
	viper.SetDefault("seat.default_cursor", DefaultConfig.Seat.DefaultCursor)

	viper.SetDefault("inputs", DefaultConfig.Inputs)
	viper.SetDefault("outputs", DefaultConfig.Outputs)

	viper.SetDefault("devices.input_dir", DefaultConfig.Devices.InputDir)
	viper.SetDefault("devices.paths", DefaultConfig.Devices.Paths)
	viper.SetDefault("devices.hotplug", DefaultConfig.Devices.Hotplug)
	viper.SetDefault("devices.grab", DefaultConfig.Devices.Grab)

	viper.SetDefault("logging.file_logging", DefaultConfig.Logging.FileLogging)
	viper.SetDefault("logging.log_file", DefaultConfig.Logging.LogFile)
	viper.SetDefault("logging.log_level", DefaultConfig.Logging.LogLevel)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults
	}

	c := &Config{}
	if err := viper.Unmarshal(c); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	cfg = c

	return nil
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		// Return defaults if not initialized
		return &DefaultConfig
	}
	return cfg
}

// Set sets the current configuration (for testing)
func Set(c *Config) {
	cfg = c
}

// Save saves the current configuration to file
func Save() error {
	configPath := GetConfigPath()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		if os.IsPermission(err) && strings.Contains(configPath, "/etc/") {
			return fmt.Errorf("failed to create config directory %s: permission denied. Try running with sudo", dir)
		}
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	if configPathOverride != "" {
		return configPathOverride
	}

	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}

	// Device access usually needs root, so root gets the system config
	if os.Getuid() == 0 || os.Getenv("SUDO_USER") != "" {
		return "/etc/waycursor/waycursor.toml"
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "/etc/waycursor/waycursor.toml"
	}

	return filepath.Join(home, ".config", "waycursor", "waycursor.toml")
}

// SetDevicePaths stores the devices chosen by setup
func SetDevicePaths(paths []string) error {
	c := Get()
	c.Devices.Paths = paths
	viper.Set("devices.paths", paths)
	return Save()
}

// Validate checks the values viper cannot type-check
func (c *Config) Validate() error {
	if _, err := seat.ParseTouchHandoff(c.Seat.TouchHandoff); err != nil {
		return err
	}
	if c.Seat.HideCursorTimeout < 0 {
		return fmt.Errorf("hide_cursor_timeout must not be negative, got %d", c.Seat.HideCursorTimeout)
	}
	for _, in := range c.Inputs {
		if in.Identifier == "" {
			return fmt.Errorf("input entry without identifier")
		}
		for tool, mode := range in.ToolModes {
			if _, ok := device.ParseToolType(tool); !ok {
				return fmt.Errorf("input %s: unknown tool type %q", in.Identifier, tool)
			}
			if _, err := seat.ParseToolMode(mode); err != nil {
				return fmt.Errorf("input %s: %w", in.Identifier, err)
			}
		}
		if r := in.MapFromRegion; r != nil && (r.X1 == r.X2 || r.Y1 == r.Y2) {
			return fmt.Errorf("input %s: map_from_region (%g,%g)-(%g,%g) is empty", in.Identifier, r.X1, r.Y1, r.X2, r.Y2)
		}
	}
	for _, out := range c.Outputs {
		if out.Name == "" {
			return fmt.Errorf("output entry without name")
		}
	}
	return nil
}

// Input returns the settings for a device identifier, falling back to the
// "*" entry
func (c *Config) Input(identifier string) (*InputConfig, bool) {
	var fallback *InputConfig
	for i := range c.Inputs {
		in := &c.Inputs[i]
		if in.Identifier == identifier {
			return in, true
		}
		if in.Identifier == "*" && fallback == nil {
			fallback = in
		}
	}
	return fallback, fallback != nil
}

// SeatInputConfig converts the settings of dev for the seat. It returns nil
// when no entry applies.
func (c *Config) SeatInputConfig(dev *device.Device) *seat.InputConfig {
	in, ok := c.Input(dev.Identifier())
	if !ok {
		return nil
	}

	out := &seat.InputConfig{MapToOutput: in.MapToOutput}
	if r := in.MapFromRegion; r != nil {
		out.MapFromRegion = &geometry.CalibrationRegion{X1: r.X1, Y1: r.Y1, X2: r.X2, Y2: r.Y2, MM: r.MM}
	}
	if len(in.ToolModes) > 0 {
		out.ToolModes = make(map[device.ToolType]seat.ToolMode, len(in.ToolModes))
		for name, value := range in.ToolModes {
			tool, ok := device.ParseToolType(name)
			if !ok {
				continue
			}
			mode, err := seat.ParseToolMode(value)
			if err != nil {
				continue
			}
			out.ToolModes[tool] = mode
		}
	}
	return out
}

// Layout builds the output layout
func (c *Config) Layout() *geometry.Layout {
	layout := geometry.NewLayout()
	for _, o := range c.Outputs {
		layout.Add(&geometry.Output{
			Name:    o.Name,
			Box:     geometry.Box{X: o.X, Y: o.Y, Width: o.Width, Height: o.Height},
			Enabled: !o.Disabled,
		})
	}
	return layout
}

// SeatOptions fills the configurable part of the seat options
func (c *Config) SeatOptions(opts seat.Options) seat.Options {
	handoff, _ := seat.ParseTouchHandoff(c.Seat.TouchHandoff)

	opts.HideTimeout = time.Duration(c.Seat.HideCursorTimeout) * time.Millisecond
	opts.AllowConstrain = c.Seat.AllowConstrain
	opts.TouchHandoff = handoff
	opts.MaxTouchPoints = c.Seat.MaxTouchPoints
	opts.DefaultCursor = c.Seat.DefaultCursor
	opts.InputConfig = c.SeatInputConfig
	return opts
}
