package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Game    GameConfig    `mapstructure:"game"`
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Render  RenderConfig  `mapstructure:"render"`
	Demo    DemoConfig    `mapstructure:"demo"`
}

// GameConfig holds game mechanics configuration
type GameConfig struct {
	// MapFile replaces the built-in classic board when set
	MapFile       string `mapstructure:"map_file"`
	FillMinTroops int    `mapstructure:"fill_min_troops"`
	FillMaxTroops int    `mapstructure:"fill_max_troops"`
	// DiceSeed fixes the random source; zero seeds from the clock
	DiceSeed int64 `mapstructure:"dice_seed"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	LogLevel  string           `mapstructure:"log_level"`
	LogFormat string           `mapstructure:"log_format"`
	GRPC      GRPCServerConfig `mapstructure:"grpc"`
	HTTP      HTTPServerConfig `mapstructure:"http"`
	EventLog  EventLogConfig   `mapstructure:"event_log"`
}

// EventLogConfig controls the subscriber that writes game events to the log
type EventLogConfig struct {
	Level string `mapstructure:"level"`
	// Types limits logging to these event types; empty logs every type
	Types []string `mapstructure:"types"`
	// DevMode attaches the full event JSON to each line
	DevMode bool `mapstructure:"dev_mode"`
}

// GRPCServerConfig holds gRPC server configuration
type GRPCServerConfig struct {
	Host                  string `mapstructure:"host"`
	Port                  int    `mapstructure:"port"`
	EnableReflection      bool   `mapstructure:"enable_reflection"`
	GracefulShutdownDelay int    `mapstructure:"graceful_shutdown_delay"`
}

// HTTPServerConfig holds the web front end configuration
type HTTPServerConfig struct {
	// Addr is empty to disable the HTTP server
	Addr string `mapstructure:"addr"`
}

// StorageConfig selects and configures the game store
type StorageConfig struct {
	Driver      string `mapstructure:"driver"`
	Dir         string `mapstructure:"dir"`
	PostgresURL string `mapstructure:"postgres_url"`
	MaxConns    int    `mapstructure:"max_conns"`
}

// RenderConfig holds map image settings
type RenderConfig struct {
	Width      int    `mapstructure:"width"`
	Height     int    `mapstructure:"height"`
	Background [3]int `mapstructure:"background"`
	Neutral    [3]int `mapstructure:"neutral"`
}

// DemoConfig holds settings for the self-playing demo
type DemoConfig struct {
	Players  int `mapstructure:"players"`
	MaxTurns int `mapstructure:"max_turns"`
}

var (
	// Global config instance. Reloads swap the pointer, so a *Config handed
	// out by Get is never written again.
	cfg atomic.Pointer[Config]
	v   *viper.Viper
	// mu serialises everything that reads viper into a new Config
	mu sync.Mutex
)

var validDrivers = []string{"memory", "file", "postgres"}

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Game defaults
	v.SetDefault("game.map_file", "")
	v.SetDefault("game.fill_min_troops", 1)
	v.SetDefault("game.fill_max_troops", 10)
	v.SetDefault("game.dice_seed", 0)

	// Server defaults
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "console")
	v.SetDefault("server.grpc.host", "0.0.0.0")
	v.SetDefault("server.grpc.port", 50051)
	v.SetDefault("server.grpc.enable_reflection", false)
	v.SetDefault("server.grpc.graceful_shutdown_delay", 5)
	v.SetDefault("server.http.addr", ":8080")
	v.SetDefault("server.event_log.level", "debug")
	v.SetDefault("server.event_log.types", []string{})
	v.SetDefault("server.event_log.dev_mode", false)

	// Storage defaults
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.dir", "data")
	v.SetDefault("storage.postgres_url", "")
	v.SetDefault("storage.max_conns", 4)

	// Render defaults
	v.SetDefault("render.width", 800)
	v.SetDefault("render.height", 520)
	v.SetDefault("render.background", []int{20, 40, 70})
	v.SetDefault("render.neutral", []int{120, 120, 120})

	// Demo defaults
	v.SetDefault("demo.players", 3)
	v.SetDefault("demo.max_turns", 300)
}

// Init initializes the configuration
func Init(configPath string) error {
	mu.Lock()
	defer mu.Unlock()

	v = viper.New()

	// Set defaults before loading any config
	setViperDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/conquest")
	}

	// Set environment variable prefix
	v.SetEnvPrefix("CONQUEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath == "" && !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; use defaults
	}

	// Unmarshal into config struct
	next := &Config{}
	if err := v.Unmarshal(next); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	// Validate configuration
	if err := Validate(next); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	cfg.Store(next)
	return nil
}

// Get returns the global config instance
func Get() *Config {
	if c := cfg.Load(); c != nil {
		return c
	}
	// Initialize with defaults if not already initialized
	if err := Init(""); err != nil {
		panic("failed to initialize config with defaults: " + err.Error())
	}
	return cfg.Load()
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// LoadEnvironmentConfig loads environment-specific config overlay
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	envFile := fmt.Sprintf("config.%s.yaml", env)

	// Try to find environment-specific config
	v.SetConfigFile(envFile)
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error merging environment config %s: %w", envFile, err)
		}
	}

	// Re-unmarshal with merged config
	next := &Config{}
	if err := v.Unmarshal(next); err != nil {
		return fmt.Errorf("unable to decode merged config into struct: %w", err)
	}
	if err := Validate(next); err != nil {
		return err
	}
	cfg.Store(next)
	return nil
}

// Set allows runtime config updates. The caller validates the result.
func Set(key string, value interface{}) {
	mu.Lock()
	defer mu.Unlock()

	v.Set(key, value)
	next := &Config{}
	if err := v.Unmarshal(next); err != nil {
		return
	}
	cfg.Store(next)
}

// GetString gets a string value from config
func GetString(key string) string {
	return v.GetString(key)
}

// GetInt gets an int value from config
func GetInt(key string) int {
	return v.GetInt(key)
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of config file
func WatchConfig(onChange func(*Config)) {
	watched := v
	watched.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		mu.Lock()
		next := &Config{}
		err := watched.Unmarshal(next)
		if err == nil {
			err = Validate(next)
		}
		if err != nil {
			mu.Unlock()
			return
		}
		cfg.Store(next)
		mu.Unlock()
		if onChange != nil {
			onChange(next)
		}
	})
	watched.WatchConfig()
}

// Validate validates the configuration values
func Validate(c *Config) error {
	// Validate game mechanics
	if c.Game.FillMinTroops < 1 {
		return fmt.Errorf("game.fill_min_troops must be at least 1")
	}
	if c.Game.FillMaxTroops < c.Game.FillMinTroops {
		return fmt.Errorf("game.fill_max_troops must not be below game.fill_min_troops")
	}

	// Validate server configuration
	if c.Server.GRPC.Port <= 0 || c.Server.GRPC.Port > 65535 {
		return fmt.Errorf("server.grpc.port must be between 1 and 65535")
	}
	if c.Server.GRPC.GracefulShutdownDelay < 0 {
		return fmt.Errorf("server.grpc.graceful_shutdown_delay must be non-negative")
	}
	switch c.Server.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("server.log_format must be console or json")
	}
	switch c.Server.EventLog.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("server.event_log.level must be debug, info, warn or error")
	}

	// Validate storage configuration
	valid := false
	for _, d := range validDrivers {
		if c.Storage.Driver == d {
			valid = true
		}
	}
	if !valid {
		return fmt.Errorf("storage.driver must be one of %s", strings.Join(validDrivers, ", "))
	}
	if c.Storage.Driver == "file" && c.Storage.Dir == "" {
		return fmt.Errorf("storage.dir is required for the file driver")
	}
	if c.Storage.Driver == "postgres" && c.Storage.PostgresURL == "" {
		return fmt.Errorf("storage.postgres_url is required for the postgres driver")
	}
	if c.Storage.MaxConns < 1 {
		return fmt.Errorf("storage.max_conns must be positive")
	}

	// Validate render settings
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		return fmt.Errorf("render dimensions must be positive")
	}
	validateRGB := func(rgb [3]int, name string) error {
		for i, v := range rgb {
			if v < 0 || v > 255 {
				return fmt.Errorf("%s[%d] must be between 0 and 255", name, i)
			}
		}
		return nil
	}
	if err := validateRGB(c.Render.Background, "render.background"); err != nil {
		return err
	}
	if err := validateRGB(c.Render.Neutral, "render.neutral"); err != nil {
		return err
	}

	if c.Demo.Players < 2 || c.Demo.Players > 6 {
		return fmt.Errorf("demo.players must be between 2 and 6")
	}
	if c.Demo.MaxTurns <= 0 {
		return fmt.Errorf("demo.max_turns must be positive")
	}

	return nil
}
