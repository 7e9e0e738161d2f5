package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetGlobals() {
	cfg.Store(nil)
	v = nil
}

func TestInit(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")

	configContent := `
game:
  fill_min_troops: 2
  fill_max_troops: 4
  dice_seed: 99
server:
  log_level: debug
  grpc:
    port: 8081
storage:
  driver: file
  dir: /var/lib/conquest
`
	require.NoError(t, os.WriteFile(configFile, []byte(configContent), 0644))

	resetGlobals()
	require.NoError(t, Init(configFile))

	c := Get()
	assert.Equal(t, 2, c.Game.FillMinTroops)
	assert.Equal(t, 4, c.Game.FillMaxTroops)
	assert.Equal(t, int64(99), c.Game.DiceSeed)
	assert.Equal(t, "debug", c.Server.LogLevel)
	assert.Equal(t, 8081, c.Server.GRPC.Port)
	assert.Equal(t, "file", c.Storage.Driver)
	assert.Equal(t, "/var/lib/conquest", c.Storage.Dir)
	assert.Equal(t, configFile, ConfigFilePath())
}

func TestInitWithDefaults(t *testing.T) {
	resetGlobals()
	require.NoError(t, Init("/non/existent/path/config.yaml"))

	c := Get()
	assert.Equal(t, 1, c.Game.FillMinTroops)
	assert.Equal(t, 10, c.Game.FillMaxTroops)
	assert.Equal(t, "memory", c.Storage.Driver)
	assert.Equal(t, 50051, c.Server.GRPC.Port)
	assert.Equal(t, ":8080", c.Server.HTTP.Addr)
	assert.Equal(t, [3]int{20, 40, 70}, c.Render.Background)
	assert.Equal(t, "debug", c.Server.EventLog.Level)
	assert.Empty(t, c.Server.EventLog.Types)
	assert.False(t, c.Server.EventLog.DevMode)
}

func TestInit_EventLog(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(`
server:
  event_log:
    level: info
    types: [territory.conquered, player.won]
    dev_mode: true
`), 0644))

	resetGlobals()
	require.NoError(t, Init(configFile))

	c := Get()
	assert.Equal(t, "info", c.Server.EventLog.Level)
	assert.Equal(t, []string{"territory.conquered", "player.won"}, c.Server.EventLog.Types)
	assert.True(t, c.Server.EventLog.DevMode)
}

func TestEnvironmentVariables(t *testing.T) {
	resetGlobals()
	t.Setenv("CONQUEST_GAME_FILL_MAX_TROOPS", "7")
	t.Setenv("CONQUEST_SERVER_GRPC_PORT", "9090")
	t.Setenv("CONQUEST_STORAGE_DRIVER", "postgres")
	t.Setenv("CONQUEST_STORAGE_POSTGRES_URL", "postgres://localhost/conquest")

	require.NoError(t, Init(""))

	c := Get()
	assert.Equal(t, 7, c.Game.FillMaxTroops)
	assert.Equal(t, 9090, c.Server.GRPC.Port)
	assert.Equal(t, "postgres", c.Storage.Driver)
	assert.Equal(t, "postgres://localhost/conquest", c.Storage.PostgresURL)
}

func TestSet(t *testing.T) {
	resetGlobals()
	require.NoError(t, Init(""))

	Set("game.fill_max_troops", 12)
	Set("render.width", 1280)

	c := Get()
	assert.Equal(t, 12, c.Game.FillMaxTroops)
	assert.Equal(t, 1280, c.Render.Width)
	assert.Equal(t, 1280, GetInt("render.width"))
	assert.Equal(t, "memory", GetString("storage.driver"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"zero fill", func(c *Config) { c.Game.FillMinTroops = 0 }, "game.fill_min_troops"},
		{"inverted fill", func(c *Config) { c.Game.FillMaxTroops = 0 }, "game.fill_max_troops"},
		{"bad port", func(c *Config) { c.Server.GRPC.Port = 70000 }, "server.grpc.port"},
		{"bad log format", func(c *Config) { c.Server.LogFormat = "xml" }, "server.log_format"},
		{"bad event log level", func(c *Config) { c.Server.EventLog.Level = "trace" }, "server.event_log.level"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mongo" }, "storage.driver"},
		{"file without dir", func(c *Config) { c.Storage.Driver = "file"; c.Storage.Dir = "" }, "storage.dir"},
		{"postgres without url", func(c *Config) { c.Storage.Driver = "postgres" }, "storage.postgres_url"},
		{"bad colour", func(c *Config) { c.Render.Neutral = [3]int{0, 300, 0} }, "render.neutral[1]"},
		{"one demo player", func(c *Config) { c.Demo.Players = 1 }, "demo.players"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetGlobals()
			require.NoError(t, Init(""))
			c := *Get()
			tt.mutate(&c)
			err := Validate(&c)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInitRejectsInvalidFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("storage:\n  driver: tape\n"), 0644))

	resetGlobals()
	err := Init(configFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.driver")
}

func TestLoadEnvironmentConfig(t *testing.T) {
	tmpDir := t.TempDir()

	baseConfig := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(baseConfig, []byte(`
server:
  log_level: info
  grpc:
    port: 50051
`), 0644))

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.prod.yaml"), []byte(`
server:
  log_level: warn
  log_format: json
  grpc:
    port: 8080
`), 0644))

	oldWd, _ := os.Getwd()
	_ = os.Chdir(tmpDir)
	defer func() { _ = os.Chdir(oldWd) }()

	resetGlobals()
	require.NoError(t, Init(baseConfig))
	require.NoError(t, LoadEnvironmentConfig("prod"))

	c := Get()
	assert.Equal(t, "warn", c.Server.LogLevel)
	assert.Equal(t, "json", c.Server.LogFormat)
	assert.Equal(t, 8080, c.Server.GRPC.Port)
}

func TestWatchConfig_ReloadsOnWrite(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("server:\n  log_level: info\n"), 0644))

	resetGlobals()
	require.NoError(t, Init(configFile))

	changed := make(chan string, 8)
	WatchConfig(func(c *Config) { changed <- c.Server.LogLevel })

	require.NoError(t, os.WriteFile(configFile, []byte("server:\n  log_level: debug\n"), 0644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case level := <-changed:
			if level == "debug" {
				assert.Equal(t, "debug", Get().Server.LogLevel)
				return
			}
		case <-deadline:
			t.Fatal("config change was not observed")
		}
	}
}

func TestWatchConfig_ReloadLeavesEarlierSnapshots(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte("server:\n  log_level: info\n"), 0644))

	resetGlobals()
	require.NoError(t, Init(configFile))
	before := Get()

	changed := make(chan string, 8)
	WatchConfig(func(c *Config) { changed <- c.Server.LogLevel })

	// Readers keep going while the file is rewritten underneath them.
	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					_ = Get().Server.LogLevel
				}
			}
		}()
	}
	defer func() {
		close(stop)
		wg.Wait()
	}()

	require.NoError(t, os.WriteFile(configFile, []byte("server:\n  log_level: warn\n"), 0644))

	deadline := time.After(5 * time.Second)
	for {
		select {
		case level := <-changed:
			if level == "warn" {
				assert.Equal(t, "warn", Get().Server.LogLevel)
				assert.Equal(t, "info", before.Server.LogLevel, "a reload does not write through old pointers")
				assert.NotSame(t, before, Get())
				return
			}
		case <-deadline:
			t.Fatal("config change was not observed")
		}
	}
}
