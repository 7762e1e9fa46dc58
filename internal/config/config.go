// config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/amir-mohammad-HP/cronwatch/internal/types"
)

const (
	ConfigName = "cronwatchd"
	EnvPrefix  = "CRONWATCH"
)

// Default configuration values
var defaultConfig = types.Config{
	AppName:     "cronwatch",
	Environment: "development",
	LogLevel:    "",
	Timezone:    "UTC",
	Scheduler: types.SchedulerConfig{
		Enabled:      true,
		TickInterval: 60 * time.Second,
		MaxJobs:      100,
		JobTimeout:   30 * time.Second,
	},
	Monitor: types.MonitorConfig{
		Enabled:       true,
		Endpoint:      "ws://127.0.0.1:18789",
		HealthPath:    "/health",
		PollInterval:  5 * time.Second,
		Timeout:       3 * time.Second,
		CheckOnStart:  true,
		CheckNowRate:  time.Second,
		CheckNowBurst: 3,
	},
	Executor: types.ExecutorConfig{
		Kind: "log",
	},
	Docker: types.DockerConfig{
		SocketPath: "/var/run/docker.sock",
		Shell:      "sh",
	},
	Store: types.StoreConfig{
		Driver:      "none",
		BusyTimeout: 5 * time.Second,
	},
	Shutdown: types.ShutdownConfig{
		Timeout: 30 * time.Second,
	},
	Logger: types.LoggerConfig{
		Level:           "info",
		Format:          "text",
		Output:          "stdout",
		FilePath:        "",
		MaxSize:         10,
		MaxBackups:      5,
		MaxAge:          30,
		Compress:        true,
		TimestampFormat: "2006-01-02 15:04:05.000",
		ShowCaller:      false,
		Colors:          true,
		Async:           false,
		BufferSize:      256,
	},
}

// Defaults returns a copy of the built-in configuration.
func Defaults() types.Config {
	return defaultConfig
}

// getSystemConfigPath returns the OS-specific configuration directory
func getSystemConfigPath() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		// Windows: %PROGRAMDATA%\cronwatch
		programData := os.Getenv("PROGRAMDATA")
		if programData == "" {
			programData = "C:\\ProgramData"
		}
		configDir = filepath.Join(programData, "cronwatch")

	case "darwin":
		configDir = "/Library/Application Support/cronwatch"

	case "linux", "freebsd", "openbsd", "netbsd":
		configDir = "/etc/cronwatch"

	default:
		return "", fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	return configDir, nil
}

// getConfigDirs returns the directories searched for cronwatchd.yaml, in
// order of precedence.
func getConfigDirs() ([]string, error) {
	systemConfigDir, err := getSystemConfigPath()
	if err != nil {
		return nil, err
	}

	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "cronwatch"))
	}
	dirs = append(dirs, systemConfigDir)
	return dirs, nil
}

// Loader reads the configuration with its own viper instance so a watch
// can re-read the same sources.
type Loader struct {
	v *viper.Viper
}

func NewLoader() *Loader {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Loader{v: v}
}

func setDefaults(v *viper.Viper) {
	d := defaultConfig

	v.SetDefault("app_name", d.AppName)
	v.SetDefault("environment", d.Environment)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("timezone", d.Timezone)

	v.SetDefault("scheduler.enabled", d.Scheduler.Enabled)
	v.SetDefault("scheduler.tick_interval", d.Scheduler.TickInterval)
	v.SetDefault("scheduler.max_jobs", d.Scheduler.MaxJobs)
	v.SetDefault("scheduler.job_timeout", d.Scheduler.JobTimeout)

	v.SetDefault("monitor.enabled", d.Monitor.Enabled)
	v.SetDefault("monitor.endpoint", d.Monitor.Endpoint)
	v.SetDefault("monitor.health_path", d.Monitor.HealthPath)
	v.SetDefault("monitor.poll_interval", d.Monitor.PollInterval)
	v.SetDefault("monitor.timeout", d.Monitor.Timeout)
	v.SetDefault("monitor.check_on_start", d.Monitor.CheckOnStart)
	v.SetDefault("monitor.check_now_rate", d.Monitor.CheckNowRate)
	v.SetDefault("monitor.check_now_burst", d.Monitor.CheckNowBurst)

	v.SetDefault("executor.kind", d.Executor.Kind)
	v.SetDefault("docker.socket_path", d.Docker.SocketPath)
	v.SetDefault("docker.container", d.Docker.Container)
	v.SetDefault("docker.shell", d.Docker.Shell)

	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.busy_timeout", d.Store.BusyTimeout)

	v.SetDefault("shutdown.timeout", d.Shutdown.Timeout)

	v.SetDefault("logger.level", d.Logger.Level)
	v.SetDefault("logger.format", d.Logger.Format)
	v.SetDefault("logger.output", d.Logger.Output)
	v.SetDefault("logger.file_path", d.Logger.FilePath)
	v.SetDefault("logger.max_size", d.Logger.MaxSize)
	v.SetDefault("logger.max_backups", d.Logger.MaxBackups)
	v.SetDefault("logger.max_age", d.Logger.MaxAge)
	v.SetDefault("logger.compress", d.Logger.Compress)
	v.SetDefault("logger.timestamp_format", d.Logger.TimestampFormat)
	v.SetDefault("logger.show_caller", d.Logger.ShowCaller)
	v.SetDefault("logger.colors", d.Logger.Colors)
	v.SetDefault("logger.async", d.Logger.Async)
	v.SetDefault("logger.buffer_size", d.Logger.BufferSize)
}

// Load reads path, or searches the usual locations when path is empty.
// A missing file in the search locations is not an error.
func (l *Loader) Load(path string) (*types.Config, error) {
	if path != "" {
		l.v.SetConfigFile(path)
	} else {
		l.v.SetConfigName(ConfigName)
		l.v.SetConfigType("yaml")

		dirs, err := getConfigDirs()
		if err != nil {
			return nil, fmt.Errorf("failed to get config paths: %w", err)
		}
		for _, dir := range dirs {
			l.v.AddConfigPath(dir)
		}
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return l.decode()
}

func (l *Loader) decode() (*types.Config, error) {
	var cfg types.Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ConfigFileUsed returns the location of the loaded config file, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Watch calls onChange with the re-read configuration whenever the loaded
// file changes. Invalid edits are reported through err and should be
// ignored by the caller.
func (l *Loader) Watch(onChange func(cfg *types.Config, err error)) {
	if l.v.ConfigFileUsed() == "" {
		return
	}
	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(l.decode())
	})
	l.v.WatchConfig()
}

// LogLevel returns log_level when set, otherwise logger.level.
func LogLevel(cfg *types.Config) string {
	if cfg.LogLevel != "" {
		return cfg.LogLevel
	}
	return cfg.Logger.Level
}

// LoggerConfig returns the logger section with the effective level applied.
func LoggerConfig(cfg *types.Config) *types.LoggerConfig {
	lc := cfg.Logger
	lc.Level = LogLevel(cfg)
	return &lc
}

// Load reads the configuration once.
func Load(path string) (*types.Config, error) {
	return NewLoader().Load(path)
}

// GetSystemConfigDir returns the system-wide configuration directory
func GetSystemConfigDir() (string, error) {
	return getSystemConfigPath()
}

// CreateDefaultConfig writes the commented default configuration into dir,
// or the system config directory when dir is empty. It refuses to
// overwrite an existing file.
func CreateDefaultConfig(dir string) (string, error) {
	if dir == "" {
		systemConfigDir, err := getSystemConfigPath()
		if err != nil {
			return "", err
		}
		dir = systemConfigDir
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(dir, ConfigName+".yaml")
	if _, err := os.Stat(configPath); err == nil {
		return configPath, errors.New("config file already exists")
	}

	if err := os.WriteFile(configPath, []byte(DEFAULT_CONFIG_YAML), 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return configPath, nil
}
