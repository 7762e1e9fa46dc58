package types

import "time"

// MonitorConfig for gateway connectivity polling
type MonitorConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Endpoint      string        `mapstructure:"endpoint"`
	HealthPath    string        `mapstructure:"health_path"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	Timeout       time.Duration `mapstructure:"timeout"`
	CheckOnStart  bool          `mapstructure:"check_on_start"`
	CheckNowRate  time.Duration `mapstructure:"check_now_rate"`
	CheckNowBurst int           `mapstructure:"check_now_burst"`
}
