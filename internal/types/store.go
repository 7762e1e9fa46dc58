package types

import "time"

// StoreConfig selects where jobs are persisted between restarts.
type StoreConfig struct {
	Driver      string        `mapstructure:"driver"` // none, file, sqlite
	Path        string        `mapstructure:"path"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`
}
