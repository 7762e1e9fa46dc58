package types

import "time"

// SchedulerConfig drives the tick loop and the job registry limits.
type SchedulerConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	TickInterval time.Duration `mapstructure:"tick_interval"`
	MaxJobs      int           `mapstructure:"max_jobs"`
	JobTimeout   time.Duration `mapstructure:"job_timeout"`
}

// JobConfig seeds a job at startup. Schedule uses the "every 24h",
// "at Monday 09:00" or "cron 0 */6 * * *" forms.
type JobConfig struct {
	Name     string `mapstructure:"name"`
	Schedule string `mapstructure:"schedule"`
	Payload  string `mapstructure:"payload"`
	Enabled  *bool  `mapstructure:"enabled"`
}

type ExecutorConfig struct {
	Kind string `mapstructure:"kind"` // log, docker
}

type ShutdownConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}
