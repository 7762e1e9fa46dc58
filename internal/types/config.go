package types

type Config struct {
	AppName     string          `mapstructure:"app_name"`
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Timezone    string          `mapstructure:"timezone"`
	Scheduler   SchedulerConfig `mapstructure:"scheduler"`
	Monitor     MonitorConfig   `mapstructure:"monitor"`
	Executor    ExecutorConfig  `mapstructure:"executor"`
	Docker      DockerConfig    `mapstructure:"docker"`
	Store       StoreConfig     `mapstructure:"store"`
	Shutdown    ShutdownConfig  `mapstructure:"shutdown"`
	Logger      LoggerConfig    `mapstructure:"logger"`
	Jobs        []JobConfig     `mapstructure:"jobs"`
}
