package types

// DockerConfig for the container exec executor
type DockerConfig struct {
	SocketPath string `mapstructure:"socket_path"`
	Container  string `mapstructure:"container"`
	Shell      string `mapstructure:"shell"`
}
