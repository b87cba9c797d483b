package config

type Config struct {
	EnvConfig *EnvConfig
}

var configInstance *Config

func NewConfig() *Config {
	if configInstance != nil {
		return configInstance
	}

	envConfig := LoadEnvConfig()

	configInstance = &Config{
		EnvConfig: envConfig,
	}

	return configInstance
}
