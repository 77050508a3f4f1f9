package config

import "time"

type Config interface {
	EnvConfig
	HTTPConfig
	StorageConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

type HTTPConfig interface {
	GetAPIURL() string
	GetRequestTimeout() time.Duration
}

type StorageConfig interface {
	GetStorageDriver() StorageDriver
	GetDataFolder() string
}

type mainConfig struct {
	EnvVars
	HTTP
	Storage
}

// New returns the configuration backed by the process environment only.
func New() Config {
	return mainConfig{}
}

// Load returns the configuration backed by the environment layered over
// the YAML file named by BELL_CONFIG_FILE, when it is set.
func Load() (Config, error) {
	path := GetEnv(configFileVar, "")
	if path == "" {
		return New(), nil
	}
	file, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return mainConfig{
		EnvVars: EnvVars{file: file},
		HTTP:    HTTP{file: file},
		Storage: Storage{file: file},
	}, nil
}
