package config

import (
	"os"
)

const (
	appNameVar    = "BELL_APP_NAME"
	envVar        = "ENV"
	logLevelVar   = "BELL_LOG_LEVEL"
	configFileVar = "BELL_CONFIG_FILE"
)

type EnvVars struct {
	file *File
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return e.file.GetEnv(appNameVar, "Bell Scheduler")
}

func (e EnvVars) GetEnv() string {
	return e.file.GetEnv(envVar, "DEV")
}

func (e EnvVars) GetLogLevel() string {
	return e.file.GetEnv(logLevelVar, "info")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
