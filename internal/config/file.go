package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// File holds values read from a YAML config file. Environment variables
// always take precedence over it.
type File struct {
	AppName        string `yaml:"app_name"`
	Env            string `yaml:"env"`
	LogLevel       string `yaml:"log_level"`
	APIURL         string `yaml:"api_url"`
	RequestTimeout string `yaml:"request_timeout"`
	Storage        string `yaml:"storage"`
	DataFolder     string `yaml:"data_folder"`
}

// ReadFile parses the YAML config file at path.
func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config file %s", path)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "parsing config file %s", path)
	}
	return &f, nil
}

// GetEnv resolves envVar from the environment, then the file, then defaultValue.
// A nil File falls straight through to the environment.
func (f *File) GetEnv(name, defaultValue string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	if value := f.lookup(name); value != "" {
		return value
	}
	return defaultValue
}

func (f *File) lookup(name string) string {
	if f == nil {
		return ""
	}
	switch name {
	case appNameVar:
		return f.AppName
	case envVar:
		return f.Env
	case logLevelVar:
		return f.LogLevel
	case apiURLVar:
		return f.APIURL
	case requestTimeoutVar:
		return f.RequestTimeout
	case storageVar:
		return f.Storage
	case folderEnvVar:
		return f.DataFolder
	}
	return ""
}
