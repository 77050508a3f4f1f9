package config

import "strings"

const (
	storageVar   = "BELL_STORAGE"
	folderEnvVar = "BELL_DATA_FOLDER"
)

// StorageDriver selects where the persisted session lives.
type StorageDriver string

const (
	StorageFile   StorageDriver = "file"
	StorageBadger StorageDriver = "badger"
	StorageMemory StorageDriver = "memory"
)

type Storage struct {
	file *File
}

var _ StorageConfig = Storage{}

func (s Storage) GetStorageDriver() StorageDriver {
	switch driver := StorageDriver(strings.ToLower(s.file.GetEnv(storageVar, string(StorageFile)))); driver {
	case StorageBadger, StorageMemory:
		return driver
	default:
		return StorageFile
	}
}

func (s Storage) GetDataFolder() string {
	return s.file.GetEnv(folderEnvVar, "./data")
}
