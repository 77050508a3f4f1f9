package persist

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const sessionFileName = "session.json"

var _ BatchStorage = (*FileStorage)(nil)

// FileStorage keeps every key in a single JSON object file. Writes replace
// the file atomically.
type FileStorage struct {
	path   string
	lock   sync.Mutex
	logger zerolog.Logger
}

// FileStorageOption configures a FileStorage.
type FileStorageOption func(*FileStorage)

// WithFileLogger sets the logger that reports discarded session files.
func WithFileLogger(logger zerolog.Logger) FileStorageOption {
	return func(f *FileStorage) {
		f.logger = logger
	}
}

// NewFileStorage stores values in folder/session.json, creating folder if needed.
func NewFileStorage(folder string, opts ...FileStorageOption) (*FileStorage, error) {
	if err := os.MkdirAll(folder, 0o700); err != nil {
		return nil, errors.Wrapf(err, "creating storage folder %s", folder)
	}
	f := &FileStorage{path: filepath.Join(folder, sessionFileName), logger: log.Logger}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Path returns the file holding the values.
func (f *FileStorage) Path() string {
	return f.path
}

func (f *FileStorage) Get(key string) (string, bool, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	values, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *FileStorage) Set(key, value string) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	values, err := f.read()
	if err != nil {
		return err
	}
	values[key] = value
	return f.write(values)
}

func (f *FileStorage) Delete(key string) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	values, err := f.read()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.write(values)
}

func (f *FileStorage) Apply(set map[string]string, remove []string) error {
	f.lock.Lock()
	defer f.lock.Unlock()

	values, err := f.read()
	if err != nil {
		return err
	}
	for _, key := range remove {
		delete(values, key)
	}
	for key, value := range set {
		values[key] = value
	}
	return f.write(values)
}

// Watch calls onChange whenever the file is written or removed by anyone,
// including this process, until ctx is done.
func (f *FileStorage) Watch(ctx context.Context, onChange func(), logger zerolog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating watcher")
	}
	// Watch the folder: atomic renames replace the file's inode.
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		watcher.Close()
		return errors.Wrapf(err, "watching %s", filepath.Dir(f.path))
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(f.path) {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					onChange()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Err(err).Str("path", f.path).Msg("Session file watcher error")
			}
		}
	}()
	return nil
}

func (f *FileStorage) read() (map[string]string, error) {
	values := make(map[string]string)
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return values, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", f.path)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		f.logger.Warn().Err(err).Str("path", f.path).Msg("Discarding unreadable session file")
		return make(map[string]string), nil
	}
	return values, nil
}

func (f *FileStorage) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding session file")
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".session-*")
	if err != nil {
		return errors.Wrap(err, "creating temp session file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, "writing temp session file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "closing temp session file")
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "replacing %s", f.path)
	}
	return nil
}
