package persist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps one JSON blob per key in a data directory. Writes go
// through a temp file and rename so a crash never leaves a torn blob.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) Save(_ context.Context, key string, blob []byte) error {
	path := f.path(key)
	tmp, err := os.CreateTemp(f.dir, key+".tmp-*")
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("save %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save %s: %w", key, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (f *FileStore) Load(_ context.Context, key string) ([]byte, error) {
	blob, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	return blob, nil
}

func (f *FileStore) Close() error {
	return nil
}

func (f *FileStore) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}
