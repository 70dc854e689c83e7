package storage

import (
	"fmt"
	"path/filepath"
)

func NewStore(kind, dir string) (Store, error) {
	switch kind {
	case "", "file":
		return NewFileStore(dir), nil
	case "sqlite":
		return newSQLiteStore(filepath.Join(dir, "runs.db"))
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
