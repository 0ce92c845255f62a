package storage

import "fmt"

const (
	KindMemory = "memory"
	KindFile   = "file"
	KindBadger = "badger"
	KindSQLite = "sqlite"
)

func DefaultStoreKind() string {
	return KindFile
}

// NewStore builds an uninitialised store. path is the directory for file and
// badger stores and the database file for sqlite.
func NewStore(kind, path string) (Store, error) {
	switch kind {
	case KindMemory:
		return NewMemoryStore(), nil
	case "", KindFile:
		return NewFileStore(path), nil
	case KindBadger:
		return NewBadgerStore(path), nil
	case KindSQLite:
		return newSQLiteStore(path)
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
