// Package persist snapshots the in-memory stores to a key-value blob
// store. Each store serializes its full list under a fixed key; the blob
// layout inside a key is owned by the store that wrote it.
package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/safar/go-pos-store/internal/config"
)

// The fixed snapshot keys. They predate this service and must not change,
// or existing data becomes unreachable.
const (
	KeyAuth         = "auth-storage"
	KeyProducts     = "product-storage"
	KeyTransactions = "transaction-storage"
)

var ErrKeyNotFound = errors.New("snapshot key not found")

// Store is a key-value blob store. Save overwrites; Load returns
// ErrKeyNotFound for a key that was never saved.
type Store interface {
	Save(ctx context.Context, key string, blob []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	Close() error
}

// Snapshotter is the store-side half of the persistence boundary: the
// catalog, ledger, and session all implement it.
type Snapshotter interface {
	Serialize() ([]byte, error)
	Hydrate(blob []byte) error
	Subscribe(fn func()) func()
}

// Open builds the Store selected by PERSIST_DRIVER.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.Persist.Driver {
	case config.PersistDriverFile:
		return NewFileStore(cfg.Persist.DataDir)
	case config.PersistDriverPostgres:
		return NewPostgresStore(&cfg.Database)
	case config.PersistDriverRedis:
		return NewRedisStore(&cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown persist driver %q", cfg.Persist.Driver)
	}
}

// Bind hydrates snap from an existing blob (a missing key is not an
// error) and then saves a fresh snapshot after every mutation. It returns
// whether a blob was found, and the unsubscribe function.
func Bind(ctx context.Context, s Store, key string, snap Snapshotter, logger *logrus.Logger) (bool, func(), error) {
	loaded := false
	blob, err := s.Load(ctx, key)
	switch {
	case err == nil:
		if err := snap.Hydrate(blob); err != nil {
			return false, nil, fmt.Errorf("bind %s: %w", key, err)
		}
		loaded = true
	case errors.Is(err, ErrKeyNotFound):
	default:
		return false, nil, fmt.Errorf("bind %s: %w", key, err)
	}

	unsubscribe := snap.Subscribe(func() {
		blob, err := snap.Serialize()
		if err != nil {
			logger.WithFields(logrus.Fields{"key": key}).WithError(err).Error("serialize snapshot")
			return
		}
		if err := s.Save(ctx, key, blob); err != nil {
			logger.WithFields(logrus.Fields{"key": key}).WithError(err).Error("save snapshot")
		}
	})

	return loaded, unsubscribe, nil
}
