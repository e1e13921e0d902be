package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Veraticus/coffee-diary/internal/common"
	"github.com/Veraticus/coffee-diary/internal/service"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
)

// Open creates the store for backend at path and applies migrations.
func Open(ctx context.Context, backend, path string) (service.DocumentStore, error) {
	var (
		store service.DocumentStore
		err   error
	)

	switch strings.ToLower(backend) {
	case BackendSQLite, "":
		store, err = NewSQLiteStorage(path)
	case BackendBolt:
		store, err = NewBoltStorage(ctx, path)
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", common.ErrInvalidConfig, backend)
	}
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate %s: %w", filepath.Base(path), err)
	}

	return store, nil
}
