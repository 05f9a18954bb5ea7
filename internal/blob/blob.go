// Package blob implements the key-value stores a board is persisted into.
// Each store satisfies types.BlobStore; Open picks one from a Config.
package blob

import (
	"context"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/kanban/pkg/types"
)

// Open validates cfg and returns the blob store it selects. The caller owns
// the store and must Close it.
func Open(ctx context.Context, cfg types.Config) (types.BlobStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case types.BackendMemory:
		return NewMemory(), nil
	case types.BackendFile:
		return OpenFile(cfg.DataDir)
	case types.BackendSQLite:
		return OpenSQLite(ctx, cfg.DataDir)
	case types.BackendRedis:
		return OpenRedis(cfg.RedisURL, cfg.GetRedisPrefix())
	case types.BackendAzureTables:
		return OpenAzureTable(ctx, cfg.AzureConnectionString, cfg.GetAzureTable())
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, cfg.Backend)
	}
}

// checkKey rejects keys that cannot name a blob in every backend.
func checkKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("%w: %q", types.ErrInvalidKey, key)
	}
	return nil
}
