package types

import "context"

// BlobStore is the key-value store the board is serialized into. Get
// returns ErrBlobNotFound when nothing is stored under key.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Close() error
}
