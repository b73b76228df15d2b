package ports

import "context"

// KeyValueStore is the durable client-side storage the console keeps between
// restarts. Get reports found=false for a missing key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
