package cli

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/cpsdqs/prechoster/pkg/adapters/file"
	"github.com/cpsdqs/prechoster/pkg/adapters/memory"
	"github.com/cpsdqs/prechoster/pkg/adapters/redis"
	"github.com/cpsdqs/prechoster/pkg/persistence/middleware"
	"github.com/cpsdqs/prechoster/pkg/ports"
)

// Backend bundles the persistence adapters selected by a Config.
type Backend struct {
	Store ports.DocumentStore
	Blobs ports.BlobStore
	// Locker is nil unless the backend is shared between processes.
	Locker ports.DistributedLocker

	closeFn func() error
}

// Close releases backend connections.
func (b *Backend) Close() error {
	if b.closeFn == nil {
		return nil
	}
	return b.closeFn()
}

// OpenBackend creates the document store, blob store and locker for cfg,
// wrapping the store in the configured middlewares.
func OpenBackend(cfg Config, logger *slog.Logger) (*Backend, error) {
	b := &Backend{}
	blobDir := filepath.Join(cfg.Dir, "blobs")

	switch cfg.Store {
	case StoreMemory:
		b.Store = memory.NewStore()
		b.Blobs = memory.NewBlobStore()
	case StoreFile:
		b.Store = file.New(filepath.Join(cfg.Dir, "documents"))
		b.Blobs = file.NewBlobStore(blobDir)
	case StoreRedis:
		rs, err := redis.New(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		b.Store = rs
		b.Blobs = file.NewBlobStore(blobDir)
		b.Locker = redis.NewLocker(rs.Client(), "prechoster:")
		b.closeFn = rs.Close
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	var mws []middleware.Middleware
	if len(cfg.Redact) > 0 {
		mws = append(mws, middleware.NewRedactMiddleware(cfg.Redact))
	}
	if cfg.EncryptionKey != "" {
		key, err := base64.StdEncoding.DecodeString(cfg.EncryptionKey)
		if err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("decode %s: %w", EnvEncryptionKey, err)
		}
		if len(key) != 32 {
			_ = b.Close()
			return nil, fmt.Errorf("%s must decode to 32 bytes, got %d", EnvEncryptionKey, len(key))
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	b.Store = middleware.Chain(b.Store, mws...)

	logger.Debug("backend opened", "store", cfg.Store, "dir", cfg.Dir, "middlewares", len(mws))
	return b, nil
}
