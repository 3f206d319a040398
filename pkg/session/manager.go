package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cpsdqs/prechoster/internal/logging"
	"github.com/cpsdqs/prechoster/pkg/document"
	"github.com/cpsdqs/prechoster/pkg/domain"
	"github.com/cpsdqs/prechoster/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates document access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.DocumentStore

	mu    sync.Mutex            // guards locks
	locks map[string]*lockEntry // active per-document locks

	locker  ports.DistributedLocker // optional
	lockTTL time.Duration
	docOpts []document.Option
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithDocumentOptions sets the options used for documents opened by Update.
func WithDocumentOptions(opts ...document.Option) Option {
	return func(m *Manager) {
		m.docOpts = append(m.docOpts, opts...)
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a document manager over the given store.
func NewManager(store ports.DocumentStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu, and call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry at zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// Load retrieves a stored document.
func (m *Manager) Load(ctx context.Context, id string) (domain.DocumentState, error) {
	var doc domain.DocumentState
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		doc, err = m.store.Load(ctx, id)
		return err
	})
	return doc, err
}

// LoadOrCreate loads a document, or stores and returns an empty one with
// the given title if none exists.
func (m *Manager) LoadOrCreate(ctx context.Context, id string, title string) (domain.DocumentState, error) {
	var doc domain.DocumentState
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		doc, err = m.store.Load(ctx, id)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrDocumentNotFound) {
			return fmt.Errorf("failed to check document existence: %w", err)
		}

		doc = domain.NewDocumentState()
		doc.Title = title
		// reserve the id
		if err := m.store.Save(ctx, id, doc); err != nil {
			return fmt.Errorf("failed to initialize document: %w", err)
		}
		return nil
	})
	return doc, err
}

// Save persists a document.
func (m *Manager) Save(ctx context.Context, id string, doc domain.DocumentState) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Save(ctx, id, doc)
	})
}

// Update loads a document, applies fn to an editable copy and saves the
// result, all under the document's lock. Nothing is saved if fn fails.
func (m *Manager) Update(ctx context.Context, id string, fn func(*document.Document) error) (domain.DocumentState, error) {
	var out domain.DocumentState
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		state, err := m.store.Load(ctx, id)
		if err != nil {
			return err
		}
		opts := append([]document.Option{document.WithState(state)}, m.docOpts...)
		doc := document.New(opts...)
		if err := fn(doc); err != nil {
			return err
		}
		out = doc.State()
		return m.store.Save(ctx, id, out)
	})
	return out, err
}

// Delete removes a document from the store.
func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.store.Delete(ctx, id)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying document store.
func (m *Manager) Store() ports.DocumentStore {
	return m.store
}

// WithLock runs fn while holding the lock for the document.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"document_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
