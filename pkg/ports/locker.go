package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a document lock obtained from a DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes writes to a stored document across processes
// sharing one DocumentStore. The session manager takes the lock around every
// load-modify-save of a document, keyed by document id, on top of its own
// in-process mutex.
type DistributedLocker interface {
	// Lock blocks until the lock on documentID is held or ctx is done.
	// The lock expires after ttl if its holder never calls the returned
	// UnlockFunc, so a crashed writer cannot block the document forever.
	Lock(ctx context.Context, documentID string, ttl time.Duration) (UnlockFunc, error)
}

// LockerFunc adapts a function to a DistributedLocker.
type LockerFunc func(ctx context.Context, documentID string, ttl time.Duration) (UnlockFunc, error)

// Lock calls f.
func (f LockerFunc) Lock(ctx context.Context, documentID string, ttl time.Duration) (UnlockFunc, error) {
	return f(ctx, documentID, ttl)
}
