package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockRetryDelay = 5 * time.Millisecond
	lockWaitLimit  = 2 * time.Second
)

// ErrLocked means another process holds the repository lock.
var ErrLocked = errors.New("repository is locked")

// Lock takes the repository's advisory write lock, waiting up to two
// seconds (or until ctx is done) for a concurrent holder to release it. The
// object store does not lock on its own; callers that write objects from
// several processes hold this lock around their writes.
func (r *Repo) Lock(ctx context.Context) (unlock func() error, err error) {
	path := r.path("gitlite.lock")
	fl := flock.New(path)

	ctx, cancel := context.WithTimeout(ctx, lockWaitLimit)
	defer cancel()

	ok, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, path)
		}
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return fl.Unlock, nil
}
