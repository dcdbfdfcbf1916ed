package main

import (
	"context"
	"fmt"

	"github.com/odvcencio/gitlite/pkg/logging"
	"github.com/odvcencio/gitlite/pkg/object"
	"github.com/odvcencio/gitlite/pkg/repo"
)

// openRepo finds the repository containing the working directory and wires
// the command logger into its object store.
func openRepo() (*repo.Repo, error) {
	log, err := logging.New(logLevel)
	if err != nil {
		return nil, err
	}
	return repo.Find(".", object.WithLogger(log))
}

// withLock runs fn while holding the repository write lock.
func withLock(ctx context.Context, r *repo.Repo, fn func() error) (err error) {
	unlock, err := r.Lock(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if uerr := unlock(); uerr != nil && err == nil {
			err = fmt.Errorf("release lock: %w", uerr)
		}
	}()
	return fn()
}
