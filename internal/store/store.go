package store

import (
	"context"
	"errors"

	"github.com/livingdw67/ira-analysis/internal/scenario"
)

// ErrNotFound is returned for an unknown or expired scenario id.
var ErrNotFound = errors.New("scenario not found")

// Store keeps completed scenarios so clients can fetch them again by id.
type Store interface {
	Put(ctx context.Context, res *scenario.Result) error
	Get(ctx context.Context, id string) (*scenario.Result, error)
	Close() error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)
