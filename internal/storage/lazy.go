package storage

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Lazy is a lazily-opened, shared handle to the inventory store. The first
// caller of Get performs the actual open; concurrent callers await the same
// in-flight open instead of creating duplicate connections. A failed open is
// not cached, so a later call retries.
type Lazy struct {
	dataDir string

	group singleflight.Group
	mu    sync.Mutex
	store *Store
}

// NewLazy returns a handle that will open the store in dataDir on first use.
func NewLazy(dataDir string) *Lazy {
	return &Lazy{dataDir: dataDir}
}

// Get returns the shared store, opening it if necessary.
func (l *Lazy) Get(ctx context.Context) (*Store, error) {
	l.mu.Lock()
	if l.store != nil {
		s := l.store
		l.mu.Unlock()
		return s, nil
	}
	l.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v, err, _ := l.group.Do("open", func() (any, error) {
		l.mu.Lock()
		if l.store != nil {
			s := l.store
			l.mu.Unlock()
			return s, nil
		}
		l.mu.Unlock()

		s, err := Open(l.dataDir)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.store = s
		l.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Store), nil
}

// Close closes the store if it was ever opened.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.store == nil {
		return nil
	}
	err := l.store.Close()
	l.store = nil
	return err
}

// The delegating methods below make Lazy usable wherever a connected store
// is expected, deferring the open to the first query.

func (l *Lazy) ItemByCode(ctx context.Context, code int) (Item, error) {
	s, err := l.Get(ctx)
	if err != nil {
		return Item{}, err
	}
	return s.ItemByCode(ctx, code)
}

func (l *Lazy) ItemsByCategory(ctx context.Context, category string, limit int) ([]Item, error) {
	s, err := l.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.ItemsByCategory(ctx, category, limit)
}

func (l *Lazy) ScanItems(ctx context.Context, limit int) ([]Item, error) {
	s, err := l.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.ScanItems(ctx, limit)
}

func (l *Lazy) SearchItems(ctx context.Context, query string, limit int) ([]Item, error) {
	s, err := l.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.SearchItems(ctx, query, limit)
}

func (l *Lazy) CountSearch(ctx context.Context, query string) (int, error) {
	s, err := l.Get(ctx)
	if err != nil {
		return 0, err
	}
	return s.CountSearch(ctx, query)
}

func (l *Lazy) CountItems(ctx context.Context) (int, error) {
	s, err := l.Get(ctx)
	if err != nil {
		return 0, err
	}
	return s.CountItems(ctx)
}

func (l *Lazy) CountByCategory(ctx context.Context) ([]GroupCount, error) {
	s, err := l.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.CountByCategory(ctx)
}

func (l *Lazy) CountByUnit(ctx context.Context, limit int) ([]GroupCount, error) {
	s, err := l.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.CountByUnit(ctx, limit)
}
