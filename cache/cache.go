// Package cache keeps forecast results per country and target year and collapses concurrent
// requests for the same key into a single fit.
package cache

import (
	"context"
	"errors"
	"fmt"

	forecaster "github.com/aouyang1/go-tempcast"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

var (
	ErrUninitializedCache = errors.New("uninitialized cache")
	ErrNilCompute         = errors.New("nil compute function")
)

// Key identifies one forecast request
type Key struct {
	Country    string
	TargetYear int
}

func (k Key) String() string {
	return fmt.Sprintf("%s|%d", k.Country, k.TargetYear)
}

// Store persists results between requests. Results handed out by a store are shared and
// must be treated as read only.
type Store interface {
	Get(ctx context.Context, key string) (*forecaster.Results, bool, error)
	Set(ctx context.Context, key string, res *forecaster.Results) error
	Close() error
}

// ComputeFunc produces the results for a key on a cache miss
type ComputeFunc func(ctx context.Context) (*forecaster.Results, error)

// Cache fronts a Store with per key request deduplication. A nil store only deduplicates.
type Cache struct {
	store  Store
	group  singleflight.Group
	logger zerolog.Logger
}

func New(store Store, logger zerolog.Logger) *Cache {
	return &Cache{
		store:  store,
		logger: logger,
	}
}

// GetOrCompute returns the stored results for key or runs fn once for all concurrent callers
// of the same key. The computation outlives a caller whose context ends so the remaining
// callers and the store still receive it.
func (c *Cache) GetOrCompute(ctx context.Context, key Key, fn ComputeFunc) (*forecaster.Results, error) {
	if c == nil {
		return nil, ErrUninitializedCache
	}
	if fn == nil {
		return nil, ErrNilCompute
	}
	k := key.String()
	logger := c.logger.With().Str("cache_key", k).Logger()

	if c.store != nil {
		res, ok, err := c.store.Get(ctx, k)
		if err != nil {
			logger.Warn().Err(err).Msg("cache read failed, recomputing")
		} else if ok {
			logger.Debug().Msg("cache hit")
			return res, nil
		}
	}

	computeCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(k, func() (interface{}, error) {
		logger.Debug().Msg("cache miss, computing")
		res, err := fn(computeCtx)
		if err != nil {
			return nil, err
		}
		if c.store != nil {
			if err := c.store.Set(computeCtx, k, res); err != nil {
				logger.Warn().Err(err).Msg("cache write failed")
			}
		}
		return res, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		if r.Shared {
			logger.Debug().Msg("joined in-flight computation")
		}
		return r.Val.(*forecaster.Results), nil
	}
}

// Close releases the underlying store
func (c *Cache) Close() error {
	if c == nil || c.store == nil {
		return nil
	}
	return c.store.Close()
}
