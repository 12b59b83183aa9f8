package common

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CacheService is the in-process CacheInterface implementation, used when
// no redis host is configured.
type CacheService struct {
	cache *cache.Cache
}

var _ CacheInterface = (*CacheService)(nil)

func NewCacheService(defaultExpiration, cleanUpInterval time.Duration) *CacheService {
	return &CacheService{cache: cache.New(defaultExpiration, cleanUpInterval)}
}

func (cs *CacheService) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	cs.cache.Set(key, value, ttl)
	return nil
}

func (cs *CacheService) Get(_ context.Context, key string) (string, bool, error) {
	val, found := cs.cache.Get(key)
	if !found {
		return "", false, nil
	}
	s, _ := val.(string)
	return s, true, nil
}

func (cs *CacheService) Delete(_ context.Context, key string) error {
	cs.cache.Delete(key)
	return nil
}

// ItemCount reports the number of live entries, expired ones included until
// the janitor runs.
func (cs *CacheService) ItemCount() int {
	return cs.cache.ItemCount()
}

// Close is a no-op for the in-memory cache
func (cs *CacheService) Close() error {
	return nil
}
