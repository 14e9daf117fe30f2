package dyntag

import (
	"context"
	"errors"
	"sync"
	"time"
)

// CachedCatalogStorage wraps a CatalogStorage and caches the latest version
// of each catalog together with its built Catalog, so repeated lookups skip
// both the backend and index construction.
type CachedCatalogStorage struct {
	storage CatalogStorage
	config  CacheConfig

	mu      sync.RWMutex
	entries map[string]*catalogCacheEntry
	closed  bool

	// generations counts invalidations per name and epoch counts
	// InvalidateAll calls. A fill is dropped when either moved while the
	// backend read was in flight.
	generations map[string]uint64
	epoch       uint64
}

// CacheConfig configures CachedCatalogStorage.
type CacheConfig struct {
	// TTL is how long cached entries remain valid.
	// Default: 5 minutes.
	TTL time.Duration

	// MaxEntries bounds the number of cached names. The least recently
	// used entry is evicted when exceeded.
	// Default: 256.
	MaxEntries int

	// NegativeCacheTTL is how long "not found" results are cached.
	// Zero disables negative caching.
	NegativeCacheTTL time.Duration
}

// DefaultCacheConfig returns the default cache configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:              DefaultCacheTTL,
		MaxEntries:       DefaultCacheMaxEntries,
		NegativeCacheTTL: DefaultNegativeCacheTTL,
	}
}

// CacheStats reports cache occupancy.
type CacheStats struct {
	Entries         int
	ValidEntries    int
	NegativeEntries int
}

type catalogCacheEntry struct {
	stored     *StoredCatalog
	catalog    *Catalog
	notFound   bool
	cachedAt   time.Time
	accessedAt time.Time
}

// NewCachedCatalogStorage wraps storage with a cache.
func NewCachedCatalogStorage(storage CatalogStorage, config CacheConfig) *CachedCatalogStorage {
	if config.TTL == 0 {
		config.TTL = DefaultCacheTTL
	}
	if config.MaxEntries == 0 {
		config.MaxEntries = DefaultCacheMaxEntries
	}
	return &CachedCatalogStorage{
		storage:     storage,
		config:      config,
		entries:     make(map[string]*catalogCacheEntry),
		generations: make(map[string]uint64),
	}
}

// Get returns the latest version, served from cache when fresh.
func (s *CachedCatalogStorage) Get(ctx context.Context, name string) (*StoredCatalog, error) {
	entry, err := s.lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	return copyStoredCatalog(entry.stored), nil
}

// Catalog returns the built catalog for the latest version of name. The
// returned catalog is shared and must not be mutated.
func (s *CachedCatalogStorage) Catalog(ctx context.Context, name string) (*Catalog, error) {
	entry, err := s.lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	return entry.catalog, nil
}

func (s *CachedCatalogStorage) lookup(ctx context.Context, name string) (*catalogCacheEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, NewStorageClosedError()
	}
	if entry, ok := s.entries[name]; ok && s.fresh(entry) {
		entry.accessedAt = time.Now()
		s.mu.Unlock()
		if entry.notFound {
			return nil, NewCatalogNotFoundError(name)
		}
		return entry, nil
	}
	gen, epoch := s.generations[name], s.epoch
	s.mu.Unlock()

	sc, err := s.storage.Get(ctx, name)
	if err != nil {
		if errors.Is(err, ErrCatalogNotFound) && s.config.NegativeCacheTTL > 0 {
			s.mu.Lock()
			if !s.closed && s.unchanged(name, gen, epoch) {
				s.add(name, &catalogCacheEntry{notFound: true})
			}
			s.mu.Unlock()
		}
		return nil, err
	}
	catalog, err := sc.Catalog()
	if err != nil {
		return nil, err
	}

	entry := &catalogCacheEntry{stored: sc, catalog: catalog}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, NewStorageClosedError()
	}
	if s.unchanged(name, gen, epoch) {
		s.add(name, entry)
	}
	return entry, nil
}

// unchanged reports whether name was not invalidated since gen and epoch
// were read. Caller holds the lock.
func (s *CachedCatalogStorage) unchanged(name string, gen, epoch uint64) bool {
	return s.generations[name] == gen && s.epoch == epoch
}

// GetVersion bypasses the cache.
func (s *CachedCatalogStorage) GetVersion(ctx context.Context, name string, version int) (*StoredCatalog, error) {
	return s.storage.GetVersion(ctx, name, version)
}

// Save stores a new version and invalidates the name.
func (s *CachedCatalogStorage) Save(ctx context.Context, sc *StoredCatalog) error {
	if err := s.storage.Save(ctx, sc); err != nil {
		return err
	}
	s.Invalidate(sc.Name)
	return nil
}

// Delete removes a catalog and invalidates the name.
func (s *CachedCatalogStorage) Delete(ctx context.Context, name string) error {
	if err := s.storage.Delete(ctx, name); err != nil {
		return err
	}
	s.Invalidate(name)
	return nil
}

// List bypasses the cache.
func (s *CachedCatalogStorage) List(ctx context.Context) ([]string, error) {
	return s.storage.List(ctx)
}

// ListVersions bypasses the cache.
func (s *CachedCatalogStorage) ListVersions(ctx context.Context, name string) ([]int, error) {
	return s.storage.ListVersions(ctx, name)
}

// Close drops the cache and closes the wrapped storage.
func (s *CachedCatalogStorage) Close() error {
	s.mu.Lock()
	s.closed = true
	s.entries = nil
	s.mu.Unlock()
	return s.storage.Close()
}

// Invalidate drops one name from the cache.
func (s *CachedCatalogStorage) Invalidate(name string) {
	s.mu.Lock()
	delete(s.entries, name)
	s.generations[name]++
	s.mu.Unlock()
}

// InvalidateAll empties the cache.
func (s *CachedCatalogStorage) InvalidateAll() {
	s.mu.Lock()
	if !s.closed {
		s.entries = make(map[string]*catalogCacheEntry)
	}
	s.epoch++
	s.mu.Unlock()
}

// Stats returns cache statistics.
func (s *CachedCatalogStorage) Stats() CacheStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := CacheStats{Entries: len(s.entries)}
	for _, entry := range s.entries {
		if !s.fresh(entry) {
			continue
		}
		if entry.notFound {
			stats.NegativeEntries++
		} else {
			stats.ValidEntries++
		}
	}
	return stats
}

func (s *CachedCatalogStorage) fresh(entry *catalogCacheEntry) bool {
	ttl := s.config.TTL
	if entry.notFound {
		ttl = s.config.NegativeCacheTTL
	}
	return time.Since(entry.cachedAt) < ttl
}

// add stores entry under name. Caller holds the write lock.
func (s *CachedCatalogStorage) add(name string, entry *catalogCacheEntry) {
	if _, exists := s.entries[name]; !exists && len(s.entries) >= s.config.MaxEntries {
		s.evictLeastRecent()
	}
	now := time.Now()
	entry.cachedAt = now
	entry.accessedAt = now
	s.entries[name] = entry
}

func (s *CachedCatalogStorage) evictLeastRecent() {
	var (
		oldestName string
		oldest     *catalogCacheEntry
	)
	for name, entry := range s.entries {
		if oldest == nil || entry.accessedAt.Before(oldest.accessedAt) {
			oldestName, oldest = name, entry
		}
	}
	if oldest != nil {
		delete(s.entries, oldestName)
	}
}
