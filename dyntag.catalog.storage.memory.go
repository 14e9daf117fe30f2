package dyntag

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryCatalogStorage is an in-memory CatalogStorage.
// It is intended for tests and development; data is lost on exit.
type MemoryCatalogStorage struct {
	mu       sync.RWMutex
	catalogs map[string][]*StoredCatalog // name -> versions, newest first
	closed   bool
}

// MemoryCatalogStorageDriver opens MemoryCatalogStorage instances.
type MemoryCatalogStorageDriver struct{}

func init() {
	RegisterCatalogStorageDriver(StorageDriverNameMemory, &MemoryCatalogStorageDriver{})
}

// Open creates a new MemoryCatalogStorage. The connection string is ignored.
func (d *MemoryCatalogStorageDriver) Open(string) (CatalogStorage, error) {
	return NewMemoryCatalogStorage(), nil
}

// NewMemoryCatalogStorage creates an empty in-memory storage.
func NewMemoryCatalogStorage() *MemoryCatalogStorage {
	return &MemoryCatalogStorage{
		catalogs: make(map[string][]*StoredCatalog),
	}
}

// Get retrieves the latest version of a catalog.
func (s *MemoryCatalogStorage) Get(ctx context.Context, name string) (*StoredCatalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}
	versions := s.catalogs[name]
	if len(versions) == 0 {
		return nil, NewCatalogNotFoundError(name)
	}
	return copyStoredCatalog(versions[0]), nil
}

// GetVersion retrieves one version of a catalog.
func (s *MemoryCatalogStorage) GetVersion(ctx context.Context, name string, version int) (*StoredCatalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}
	for _, sc := range s.catalogs[name] {
		if sc.Version == version {
			return copyStoredCatalog(sc), nil
		}
	}
	return nil, NewVersionNotFoundError(name, version)
}

// Save stores a new version of a catalog.
func (s *MemoryCatalogStorage) Save(ctx context.Context, sc *StoredCatalog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkSave(sc); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	next := 1
	if versions := s.catalogs[sc.Name]; len(versions) > 0 {
		next = versions[0].Version + 1
	}
	sc.ID = uuid.NewString()
	sc.Version = next
	sc.CreatedAt = time.Now()

	s.catalogs[sc.Name] = append([]*StoredCatalog{copyStoredCatalog(sc)}, s.catalogs[sc.Name]...)
	return nil
}

// Delete removes all versions of a catalog.
func (s *MemoryCatalogStorage) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}
	if _, ok := s.catalogs[name]; !ok {
		return NewCatalogNotFoundError(name)
	}
	delete(s.catalogs, name)
	return nil
}

// List returns the stored catalog names, sorted.
func (s *MemoryCatalogStorage) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}
	names := make([]string, 0, len(s.catalogs))
	for name := range s.catalogs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ListVersions returns the version numbers of a catalog, newest first.
func (s *MemoryCatalogStorage) ListVersions(ctx context.Context, name string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}
	versions := make([]int, 0, len(s.catalogs[name]))
	for _, sc := range s.catalogs[name] {
		versions = append(versions, sc.Version)
	}
	return versions, nil
}

// Close marks the storage closed.
func (s *MemoryCatalogStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.catalogs = nil
	return nil
}
