package dyntag

import (
	"context"
	"regexp"
	"sort"
	"sync"
	"time"
)

// StoredCatalog is one version of a catalog definition held by a storage
// backend.
type StoredCatalog struct {
	// ID is the unique identifier of this version.
	ID string `json:"id"`

	// Name is the catalog name used for lookups.
	Name string `json:"name"`

	// Version is the version number (1, 2, 3, ...). Higher versions are newer.
	Version int `json:"version"`

	// Definition is the catalog content.
	Definition CatalogDefinition `json:"definition"`

	// CreatedAt is when this version was saved.
	CreatedAt time.Time `json:"created_at"`

	// CreatedBy identifies who saved this version (optional).
	CreatedBy string `json:"created_by,omitempty"`
}

// Catalog builds a validated catalog from the stored definition.
func (sc *StoredCatalog) Catalog() (*Catalog, error) {
	def := sc.Definition
	if def.Name == "" {
		def.Name = sc.Name
	}
	return NewCatalog(def)
}

// CatalogStorage is the interface for pluggable catalog backends.
// Implementations must be safe for concurrent use.
type CatalogStorage interface {
	// Get retrieves the latest version of a catalog by name.
	// Returns ErrCatalogNotFound if the catalog doesn't exist.
	Get(ctx context.Context, name string) (*StoredCatalog, error)

	// GetVersion retrieves a specific version of a catalog.
	GetVersion(ctx context.Context, name string, version int) (*StoredCatalog, error)

	// Save stores a new version of a catalog. ID, Version and CreatedAt
	// are set by the storage.
	Save(ctx context.Context, sc *StoredCatalog) error

	// Delete removes all versions of a catalog.
	Delete(ctx context.Context, name string) error

	// List returns the names of all stored catalogs, sorted.
	List(ctx context.Context) ([]string, error)

	// ListVersions returns the version numbers of a catalog, newest first.
	// Returns an empty slice if the catalog doesn't exist.
	ListVersions(ctx context.Context, name string) ([]int, error)

	// Close releases any resources held by the storage.
	Close() error
}

// CatalogStorageDriver is a factory for storage instances.
// Drivers register themselves during init().
type CatalogStorageDriver interface {
	// Open creates a storage instance. The connection string is
	// driver-specific.
	Open(connectionString string) (CatalogStorage, error)
}

// Storage driver registry
var (
	storageDriversMu sync.RWMutex
	storageDrivers   = make(map[string]CatalogStorageDriver)
)

// RegisterCatalogStorageDriver registers a storage driver by name.
// Panics if the driver is nil or the name is taken.
func RegisterCatalogStorageDriver(name string, driver CatalogStorageDriver) {
	storageDriversMu.Lock()
	defer storageDriversMu.Unlock()

	if driver == nil {
		panic(ErrMsgNilStorageDriver)
	}
	if _, exists := storageDrivers[name]; exists {
		panic(ErrMsgDriverAlreadyRegistered + ": " + name)
	}
	storageDrivers[name] = driver
}

// OpenCatalogStorage opens a storage using the named driver.
//
// Example:
//
//	storage, err := dyntag.OpenCatalogStorage("memory", "")
//	storage, err := dyntag.OpenCatalogStorage("filesystem", "/etc/dyntag/catalogs")
//	storage, err := dyntag.OpenCatalogStorage("sqlite", "/var/lib/dyntag.db")
func OpenCatalogStorage(driverName, connectionString string) (CatalogStorage, error) {
	storageDriversMu.RLock()
	driver, ok := storageDrivers[driverName]
	storageDriversMu.RUnlock()

	if !ok {
		return nil, &StorageError{Message: ErrMsgUnknownDriver, Name: driverName}
	}
	return driver.Open(connectionString)
}

// ListCatalogStorageDrivers returns the registered driver names, sorted.
func ListCatalogStorageDrivers() []string {
	storageDriversMu.RLock()
	defer storageDriversMu.RUnlock()

	names := make([]string, 0, len(storageDrivers))
	for name := range storageDrivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadStoredCatalog fetches the latest version of name and builds it.
func LoadStoredCatalog(ctx context.Context, storage CatalogStorage, name string) (*Catalog, error) {
	sc, err := storage.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return sc.Catalog()
}

var catalogNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// validateCatalogName rejects names that cannot be used as file or row keys.
func validateCatalogName(name string) error {
	if name == "" {
		return &StorageError{Message: ErrMsgEmptyCatalogName}
	}
	if !catalogNamePattern.MatchString(name) || len(name) > 255 {
		return &StorageError{Message: ErrMsgInvalidCatalogName, Name: name}
	}
	return nil
}

// checkSave validates a catalog before it is stored.
func checkSave(sc *StoredCatalog) error {
	if sc == nil {
		return &StorageError{Message: ErrMsgNilCatalog}
	}
	if err := validateCatalogName(sc.Name); err != nil {
		return err
	}
	if _, err := NewCatalog(sc.Definition); err != nil {
		return NewStorageError(ErrMsgStorageWrite, sc.Name, err)
	}
	return nil
}

func copyStoredCatalog(sc *StoredCatalog) *StoredCatalog {
	c := *sc
	c.Definition = sc.Definition.Clone()
	return &c
}
