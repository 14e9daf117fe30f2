package dyntag

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// FilesystemCatalogStorage stores catalogs as files, one file per version.
// Versions written by Save are YAML; hand-written HCL, JSON or YAML version
// files placed in the same layout are read as well.
//
// Directory structure:
//
//	<root>/
//	  <catalog-name>/
//	    v1.yaml
//	    v2.hcl
//	    ...
type FilesystemCatalogStorage struct {
	mu     sync.RWMutex
	root   string
	closed bool
}

// filesystemCatalogFile is the YAML layout written by Save.
type filesystemCatalogFile struct {
	ID                string    `yaml:"id,omitempty"`
	CreatedAt         time.Time `yaml:"created_at,omitempty"`
	CreatedBy         string    `yaml:"created_by,omitempty"`
	CatalogDefinition `yaml:",inline"`
}

// FilesystemCatalogStorageDriver opens FilesystemCatalogStorage instances.
type FilesystemCatalogStorageDriver struct{}

func init() {
	RegisterCatalogStorageDriver(StorageDriverNameFilesystem, &FilesystemCatalogStorageDriver{})
}

// Open creates a FilesystemCatalogStorage. The connection string is the
// root directory.
func (d *FilesystemCatalogStorageDriver) Open(connectionString string) (CatalogStorage, error) {
	return NewFilesystemCatalogStorage(connectionString)
}

// NewFilesystemCatalogStorage creates a storage rooted at root, creating the
// directory if needed.
func NewFilesystemCatalogStorage(root string) (*FilesystemCatalogStorage, error) {
	if root == "" {
		return nil, &StorageError{Message: ErrMsgInvalidStorageRoot}
	}
	if err := os.MkdirAll(root, FilesystemDirPermissions); err != nil {
		return nil, &StorageError{Message: ErrMsgInvalidStorageRoot, Name: root, Cause: err}
	}
	return &FilesystemCatalogStorage{root: root}, nil
}

// Root returns the storage root directory.
func (s *FilesystemCatalogStorage) Root() string {
	return s.root
}

// Get retrieves the latest version of a catalog.
func (s *FilesystemCatalogStorage) Get(ctx context.Context, name string) (*StoredCatalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateCatalogName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}
	files, err := s.versionFiles(name)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, NewCatalogNotFoundError(name)
	}
	return s.load(name, files[0])
}

// GetVersion retrieves one version of a catalog.
func (s *FilesystemCatalogStorage) GetVersion(ctx context.Context, name string, version int) (*StoredCatalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateCatalogName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}
	files, err := s.versionFiles(name)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if f.version == version {
			return s.load(name, f)
		}
	}
	return nil, NewVersionNotFoundError(name, version)
}

// Save writes a new YAML version file.
func (s *FilesystemCatalogStorage) Save(ctx context.Context, sc *StoredCatalog) error {
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

	files, err := s.versionFiles(sc.Name)
	if err != nil {
		return err
	}
	next := 1
	if len(files) > 0 {
		next = files[0].version + 1
	}

	dir := filepath.Join(s.root, sc.Name)
	if err := os.MkdirAll(dir, FilesystemDirPermissions); err != nil {
		return NewStorageError(ErrMsgStorageWrite, sc.Name, err)
	}

	now := time.Now().UTC()
	id := uuid.NewString()
	data, err := yaml.Marshal(filesystemCatalogFile{
		ID:                id,
		CreatedAt:         now,
		CreatedBy:         sc.CreatedBy,
		CatalogDefinition: sc.Definition,
	})
	if err != nil {
		return NewStorageError(ErrMsgStorageWrite, sc.Name, err)
	}
	path := filepath.Join(dir, "v"+strconv.Itoa(next)+CatalogExtYAML)
	if err := os.WriteFile(path, data, FilesystemFilePermissions); err != nil {
		return NewStorageError(ErrMsgStorageWrite, sc.Name, err)
	}

	sc.ID = id
	sc.Version = next
	sc.CreatedAt = now
	return nil
}

// Delete removes the catalog directory.
func (s *FilesystemCatalogStorage) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateCatalogName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}
	dir := filepath.Join(s.root, name)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return NewCatalogNotFoundError(name)
	}
	if err := os.RemoveAll(dir); err != nil {
		return NewStorageError(ErrMsgStorageDelete, name, err)
	}
	return nil
}

// List returns the names of directories holding at least one version.
func (s *FilesystemCatalogStorage) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, NewStorageError(ErrMsgStorageRead, s.root, err)
	}
	names := []string{}
	for _, e := range entries {
		if !e.IsDir() || validateCatalogName(e.Name()) != nil {
			continue
		}
		files, err := s.versionFiles(e.Name())
		if err != nil {
			return nil, err
		}
		if len(files) > 0 {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ListVersions returns the version numbers of a catalog, newest first.
func (s *FilesystemCatalogStorage) ListVersions(ctx context.Context, name string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateCatalogName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}
	files, err := s.versionFiles(name)
	if err != nil {
		return nil, err
	}
	versions := make([]int, len(files))
	for i, f := range files {
		versions[i] = f.version
	}
	return versions, nil
}

// Close marks the storage closed.
func (s *FilesystemCatalogStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

type versionFile struct {
	version int
	path    string
	format  CatalogFormat
}

// versionFiles lists the version files of a catalog, newest first. When two
// files claim the same version the first in directory order wins.
func (s *FilesystemCatalogStorage) versionFiles(name string) ([]versionFile, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, name))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, NewStorageError(ErrMsgStorageRead, name, err)
	}

	seen := make(map[int]bool)
	var files []versionFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		format, ok := CatalogFormatForPath(e.Name())
		if !ok {
			continue
		}
		version := parseVersionFileName(e.Name())
		if version <= 0 || seen[version] {
			continue
		}
		seen[version] = true
		files = append(files, versionFile{
			version: version,
			path:    filepath.Join(s.root, name, e.Name()),
			format:  format,
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].version > files[j].version })
	return files, nil
}

func (s *FilesystemCatalogStorage) load(name string, f versionFile) (*StoredCatalog, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, NewStorageError(ErrMsgStorageRead, name, err)
	}

	sc := &StoredCatalog{Name: name, Version: f.version}
	if f.format == CatalogFormatYAML {
		var file filesystemCatalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, NewStorageError(ErrMsgStorageRead, name, err)
		}
		sc.ID = file.ID
		sc.CreatedAt = file.CreatedAt
		sc.CreatedBy = file.CreatedBy
		sc.Definition = file.CatalogDefinition
	} else {
		def, err := DecodeCatalogDefinition(data, f.format, f.path)
		if err != nil {
			return nil, NewStorageError(ErrMsgStorageRead, name, err)
		}
		sc.Definition = def
	}
	if sc.CreatedAt.IsZero() {
		if info, err := os.Stat(f.path); err == nil {
			sc.CreatedAt = info.ModTime()
		}
	}
	return sc, nil
}

// parseVersionFileName extracts N from "vN.ext". Returns 0 when the name
// does not follow the pattern.
func parseVersionFileName(name string) int {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if !strings.HasPrefix(base, "v") {
		return 0
	}
	n, err := strconv.Atoi(base[1:])
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
