package dyntag

import (
	"time"

	"github.com/itsatony/go-dyntag/internal"
)

// Wrapper markers
const (
	DefaultOpenMarker  = internal.StrOpenMarker
	DefaultCloseMarker = internal.StrCloseMarker
)

// SideChannelSuffix is appended to a base attribute name to form the name of
// its dynamic override attribute.
const SideChannelSuffix = "DynamicTag"

// Return types a field or modifier can produce
const (
	ReturnTypeText    ReturnType = "text"
	ReturnTypeNumber  ReturnType = "number"
	ReturnTypeDate    ReturnType = "date"
	ReturnTypeBoolean ReturnType = "boolean"
	ReturnTypeImage   ReturnType = "image"
	ReturnTypeList    ReturnType = "list"
)

// Declared modifier argument types
const (
	ArgTypeText    ArgType = "text"
	ArgTypeNumber  ArgType = "number"
	ArgTypeBoolean ArgType = "boolean"
	ArgTypeEnum    ArgType = "enum"
)

// Concrete argument value kinds. ArgKindRaw holds arguments of unknown
// modifiers and values that do not convert to their declared type.
const (
	ArgKindText    ArgKind = "text"
	ArgKindNumber  ArgKind = "number"
	ArgKindBoolean ArgKind = "boolean"
	ArgKindEnum    ArgKind = "enum"
	ArgKindRaw     ArgKind = "raw"
)

// Built-in context names
const (
	ContextContent  Context = "content"
	ContextVisitor  Context = "visitor"
	ContextSite     Context = "site"
	ContextTaxonomy Context = "term"
)

// Boolean literals in argument lists
const (
	BoolLiteralTrue  = "true"
	BoolLiteralFalse = "false"
)

// Error message constants - all messages are constants
const (
	ErrMsgCatalogInvalid        = "invalid catalog definition"
	ErrMsgEmptyKey              = "key cannot be empty"
	ErrMsgInvalidKey            = "key is not a valid identifier"
	ErrMsgDuplicateGroup        = "duplicate group key"
	ErrMsgDuplicateField        = "duplicate field key"
	ErrMsgDuplicateModifier     = "duplicate modifier key"
	ErrMsgDuplicateArgument     = "duplicate argument key"
	ErrMsgUnknownReturnType     = "unknown return type"
	ErrMsgUnknownArgType        = "unknown argument type"
	ErrMsgEnumWithoutChoices    = "enum argument requires choices"
	ErrMsgDefaultNotInChoices   = "default value is not one of the choices"
	ErrMsgDefaultNotConvertible = "default value does not match argument type"
	ErrMsgNoAcceptedTypes       = "modifier accepts no input types"
	ErrMsgCatalogDecode         = "failed to decode catalog definition"
	ErrMsgCatalogFormat         = "unsupported catalog file format"
	ErrMsgCatalogRead           = "failed to read catalog file"
	ErrMsgSessionClosed         = "builder session is not open"
	ErrMsgSegmentIndex          = "segment index out of range"
	ErrMsgInvalidToken          = "token group and field must be identifiers"
	ErrMsgInvalidModifierKey    = "modifier key must be an identifier"
	ErrMsgCursorOutOfRange      = "cursor out of range"
	ErrMsgInvalidMarkers        = "open and close markers must differ and not contain each other"
)

// Storage error message constants
const (
	ErrMsgCatalogNotFound         = "catalog not found"
	ErrMsgStorageClosed           = "catalog storage is closed"
	ErrMsgEmptyCatalogName        = "catalog name cannot be empty"
	ErrMsgInvalidCatalogName      = "catalog name contains invalid characters"
	ErrMsgInvalidStorageRoot      = "invalid storage root directory"
	ErrMsgStorageRead             = "failed to read stored catalog"
	ErrMsgStorageWrite            = "failed to write stored catalog"
	ErrMsgStorageDelete           = "failed to delete stored catalog"
	ErrMsgStorageQuery            = "catalog storage query failed"
	ErrMsgStorageConnect          = "failed to connect to catalog storage"
	ErrMsgStorageMigrate          = "failed to migrate catalog storage"
	ErrMsgEmptyConnString         = "connection string cannot be empty"
	ErrMsgUnknownDriver           = "unknown catalog storage driver"
	ErrMsgUnknownDialect          = "unknown SQL dialect"
	ErrMsgNilCatalog              = "catalog definition cannot be nil"
	ErrMsgNilStorageDriver        = "storage driver is nil"
	ErrMsgDriverAlreadyRegistered = "storage driver already registered"
	ErrMsgStorageAlreadyClosed    = "catalog storage already closed"
	ErrMsgVersionNotFound         = "catalog version not found"
)

// Diagnostic message constants
const (
	DiagMsgUnknownGroup         = "unknown data group"
	DiagMsgUnknownField         = "unknown field"
	DiagMsgGroupNotApplicable   = "data group is not available in this context"
	DiagMsgUnknownModifier      = "unknown modifier"
	DiagMsgModifierTypeMismatch = "modifier does not accept the value flowing into it"
	DiagMsgMissingArgument      = "missing required argument"
	DiagMsgInvalidNumber        = "argument is not a number"
	DiagMsgInvalidBoolean       = "argument is not true or false"
	DiagMsgInvalidChoice        = "argument is not one of the allowed choices"
	DiagMsgTooManyArguments     = "too many arguments"
)

// Error code constants for categorization
const (
	ErrCodeCatalog = "DYNTAG_CATALOG"
	ErrCodeSession = "DYNTAG_SESSION"
	ErrCodeStorage = "DYNTAG_STORAGE"
	ErrCodeConfig  = "DYNTAG_CONFIG"
)

// Metadata keys for cuserr.WithMetadata
const (
	MetaKeyGroup     = "group"
	MetaKeyField     = "field"
	MetaKeyModifier  = "modifier"
	MetaKeyArgument  = "argument"
	MetaKeyValue     = "value"
	MetaKeyState     = "state"
	MetaKeyIndex     = "index"
	MetaKeyLength    = "length"
	MetaKeyPath      = "path"
	MetaKeyName      = "name"
	MetaKeyDriver    = "driver"
	MetaKeyReason    = "reason"
	MetaKeySessionID = "session_id"
	MetaKeyOpen      = "open_marker"
	MetaKeyClose     = "close_marker"
	MetaKeyCursor    = "cursor"
)

// Log message constants
const (
	LogMsgEngineCreated       = "engine created"
	LogMsgParseStart          = "starting parse"
	LogMsgParseEnd            = "parse complete"
	LogMsgBypassLiteral       = "value is not wrapped, bypassing lexer"
	LogMsgFragmentDegraded    = "malformed fragment kept as literal text"
	LogMsgValidateEnd         = "validation complete"
	LogMsgSessionOpened       = "builder session opened"
	LogMsgSessionEdited       = "builder session edited"
	LogMsgSessionCommitted    = "builder session committed"
	LogMsgSessionCancelled    = "builder session cancelled"
	LogMsgCatalogLoaded       = "catalog loaded"
	LogMsgCatalogReloaded     = "catalog reloaded"
	LogMsgCatalogReloadFailed = "catalog reload failed, keeping previous catalog"
	LogMsgWatcherStopped      = "catalog watcher stopped"
	LogMsgStorageMigrated     = "catalog storage migrated"
)

// Log field names
const (
	LogFieldSource      = "source_length"
	LogFieldSegments    = "segment_count"
	LogFieldDiagnostics = "diagnostic_count"
	LogFieldContext     = "context"
	LogFieldSessionID   = "session_id"
	LogFieldLabel       = "label"
	LogFieldPath        = "path"
	LogFieldGroups      = "group_count"
	LogFieldModifiers   = "modifier_count"
	LogFieldFragment    = "fragment"
	LogFieldError       = "error"
	LogFieldDriver      = "driver"
	LogFieldVersion     = "version"
	LogFieldCatalog     = "catalog"
)

// Catalog file extensions
const (
	CatalogExtYAML = ".yaml"
	CatalogExtYML  = ".yml"
	CatalogExtHCL  = ".hcl"
	CatalogExtJSON = ".json"
)

// Storage driver names
const (
	StorageDriverNameMemory     = "memory"
	StorageDriverNameFilesystem = "filesystem"
	StorageDriverNamePostgres   = "postgres"
	StorageDriverNameSQLite     = "sqlite"
)

// Storage defaults
const (
	SQLDefaultTablePrefix     = "dyntag_"
	SQLDefaultQueryTimeout    = 30 * time.Second
	SQLDefaultMaxOpenConns    = 10
	SQLDefaultMaxIdleConns    = 2
	SQLDefaultConnMaxLifetime = 5 * time.Minute
	FilesystemDirPermissions  = 0o755
	FilesystemFilePermissions = 0o644
)

// Cache defaults
const (
	DefaultCacheTTL         = 5 * time.Minute
	DefaultCacheMaxEntries  = 256
	DefaultNegativeCacheTTL = 30 * time.Second
)

// Watcher defaults
const (
	DefaultWatchDebounce = 100 * time.Millisecond
)
