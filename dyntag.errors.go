package dyntag

import (
	"errors"
	"strconv"

	"github.com/itsatony/go-cuserr"
)

// Sentinel errors. Constructors wrap them so callers can use errors.Is.
var (
	// ErrSessionClosed is returned when a builder session is used after
	// commit or cancel, or was never opened.
	ErrSessionClosed = errors.New(ErrMsgSessionClosed)
	// ErrSegmentIndex is returned when an edit targets a missing segment.
	ErrSegmentIndex = errors.New(ErrMsgSegmentIndex)
	// ErrInvalidToken is returned when an edit supplies a token that cannot
	// be written in canonical form.
	ErrInvalidToken = errors.New(ErrMsgInvalidToken)
	// ErrCatalogNotFound is returned by catalog storage for unknown names.
	ErrCatalogNotFound = errors.New(ErrMsgCatalogNotFound)
	// ErrStorageClosed is returned by catalog storage after Close.
	ErrStorageClosed = errors.New(ErrMsgStorageClosed)
)

// NewCatalogDefinitionError creates an error for an invalid catalog definition.
func NewCatalogDefinitionError(msg string, subjectKey, subject string) error {
	return cuserr.NewValidationError(ErrCodeCatalog, ErrMsgCatalogInvalid+": "+msg).
		WithMetadata(MetaKeyReason, msg).
		WithMetadata(subjectKey, subject)
}

// NewCatalogDecodeError wraps a decoding failure for a catalog file.
func NewCatalogDecodeError(path string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeCatalog, ErrMsgCatalogDecode).
		WithMetadata(MetaKeyPath, path)
}

// NewCatalogFormatError creates an error for an unsupported catalog file extension.
func NewCatalogFormatError(path string) error {
	return cuserr.NewValidationError(ErrCodeCatalog, ErrMsgCatalogFormat).
		WithMetadata(MetaKeyPath, path)
}

// NewCatalogReadError wraps a failure to read a catalog file.
func NewCatalogReadError(path string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeCatalog, ErrMsgCatalogRead).
		WithMetadata(MetaKeyPath, path)
}

// NewSessionClosedError creates an error for operations on a non-open session.
func NewSessionClosedError(id string, state SessionState) error {
	return cuserr.WrapStdError(ErrSessionClosed, ErrCodeSession, ErrMsgSessionClosed).
		WithMetadata(MetaKeySessionID, id).
		WithMetadata(MetaKeyState, state.String())
}

// NewSegmentIndexError creates an error for an out-of-range segment index.
func NewSegmentIndexError(index, length int) error {
	return cuserr.WrapStdError(ErrSegmentIndex, ErrCodeSession, ErrMsgSegmentIndex).
		WithMetadata(MetaKeyIndex, strconv.Itoa(index)).
		WithMetadata(MetaKeyLength, strconv.Itoa(length))
}

// NewInvalidTokenError creates an error for a token with non-identifier keys.
func NewInvalidTokenError(group, field string) error {
	return cuserr.WrapStdError(ErrInvalidToken, ErrCodeSession, ErrMsgInvalidToken).
		WithMetadata(MetaKeyGroup, group).
		WithMetadata(MetaKeyField, field)
}

// NewInvalidModifierKeyError creates an error for a modifier key that is not an identifier.
func NewInvalidModifierKeyError(key string) error {
	return cuserr.WrapStdError(ErrInvalidToken, ErrCodeSession, ErrMsgInvalidModifierKey).
		WithMetadata(MetaKeyModifier, key)
}

// NewInvalidMarkersError creates an error for an unusable marker pair.
func NewInvalidMarkersError(open, close string) error {
	return cuserr.NewValidationError(ErrCodeConfig, ErrMsgInvalidMarkers).
		WithMetadata(MetaKeyOpen, open).
		WithMetadata(MetaKeyClose, close)
}

// NewCursorError creates an error for a cursor outside the session text.
func NewCursorError(cursor, length int) error {
	return cuserr.NewValidationError(ErrCodeSession, ErrMsgCursorOutOfRange).
		WithMetadata(MetaKeyCursor, strconv.Itoa(cursor)).
		WithMetadata(MetaKeyLength, strconv.Itoa(length))
}

// StorageError represents a catalog storage error.
type StorageError struct {
	Message string
	Name    string
	Version int
	Cause   error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	msg := e.Message
	if e.Name != "" {
		msg += ": " + e.Name
		if e.Version > 0 {
			msg += " v" + strconv.Itoa(e.Version)
		}
	}
	if e.Cause != nil && !errors.Is(e.Cause, ErrCatalogNotFound) && !errors.Is(e.Cause, ErrStorageClosed) {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewCatalogNotFoundError creates an error for a missing stored catalog.
func NewCatalogNotFoundError(name string) error {
	return &StorageError{Message: ErrMsgCatalogNotFound, Name: name, Cause: ErrCatalogNotFound}
}

// NewVersionNotFoundError creates an error for a missing catalog version.
func NewVersionNotFoundError(name string, version int) error {
	return &StorageError{Message: ErrMsgVersionNotFound, Name: name, Version: version, Cause: ErrCatalogNotFound}
}

// NewStorageClosedError creates an error for operations on closed storage.
func NewStorageClosedError() error {
	return &StorageError{Message: ErrMsgStorageClosed, Cause: ErrStorageClosed}
}

// NewStorageError wraps a backend failure.
func NewStorageError(msg, name string, cause error) error {
	return &StorageError{Message: msg, Name: name, Cause: cause}
}
