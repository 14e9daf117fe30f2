package dyntag

import (
	"strings"

	"github.com/itsatony/go-dyntag/internal"
	"go.uber.org/zap"
)

// Engine is the main entry point: it binds a catalog and a pair of wrapper
// markers to the lexer, parser, validator, serializer and builder sessions.
// An Engine is immutable and safe for concurrent use.
type Engine struct {
	catalog *Catalog
	config  *engineConfig
	logger  *zap.Logger
}

// New creates a new Engine with the given options.
func New(opts ...Option) (*Engine, error) {
	config := defaultEngineConfig()
	for _, opt := range opts {
		opt(config)
	}

	if config.openMarker == config.closeMarker ||
		strings.Contains(config.openMarker, config.closeMarker) ||
		strings.Contains(config.closeMarker, config.openMarker) {
		return nil, NewInvalidMarkersError(config.openMarker, config.closeMarker)
	}

	logger := config.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	catalog := config.catalog
	if catalog == nil {
		catalog = DefaultCatalog()
	}

	logger.Debug(LogMsgEngineCreated,
		zap.Int(LogFieldGroups, len(catalog.groups)),
		zap.Int(LogFieldModifiers, len(catalog.modifiers)))

	return &Engine{
		catalog: catalog,
		config:  config,
		logger:  logger,
	}, nil
}

// MustNew creates a new Engine and panics if there's an error.
func MustNew(opts ...Option) *Engine {
	engine, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return engine
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Markers returns the open and close wrapper markers.
func (e *Engine) Markers() (open, close string) {
	return e.config.openMarker, e.config.closeMarker
}

// Tokenize lexes raw with the engine's markers.
func (e *Engine) Tokenize(raw string) []Symbol {
	return internal.NewLexerWithConfig(raw, e.lexerConfig(), e.logger).Tokenize()
}

// Parse parses a stored attribute string for ctx. It never fails.
func (e *Engine) Parse(raw string, ctx Context) *Document {
	return parseValue(raw, e.lexerConfig(), e.catalog, ctx, e.logger)
}

// Validate checks doc against the engine's catalog in ctx.
func (e *Engine) Validate(doc *Document, ctx Context) []Diagnostic {
	diags := Validate(doc, e.catalog, ctx)
	e.logger.Debug(LogMsgValidateEnd,
		zap.String(LogFieldContext, string(ctx)),
		zap.Int(LogFieldDiagnostics, len(diags)))
	return diags
}

// Check parses and validates raw in one step.
func (e *Engine) Check(raw string, ctx Context) (*Document, []Diagnostic) {
	doc := e.Parse(raw, ctx)
	return doc, e.Validate(doc, ctx)
}

// Serialize renders doc in canonical form with the engine's markers.
func (e *Engine) Serialize(doc *Document) string {
	return serialize(doc, e.config.openMarker, e.config.closeMarker)
}

// Format parses raw and serializes it back in canonical form.
func (e *Engine) Format(raw string, ctx Context) string {
	return e.Serialize(e.Parse(raw, ctx))
}

// IsActive reports whether s is in dynamic mode.
func (e *Engine) IsActive(s string) bool {
	return isActive(s, e.config.openMarker, e.config.closeMarker)
}

// Wrap puts x in the engine's markers. See Wrap.
func (e *Engine) Wrap(x string) string {
	return wrap(x, e.config.openMarker, e.config.closeMarker)
}

// Unwrap strips the engine's markers from an active string. See Unwrap.
func (e *Engine) Unwrap(s string) string {
	return unwrap(s, e.config.openMarker, e.config.closeMarker)
}

func (e *Engine) lexerConfig() internal.LexerConfig {
	return internal.LexerConfig{
		OpenMarker:  e.config.openMarker,
		CloseMarker: e.config.closeMarker,
	}
}
