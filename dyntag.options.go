package dyntag

import (
	"go.uber.org/zap"
)

// Option is a functional option for configuring the Engine.
type Option func(*engineConfig)

// engineConfig holds the internal configuration for an Engine.
type engineConfig struct {
	openMarker  string
	closeMarker string
	catalog     *Catalog
	logger      *zap.Logger
}

// defaultEngineConfig returns the default engine configuration.
func defaultEngineConfig() *engineConfig {
	return &engineConfig{
		openMarker:  DefaultOpenMarker,
		closeMarker: DefaultCloseMarker,
	}
}

// WithMarkers sets custom wrapper markers.
// Default: "@tags()" and "@endtags()"
func WithMarkers(open, close string) Option {
	return func(c *engineConfig) {
		if open != "" {
			c.openMarker = open
		}
		if close != "" {
			c.closeMarker = close
		}
	}
}

// WithCatalog sets the catalog the engine parses and validates against.
// Default: DefaultCatalog()
func WithCatalog(catalog *Catalog) Option {
	return func(c *engineConfig) {
		c.catalog = catalog
	}
}

// WithLogger sets the logger for the engine.
// Default: nil (no logging)
func WithLogger(logger *zap.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}
