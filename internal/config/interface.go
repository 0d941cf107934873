package config

import "context"

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads the document at path and translates it into the
	// format-agnostic value tree.
	Load(ctx context.Context, path string) (*Document, error)
}

// Document is a loaded configuration file. Its embedded Scope is the root
// namespace.
type Document struct {
	Scope
	Source string
}
