// Package storage holds the blob backends the analytics collection can live in.
// Every backend stores the whole collection as one opaque byte slice and
// replaces it wholesale on Save.
package storage

import "context"

// Backend loads and replaces a single blob.
type Backend interface {
	// Name identifies the backend in logs, metrics and /health.
	Name() string
	// Load returns the current blob, or nil with no error when nothing has been stored yet.
	Load(ctx context.Context) ([]byte, error)
	// Save replaces the blob.
	Save(ctx context.Context, data []byte) error
}
