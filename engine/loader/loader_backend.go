package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-soft/engine/model"
)

// loaderBackend defines the generic interface for reading geometry from files or streams.
// Concrete implementations (e.g., objLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load reads geometry from the given file path.
	// The file is closed before Load returns, on success and on failure.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *model.Geometry: the parsed geometry
	//   - error: error if opening or parsing fails
	Load(path string) (*model.Geometry, error)

	// LoadReader reads geometry from a stream. The caller owns the stream.
	//
	// Parameters:
	//   - r: the reader providing model data
	//
	// Returns:
	//   - *model.Geometry: the parsed geometry
	//   - error: error if parsing fails
	LoadReader(r io.Reader) (*model.Geometry, error)

	// Extensions lists the lower-case file extensions (with leading dot) this backend accepts.
	//
	// Returns:
	//   - []string: accepted extensions
	Extensions() []string
}
