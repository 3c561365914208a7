package loader

import (
	"fmt"
	"io"
	"os"

	"github.com/Carmen-Shannon/oxy-soft/engine/model"
)

// objLoaderBackendImpl is the implementation of objLoaderBackend.
type objLoaderBackendImpl struct{}

// objLoaderBackend is a loaderBackend implementation for Wavefront OBJ text files.
type objLoaderBackend interface {
	loaderBackend
}

var _ objLoaderBackend = &objLoaderBackendImpl{}

// newOBJLoaderBackend creates a new OBJ loader backend.
//
// Returns:
//   - objLoaderBackend: the loader backend for .obj files
func newOBJLoaderBackend() objLoaderBackend {
	return &objLoaderBackendImpl{}
}

func (b *objLoaderBackendImpl) Load(path string) (*model.Geometry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	return ParseOBJ(file)
}

func (b *objLoaderBackendImpl) LoadReader(r io.Reader) (*model.Geometry, error) {
	return ParseOBJ(r)
}

func (b *objLoaderBackendImpl) Extensions() []string {
	return []string{".obj"}
}
