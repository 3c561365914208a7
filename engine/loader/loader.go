package loader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-soft/common"
	"github.com/Carmen-Shannon/oxy-soft/engine/model"
)

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeOBJ selects the Wavefront OBJ loader backend.
	BackendTypeOBJ LoaderBackendType = iota
)

var (
	// ErrUnsupportedFormat is returned when a file extension is not handled by the loader's backend.
	ErrUnsupportedFormat = errors.New("unsupported model format")

	// ErrNotLoaded is returned when releasing a name that is not in the cache.
	ErrNotLoaded = errors.New("mesh not loaded")
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	meshCache map[string]model.Mesh

	backend loaderBackend
}

// Loader defines the public-facing interface for loading and caching meshes.
// It abstracts the file format behind a backend and manages a cache of previously loaded meshes.
// Loader is safe for concurrent use; each individual parse and build runs sequentially.
type Loader interface {
	// Load parses a model file, builds a mesh and caches the result.
	// If the mesh is already cached (by file path), the cached version is returned.
	// The backend is selected based on the file extension (.obj → OBJ backend).
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - model.Mesh: the loaded and cached mesh
	//   - error: error if opening, parsing or building fails
	Load(path string) (model.Mesh, error)

	// LoadReader parses a model from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key for the loaded mesh
	//   - r: the reader providing model data
	//
	// Returns:
	//   - model.Mesh: the loaded mesh
	//   - error: error if parsing or building fails
	LoadReader(name string, r io.Reader) (model.Mesh, error)

	// Get retrieves a cached mesh by name. Returns nil if not found, or if the mesh was
	// released through Mesh.Release, in which case the stale entry is dropped.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - model.Mesh: the cached mesh or nil
	Get(name string) model.Mesh

	// Meshes returns a copy of the mesh cache without released meshes.
	//
	// Returns:
	//   - map[string]model.Mesh: all cached meshes keyed by name
	Meshes() map[string]model.Mesh

	// Release releases the named mesh and removes it from the cache.
	// A later Load of the same name parses the file again.
	//
	// Parameters:
	//   - name: the cache key of the mesh
	//
	// Returns:
	//   - error: ErrNotLoaded if no live mesh is cached under name
	Release(name string) error

	// ReleaseAll releases every cached mesh and empties the cache.
	//
	// Returns:
	//   - error: the joined release errors, if any
	ReleaseAll() error
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeOBJ)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		mu:        sync.RWMutex{},
		meshCache: make(map[string]model.Mesh),
	}

	switch backendType {
	case BackendTypeOBJ:
		l.backend = newOBJLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}
	return l
}

// MustLoad loads a mesh and panics on any failure.
// It is intended for programs that treat a missing or corrupt model as unrecoverable.
//
// Parameters:
//   - l: the loader to use
//   - path: the file path to the model file
//
// Returns:
//   - model.Mesh: the loaded mesh
func MustLoad(l Loader, path string) model.Mesh {
	m, err := l.Load(path)
	if err != nil {
		panic(fmt.Sprintf("failed to load mesh: %v", err))
	}
	return m
}

func (l *loader) Load(path string) (model.Mesh, error) {
	if cached := l.Get(path); cached != nil {
		return cached, nil
	}

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	geometry, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	return l.build(path, geometry)
}

func (l *loader) LoadReader(name string, r io.Reader) (model.Mesh, error) {
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}
	if l.backend == nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, ErrUnsupportedFormat)
	}

	geometry, err := l.backend.LoadReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}

	return l.build(name, geometry)
}

func (l *loader) Get(name string) model.Mesh {
	l.mu.RLock()
	m := l.meshCache[name]
	l.mu.RUnlock()

	if m == nil || !m.Released() {
		return m
	}
	l.evict(name, m)
	return nil
}

func (l *loader) Meshes() map[string]model.Mesh {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]model.Mesh, len(l.meshCache))
	for k, v := range l.meshCache {
		if !v.Released() {
			result[k] = v
		}
	}
	return result
}

func (l *loader) Release(name string) error {
	l.mu.Lock()
	m, ok := l.meshCache[name]
	delete(l.meshCache, name)
	l.mu.Unlock()

	if !ok || m.Released() {
		return fmt.Errorf("release %q: %w", name, ErrNotLoaded)
	}
	return m.Release()
}

func (l *loader) ReleaseAll() error {
	l.mu.Lock()
	cache := l.meshCache
	l.meshCache = make(map[string]model.Mesh)
	l.mu.Unlock()

	var errs []error
	for _, m := range cache {
		if m.Released() {
			continue
		}
		if err := m.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// build turns parsed geometry into a mesh and stores it under name.
// If another goroutine cached the same name first, the cached mesh wins and the new one is released.
func (l *loader) build(name string, geometry *model.Geometry) (model.Mesh, error) {
	m, err := model.BuildMesh(*geometry, model.WithName(name))
	if err != nil {
		return nil, fmt.Errorf("failed to build mesh %q: %w", name, err)
	}

	l.mu.Lock()
	if existing, ok := l.meshCache[name]; ok && !existing.Released() {
		l.mu.Unlock()
		_ = m.Release()
		return existing, nil
	}
	l.meshCache[name] = m
	l.mu.Unlock()

	common.Logger().Info("mesh loaded", "name", name, "triangles", m.TriangleCount(), "center", m.Center())
	return m, nil
}

// evict drops a mesh that was released directly through Mesh.Release, unless the entry has
// already been replaced.
func (l *loader) evict(name string, m model.Mesh) {
	l.mu.Lock()
	if l.meshCache[name] == m {
		delete(l.meshCache, name)
	}
	l.mu.Unlock()
	common.Logger().Debug("evicted released mesh", "name", name)
}

// resolveBackend selects the loader backend based on the file extension.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if l.backend == nil || !slices.Contains(l.backend.Extensions(), ext) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, common.Coalesce(ext, path))
	}
	return l.backend, nil
}
