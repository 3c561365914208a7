package model

import (
	"fmt"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-soft/common"
	"github.com/go-gl/mathgl/mgl32"
)

// mesh is the implementation of the Mesh interface.
type mesh struct {
	mu sync.RWMutex

	name          string
	vertices      []Vertex
	triangleCount int
	center        mgl32.Vec3
	boundingMin   mgl32.Vec3
	boundingMax   mgl32.Vec3
	released      bool
}

// Mesh defines the interface for a render-ready triangle soup.
// Every three consecutive vertices form one triangle; there is no index buffer.
// A Mesh is immutable after construction until it is released.
type Mesh interface {
	// Name retrieves the mesh identifier.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// TriangleCount returns the number of triangles in the mesh.
	// A released mesh reports zero.
	//
	// Returns:
	//   - int: the triangle count
	TriangleCount() int

	// VertexCount returns the number of vertices, always 3 * TriangleCount().
	//
	// Returns:
	//   - int: the vertex count
	VertexCount() int

	// Vertex returns a copy of the vertex at index i.
	//
	// Parameters:
	//   - i: vertex index in [0, VertexCount())
	//
	// Returns:
	//   - Vertex: the vertex
	Vertex(i int) Vertex

	// Triangle returns copies of the three corners of triangle i, in corner order.
	//
	// Parameters:
	//   - i: triangle index in [0, TriangleCount())
	//
	// Returns:
	//   - [3]Vertex: the triangle corners
	Triangle(i int) [3]Vertex

	// Vertices returns a copy of the flat vertex buffer.
	//
	// Returns:
	//   - []Vertex: the vertices, 3 per triangle
	Vertices() []Vertex

	// Center returns the midpoint of the axis-aligned bounding box of all vertex positions.
	//
	// Returns:
	//   - mgl32.Vec3: the bounding box center
	Center() mgl32.Vec3

	// BoundingMin returns the minimum corner of the axis-aligned bounding box.
	//
	// Returns:
	//   - mgl32.Vec3: the component-wise minimum position
	BoundingMin() mgl32.Vec3

	// BoundingMax returns the maximum corner of the axis-aligned bounding box.
	//
	// Returns:
	//   - mgl32.Vec3: the component-wise maximum position
	BoundingMax() mgl32.Vec3

	// Release drops the vertex buffer. Releasing twice returns ErrMeshReleased.
	//
	// Returns:
	//   - error: ErrMeshReleased if the mesh was already released
	Release() error

	// Released reports whether Release has been called.
	//
	// Returns:
	//   - bool: true once the mesh is released
	Released() bool
}

var _ Mesh = &mesh{}

// BuildMesh resolves indexed geometry into a flat triangle soup.
// For every face corner i it reads Positions[PositionIndices[i]], Texcoords[TexcoordIndices[i]]
// and Normals[NormalIndices[i]]. When tangents are present the tangent is read at the corner's
// position index, otherwise DefaultTangent is used. The bounding box is accumulated in the same pass.
// Every index is bounds-checked before use; the first violation aborts construction.
//
// Parameters:
//   - g: the parsed geometry
//   - options: functional options to configure the mesh
//
// Returns:
//   - Mesh: the built mesh, owning a freshly allocated vertex buffer
//   - error: ErrIndexCountMismatch, ErrNotTriangulated or an *IndexRangeError
func BuildMesh(g Geometry, options ...MeshBuilderOption) (Mesh, error) {
	corners := len(g.PositionIndices)
	if len(g.TexcoordIndices) != corners || len(g.NormalIndices) != corners {
		return nil, fmt.Errorf("%w: %d positions, %d texcoords, %d normals",
			ErrIndexCountMismatch, corners, len(g.TexcoordIndices), len(g.NormalIndices))
	}
	if corners%3 != 0 {
		return nil, fmt.Errorf("%w: %d corners", ErrNotTriangulated, corners)
	}

	m := &mesh{
		vertices:      make([]Vertex, corners),
		triangleCount: corners / 3,
	}
	for _, option := range options {
		option(m)
	}

	inf := float32(math.Inf(1))
	bbMin := mgl32.Vec3{inf, inf, inf}
	bbMax := mgl32.Vec3{-inf, -inf, -inf}

	for i := 0; i < corners; i++ {
		pi, ti, ni := g.PositionIndices[i], g.TexcoordIndices[i], g.NormalIndices[i]
		if err := checkIndex("position", i, pi, len(g.Positions)); err != nil {
			return nil, err
		}
		if err := checkIndex("texcoord", i, ti, len(g.Texcoords)); err != nil {
			return nil, err
		}
		if err := checkIndex("normal", i, ni, len(g.Normals)); err != nil {
			return nil, err
		}

		tangent := DefaultTangent
		if g.Tangents != nil {
			if err := checkIndex("tangent", i, pi, len(g.Tangents)); err != nil {
				return nil, err
			}
			tangent = g.Tangents[pi]
		}

		position := g.Positions[pi]
		m.vertices[i] = Vertex{
			Position: position,
			Texcoord: g.Texcoords[ti],
			Normal:   g.Normals[ni],
			Tangent:  tangent,
		}
		bbMin = common.MinVec3(bbMin, position)
		bbMax = common.MaxVec3(bbMax, position)
	}

	if corners > 0 {
		m.boundingMin = bbMin
		m.boundingMax = bbMax
		m.center = bbMin.Add(bbMax).Mul(0.5)
	}

	common.Logger().Debug("mesh built",
		"name", m.name,
		"positions", len(g.Positions),
		"texcoords", len(g.Texcoords),
		"normals", len(g.Normals),
		"tangents", len(g.Tangents),
		"triangles", m.triangleCount,
	)
	return m, nil
}

func checkIndex(attribute string, corner, index, length int) error {
	if index < 0 || index >= length {
		return &IndexRangeError{Attribute: attribute, Corner: corner, Index: index, Len: length}
	}
	return nil
}

func (m *mesh) Name() string {
	return m.name
}

func (m *mesh) TriangleCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.triangleCount
}

func (m *mesh) VertexCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vertices)
}

func (m *mesh) Vertex(i int) Vertex {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.vertices[i]
}

func (m *mesh) Triangle(i int) [3]Vertex {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return [3]Vertex{m.vertices[i*3], m.vertices[i*3+1], m.vertices[i*3+2]}
}

func (m *mesh) Vertices() []Vertex {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Vertex, len(m.vertices))
	copy(out, m.vertices)
	return out
}

func (m *mesh) Center() mgl32.Vec3 {
	return m.center
}

func (m *mesh) BoundingMin() mgl32.Vec3 {
	return m.boundingMin
}

func (m *mesh) BoundingMax() mgl32.Vec3 {
	return m.boundingMax
}

func (m *mesh) Release() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.released {
		return fmt.Errorf("release %q: %w", m.name, ErrMeshReleased)
	}
	m.vertices = nil
	m.triangleCount = 0
	m.released = true
	return nil
}

func (m *mesh) Released() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.released
}
