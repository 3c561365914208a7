package model

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultTangent is assigned to every vertex when the source geometry carries no tangent data.
var DefaultTangent = mgl32.Vec4{1, 0, 0, 1}

var (
	// ErrIndexOutOfRange is returned when a face-corner index does not address an element of its sequence.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrNotTriangulated is returned when the corner count is not a multiple of three.
	ErrNotTriangulated = errors.New("corner count is not a multiple of 3")

	// ErrIndexCountMismatch is returned when the position, texcoord and normal index sequences differ in length.
	ErrIndexCountMismatch = errors.New("index sequences differ in length")

	// ErrMeshReleased is returned when a released mesh is released again.
	ErrMeshReleased = errors.New("mesh already released")
)

// Vertex is a fully resolved, render-ready vertex.
type Vertex struct {
	Position mgl32.Vec3
	Texcoord mgl32.Vec2
	Normal   mgl32.Vec3
	Tangent  mgl32.Vec4
}

// Geometry holds the raw attribute sequences and face-corner indices produced by a parser.
// Indices are 0-based. Corner i of the geometry uses PositionIndices[i], TexcoordIndices[i]
// and NormalIndices[i]; every three consecutive corners form one triangle.
type Geometry struct {
	// Positions is the ordered list of object-space positions.
	Positions []mgl32.Vec3
	// Texcoords is the ordered list of texture coordinates.
	Texcoords []mgl32.Vec2
	// Normals is the ordered list of object-space normals.
	Normals []mgl32.Vec3
	// Tangents is the ordered list of tangents (xyz + handedness w). Nil means the source had none.
	// When present, tangents are addressed by the position index of each corner.
	Tangents []mgl32.Vec4

	PositionIndices []int
	TexcoordIndices []int
	NormalIndices   []int
}

// CornerCount returns the number of face corners referenced by the geometry.
func (g *Geometry) CornerCount() int {
	return len(g.PositionIndices)
}

// IndexRangeError describes a face-corner index that does not address an element of its sequence.
type IndexRangeError struct {
	// Attribute is the sequence being addressed ("position", "texcoord", "normal" or "tangent").
	Attribute string
	// Corner is the face-corner number (0-based) that carried the index.
	Corner int
	// Index is the offending 0-based index.
	Index int
	// Len is the length of the addressed sequence.
	Len int
}

func (e *IndexRangeError) Error() string {
	return fmt.Sprintf("corner %d: %s index %d out of range [0, %d)", e.Corner, e.Attribute, e.Index, e.Len)
}

func (e *IndexRangeError) Unwrap() error {
	return ErrIndexOutOfRange
}
