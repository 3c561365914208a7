package common

import "github.com/go-gl/mathgl/mgl32"

// Clip-space frustum planes. A point p is inside plane i when the matching
// inequality holds: -w <= x, x <= w, -w <= y, y <= w, -w <= z, z <= w.
const (
	FrustumLeft   = 0
	FrustumRight  = 1
	FrustumBottom = 2
	FrustumTop    = 3
	FrustumNear   = 4
	FrustumFar    = 5
)

// Outcode returns a bit set with bit i set when the clip-space point p lies outside frustum plane i.
//
// Parameters:
//   - p: homogeneous clip-space position
//
// Returns:
//   - uint8: the outcode, zero when p is inside every plane
func Outcode(p mgl32.Vec4) uint8 {
	var code uint8
	w := p[3]
	if p[0] < -w {
		code |= 1 << FrustumLeft
	}
	if p[0] > w {
		code |= 1 << FrustumRight
	}
	if p[1] < -w {
		code |= 1 << FrustumBottom
	}
	if p[1] > w {
		code |= 1 << FrustumTop
	}
	if p[2] < -w {
		code |= 1 << FrustumNear
	}
	if p[2] > w {
		code |= 1 << FrustumFar
	}
	return code
}

// TriangleOutside reports whether all three clip-space points lie outside the same frustum plane,
// in which case the triangle cannot cover any pixel.
//
// Parameters:
//   - a, b, c: clip-space positions of the triangle corners
//
// Returns:
//   - bool: true if the triangle can be trivially rejected
func TriangleOutside(a, b, c mgl32.Vec4) bool {
	return Outcode(a)&Outcode(b)&Outcode(c) != 0
}
