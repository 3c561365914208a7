package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MinVec3 returns the component-wise minimum of a and b.
func MinVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		min(a[0], b[0]),
		min(a[1], b[1]),
		min(a[2], b[2]),
	}
}

// MaxVec3 returns the component-wise maximum of a and b.
func MaxVec3(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		max(a[0], b[0]),
		max(a[1], b[1]),
		max(a[2], b[2]),
	}
}

// NormalMatrix returns the inverse transpose of the upper-left 3x3 of a model matrix.
// Normals transformed by this matrix stay perpendicular to surfaces under non-uniform scale.
//
// Parameters:
//   - model: the model (object to world) matrix
//
// Returns:
//   - mgl32.Mat3: the normal matrix, or identity if the model matrix is singular
func NormalMatrix(model mgl32.Mat4) mgl32.Mat3 {
	m := model.Mat3()
	if m.Det() == 0 {
		return mgl32.Ident3()
	}
	return m.Inv().Transpose()
}

// Orthographic builds a symmetric orthographic projection from half extents and a depth range.
//
// Parameters:
//   - right: half width of the view volume
//   - top: half height of the view volume
//   - near: near plane distance
//   - far: far plane distance
//
// Returns:
//   - mgl32.Mat4: the projection matrix
func Orthographic(right, top, near, far float32) mgl32.Mat4 {
	return mgl32.Ortho(-right, right, -top, top, near, far)
}

// SphericalDirection returns the unit vector for polar angle phi (from +Y) and azimuth theta (around +Y, from +Z).
//
// Parameters:
//   - theta: azimuth in radians
//   - phi: polar angle in radians
//
// Returns:
//   - mgl32.Vec3: the direction
func SphericalDirection(theta, phi float32) mgl32.Vec3 {
	st, ct := math.Sincos(float64(theta))
	sp, cp := math.Sincos(float64(phi))
	return mgl32.Vec3{float32(sp * st), float32(cp), float32(sp * ct)}
}

// Clamp01 clamps v into [0, 1].
func Clamp01(v float32) float32 {
	return mgl32.Clamp(v, 0, 1)
}

// ColorToRGBA8 converts a linear [0,1] color to 8-bit channels, clamping out-of-range values.
//
// Parameters:
//   - c: RGBA color with components in [0, 1]
//
// Returns:
//   - r, g, b, a: the 8-bit channels
func ColorToRGBA8(c mgl32.Vec4) (r, g, b, a uint8) {
	return uint8(Clamp01(c[0])*255 + 0.5),
		uint8(Clamp01(c[1])*255 + 0.5),
		uint8(Clamp01(c[2])*255 + 0.5),
		uint8(Clamp01(c[3])*255 + 0.5)
}
