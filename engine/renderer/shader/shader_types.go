package shader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrUnknownKind is returned when a shader kind name or value is not part of the closed set.
var ErrUnknownKind = errors.New("unknown shader kind")

// Attributes is the per-corner input block shared by every shader pair.
type Attributes struct {
	Position mgl32.Vec3
	Texcoord mgl32.Vec2
	Normal   mgl32.Vec3
	Tangent  mgl32.Vec4
}

// Varyings is the vertex-to-fragment block shared by every shader pair.
type Varyings struct {
	Texcoord      mgl32.Vec2
	WorldPosition mgl32.Vec3
	WorldNormal   mgl32.Vec3
}

// Uniforms is the per-draw block shared by every shader pair.
// The light matrices are carried for shadow-mapping consumers and are not read by the built-in pairs.
type Uniforms struct {
	ModelMatrix  mgl32.Mat4
	NormalMatrix mgl32.Mat3

	CameraPos        mgl32.Vec3
	CameraViewMatrix mgl32.Mat4
	CameraProjMatrix mgl32.Mat4

	LightDir        mgl32.Vec3
	LightViewMatrix mgl32.Mat4
	LightProjMatrix mgl32.Mat4

	BaseTexture *texture.Texture
}

// Light is a directional light given in spherical angles.
// Theta is the azimuth around +Y measured from +Z, Phi the polar angle from +Y, both in radians.
type Light struct {
	Theta float32
	Phi   float32
}

// DefaultLight returns a light at 45° azimuth and 45° elevation from the zenith.
func DefaultLight() Light {
	return Light{Theta: mgl32.DegToRad(45), Phi: mgl32.DegToRad(45)}
}

// Kind selects one member of the closed set of shader pairs.
type Kind int

const (
	// KindTextured samples the base texture without lighting.
	KindTextured Kind = iota
	// KindLambert modulates the base texture by ambient plus diffuse directional light.
	KindLambert
	// KindNormal visualises the world-space normal as a color.
	KindNormal
)

var kindNames = map[Kind]string{
	KindTextured: "textured",
	KindLambert:  "lambert",
	KindNormal:   "normal",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind resolves a case-insensitive shader kind name.
//
// Parameters:
//   - name: one of "textured", "lambert" or "normal"
//
// Returns:
//   - Kind: the parsed kind
//   - error: ErrUnknownKind if the name is not recognised
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}
