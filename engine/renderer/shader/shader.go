// Package shader provides the built-in shader pairs for the software pipeline. All pairs share
// one attribute, varying and uniform layout, so a mesh can be redrawn with any of them.
package shader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-soft/common"
	"github.com/Carmen-Shannon/oxy-soft/engine/camera"
	"github.com/Carmen-Shannon/oxy-soft/engine/model"
	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-soft/engine/renderer/texture"
	"github.com/go-gl/mathgl/mgl32"
)

const ambient = 0.2

var white = mgl32.Vec4{1, 1, 1, 1}

// Program is a pipeline instantiated with the shared shader blocks.
type Program = pipeline.Pipeline[Attributes, Varyings, Uniforms]

// New builds a pipeline for the given shader kind. The uniform block starts with identity
// matrices; call SetupUniforms before drawing.
//
// Parameters:
//   - kind: the shader pair to use
//   - opts: fixed-function options forwarded to the pipeline
//
// Returns:
//   - Program: the new pipeline
//   - error: ErrUnknownKind for a kind outside the closed set
func New(kind Kind, opts ...pipeline.PipelineBuilderOption) (Program, error) {
	var frag pipeline.FragmentShader[Varyings, Uniforms]
	switch kind {
	case KindTextured:
		frag = texturedFragment
	case KindLambert:
		frag = lambertFragment
	case KindNormal:
		frag = normalFragment
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}

	p, err := pipeline.NewPipeline(kind.String(), pipeline.Stages[Attributes, Varyings, Uniforms]{
		Bind:        BindVertex,
		Vertex:      vertexMain,
		Fragment:    frag,
		Interpolate: Interpolate,
	}, opts...)
	if err != nil {
		return nil, err
	}

	u := p.Uniforms()
	u.ModelMatrix = mgl32.Ident4()
	u.NormalMatrix = mgl32.Ident3()
	u.CameraViewMatrix = mgl32.Ident4()
	u.CameraProjMatrix = mgl32.Ident4()
	u.LightViewMatrix = mgl32.Ident4()
	u.LightProjMatrix = mgl32.Ident4()
	return p, nil
}

// SetupUniforms fills a uniform block from a camera, a directional light and a base texture.
// The model matrix is reset to identity and the normal matrix derived from it. The light looks
// at the origin from one unit along the reverse light direction, with an orthographic volume
// of half extent 1 and depth range [0, 2].
//
// Parameters:
//   - u: the uniform block to fill
//   - cam: the camera providing eye position and matrices
//   - light: the directional light
//   - tex: the base texture, may be nil
func SetupUniforms(u *Uniforms, cam camera.Camera, light Light, tex *texture.Texture) {
	u.ModelMatrix = mgl32.Ident4()
	u.NormalMatrix = common.NormalMatrix(u.ModelMatrix)

	u.CameraPos = cam.Position()
	u.CameraViewMatrix = cam.ViewMatrix()
	u.CameraProjMatrix = cam.ProjectionMatrix()

	u.LightDir = common.SphericalDirection(light.Theta, light.Phi).Mul(-1)
	u.LightViewMatrix = mgl32.LookAtV(u.LightDir.Mul(-1), mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	u.LightProjMatrix = common.Orthographic(1, 1, 0, 2)

	u.BaseTexture = tex
}

// BindVertex copies a mesh vertex into the attribute block.
func BindVertex(a *Attributes, v model.Vertex) {
	a.Position = v.Position
	a.Texcoord = v.Texcoord
	a.Normal = v.Normal
	a.Tangent = v.Tangent
}

// Interpolate blends the three corner varyings with perspective-correct weights.
// The blended normal is renormalised.
func Interpolate(out *Varyings, in [3]*Varyings, w [3]float32) {
	out.Texcoord = in[0].Texcoord.Mul(w[0]).Add(in[1].Texcoord.Mul(w[1])).Add(in[2].Texcoord.Mul(w[2]))
	out.WorldPosition = in[0].WorldPosition.Mul(w[0]).Add(in[1].WorldPosition.Mul(w[1])).Add(in[2].WorldPosition.Mul(w[2]))
	n := in[0].WorldNormal.Mul(w[0]).Add(in[1].WorldNormal.Mul(w[1])).Add(in[2].WorldNormal.Mul(w[2]))
	if n.Len() > 0 {
		n = n.Normalize()
	}
	out.WorldNormal = n
}

func vertexMain(a *Attributes, v *Varyings, u *Uniforms) mgl32.Vec4 {
	world := u.ModelMatrix.Mul4x1(a.Position.Vec4(1))
	clip := u.CameraProjMatrix.Mul4(u.CameraViewMatrix).Mul4x1(world)

	v.Texcoord = a.Texcoord
	v.WorldPosition = world.Vec3()
	n := u.NormalMatrix.Mul3x1(a.Normal)
	if n.Len() > 0 {
		n = n.Normalize()
	}
	v.WorldNormal = n
	return clip
}

func baseColor(v *Varyings, u *Uniforms) mgl32.Vec4 {
	if u.BaseTexture == nil {
		return white
	}
	return u.BaseTexture.Sample(v.Texcoord)
}

func texturedFragment(v *Varyings, u *Uniforms, _ *bool, _ bool) mgl32.Vec4 {
	return baseColor(v, u)
}

func lambertFragment(v *Varyings, u *Uniforms, _ *bool, backface bool) mgl32.Vec4 {
	n := v.WorldNormal
	if backface {
		n = n.Mul(-1)
	}
	diffuse := max(n.Dot(u.LightDir.Mul(-1)), 0)
	base := baseColor(v, u)
	lit := base.Vec3().Mul(min(ambient+diffuse, 1))
	return lit.Vec4(base.W())
}

func normalFragment(v *Varyings, _ *Uniforms, _ *bool, _ bool) mgl32.Vec4 {
	c := v.WorldNormal.Mul(0.5).Add(mgl32.Vec3{0.5, 0.5, 0.5})
	return c.Vec4(1)
}
