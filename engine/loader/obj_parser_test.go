package loader

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const triangleOBJ = `# one triangle
o tri
v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 1
vn 0 0 1
s off
f 1/1/1 2/2/1 3/3/1
`

func TestParseOBJTriangle(t *testing.T) {
	g, err := ParseOBJ(strings.NewReader(triangleOBJ))
	if err != nil {
		t.Fatalf("ParseOBJ() error = %v", err)
	}
	if len(g.Positions) != 3 || len(g.Texcoords) != 3 || len(g.Normals) != 1 {
		t.Fatalf("ParseOBJ() sizes = %d/%d/%d, want 3/3/1", len(g.Positions), len(g.Texcoords), len(g.Normals))
	}
	if g.Tangents != nil {
		t.Errorf("Tangents = %v, want nil", g.Tangents)
	}
	if want := []int{0, 1, 2}; !slices.Equal(g.PositionIndices, want) {
		t.Errorf("PositionIndices = %v, want %v", g.PositionIndices, want)
	}
	if want := []int{0, 1, 2}; !slices.Equal(g.TexcoordIndices, want) {
		t.Errorf("TexcoordIndices = %v, want %v", g.TexcoordIndices, want)
	}
	if want := []int{0, 0, 0}; !slices.Equal(g.NormalIndices, want) {
		t.Errorf("NormalIndices = %v, want %v", g.NormalIndices, want)
	}
	if g.Positions[1] != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("Positions[1] = %v, want (1,0,0)", g.Positions[1])
	}
}

func TestParseOBJIndexDecrement(t *testing.T) {
	g, err := ParseOBJ(strings.NewReader("f 7/8/9 1/2/3 4/5/6\n"))
	if err != nil {
		t.Fatalf("ParseOBJ() error = %v", err)
	}
	if want := []int{6, 0, 3}; !slices.Equal(g.PositionIndices, want) {
		t.Errorf("PositionIndices = %v, want %v", g.PositionIndices, want)
	}
	if want := []int{7, 1, 4}; !slices.Equal(g.TexcoordIndices, want) {
		t.Errorf("TexcoordIndices = %v, want %v", g.TexcoordIndices, want)
	}
	if want := []int{8, 2, 5}; !slices.Equal(g.NormalIndices, want) {
		t.Errorf("NormalIndices = %v, want %v", g.NormalIndices, want)
	}
}

func TestParseOBJZeroIndexBecomesNegative(t *testing.T) {
	g, err := ParseOBJ(strings.NewReader("f 0/1/1 1/1/1 1/1/1\n"))
	if err != nil {
		t.Fatalf("ParseOBJ() error = %v", err)
	}
	if g.PositionIndices[0] != -1 {
		t.Errorf("PositionIndices[0] = %d, want -1", g.PositionIndices[0])
	}
}

func TestParseOBJTangents(t *testing.T) {
	src := "# ext.tangent 1 0 0 -1\n# ext.tangent 0 1 0 1\n# plain comment\nv 0 0 0\n"
	g, err := ParseOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseOBJ() error = %v", err)
	}
	want := []mgl32.Vec4{{1, 0, 0, -1}, {0, 1, 0, 1}}
	if !slices.Equal(g.Tangents, want) {
		t.Errorf("Tangents = %v, want %v", g.Tangents, want)
	}
	if len(g.Positions) != 1 {
		t.Errorf("Positions = %v, want one position", g.Positions)
	}
}

func TestParseOBJPrefixDispatch(t *testing.T) {
	// "vt " and "vn " must not be swallowed by "v ", and unknown lines are ignored.
	src := strings.Join([]string{
		"vt 0.25 0.75",
		"vn 0 1 0",
		"v 1 2 3 1.0",
		"vp 0.1 0.2",
		"g group",
		"usemtl body",
		"mtllib body.mtl",
		"",
		"   ",
	}, "\r\n")
	g, err := ParseOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseOBJ() error = %v", err)
	}
	if !slices.Equal(g.Texcoords, []mgl32.Vec2{{0.25, 0.75}}) {
		t.Errorf("Texcoords = %v", g.Texcoords)
	}
	if !slices.Equal(g.Normals, []mgl32.Vec3{{0, 1, 0}}) {
		t.Errorf("Normals = %v", g.Normals)
	}
	if !slices.Equal(g.Positions, []mgl32.Vec3{{1, 2, 3}}) {
		t.Errorf("Positions = %v", g.Positions)
	}
}

func TestParseOBJErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantErr  error
		wantLine int
	}{
		{"short position", "v 1 2\n", ErrMalformedLine, 1},
		{"bad float", "v 0 0 0\nvn 0 x 1\n", ErrMalformedLine, 2},
		{"short tangent", "# ext.tangent 1 0 0\n", ErrMalformedLine, 1},
		{"nan position", "v nan 0 0\n", ErrMalformedLine, 1},
		{"infinite texcoord", "v 0 0 0\nvt inf 0\n", ErrMalformedLine, 2},
		{"infinity normal", "vn 0 -Infinity 1\n", ErrMalformedLine, 1},
		{"out of float32 range", "v 1e40 0 0\n", ErrMalformedLine, 1},
		{"quad face", "f 1/1/1 2/2/2 3/3/3 4/4/4\n", ErrUnsupportedFace, 1},
		{"position only corners", "f 1 2 3\n", ErrUnsupportedFace, 1},
		{"missing texcoord", "f 1//1 2//1 3//1\n", ErrMalformedLine, 1},
		{"non-numeric index", "\n\nf a/1/1 2/2/2 3/3/3\n", ErrMalformedLine, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ParseOBJ(strings.NewReader(tt.src))
			if g != nil {
				t.Errorf("ParseOBJ() returned partial geometry %+v", g)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseOBJ() error = %v, want %v", err, tt.wantErr)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("ParseOBJ() error = %T, want *ParseError", err)
			}
			if perr.Line != tt.wantLine {
				t.Errorf("ParseError.Line = %d, want %d", perr.Line, tt.wantLine)
			}
		})
	}
}

func TestParseOBJLongLine(t *testing.T) {
	src := "# " + strings.Repeat("x", 200*1024) + "\nv 1 1 1\n"
	g, err := ParseOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ParseOBJ() error = %v", err)
	}
	if len(g.Positions) != 1 {
		t.Errorf("Positions = %v, want one position", g.Positions)
	}
}
