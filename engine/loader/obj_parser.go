package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-soft/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// Line prefixes recognised by the OBJ parser, matched in this order.
const (
	prefixTangent  = "# ext.tangent "
	prefixTexcoord = "vt "
	prefixNormal   = "vn "
	prefixPosition = "v "
	prefixFace     = "f "
)

// maxLineLength bounds a single OBJ line. bufio.Scanner's default of 64 KiB is too small for
// some exporters that write long comment or group lines.
const maxLineLength = 1 << 20

var (
	// ErrMalformedLine is returned when a recognised line is missing fields or holds non-numeric values.
	ErrMalformedLine = errors.New("malformed line")

	// ErrUnsupportedFace is returned for faces that are not triangles with position/texcoord/normal corners.
	ErrUnsupportedFace = errors.New("unsupported face")
)

// ParseError reports the line at which parsing failed.
type ParseError struct {
	// Line is the 1-based line number.
	Line int
	// Text is the offending line.
	Text string
	// Err is ErrMalformedLine or ErrUnsupportedFace, possibly wrapping a strconv error.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseOBJ reads a triangulated Wavefront OBJ subset into indexed geometry.
//
// Recognised lines:
//   - "# ext.tangent x y z w": a tangent, addressed later by position index
//   - "vt u v": a texture coordinate
//   - "vn x y z": a normal
//   - "v x y z": a position
//   - "f p/t/n p/t/n p/t/n": a triangle; 1-based indices are stored 0-based
//
// Every other line is ignored. Extra trailing numbers on attribute lines are ignored.
// Indices are not validated here; model.BuildMesh bounds-checks them.
//
// Parameters:
//   - r: the OBJ text stream
//
// Returns:
//   - *model.Geometry: the parsed sequences and face-corner indices
//   - error: a *ParseError on malformed input, or the underlying read error
func ParseOBJ(r io.Reader) (*model.Geometry, error) {
	g := &model.Geometry{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")

		var err error
		switch {
		case strings.HasPrefix(line, prefixTangent):
			var f []float32
			if f, err = parseFloats(line[len(prefixTangent):], 4); err == nil {
				g.Tangents = append(g.Tangents, mgl32.Vec4{f[0], f[1], f[2], f[3]})
			}
		case strings.HasPrefix(line, prefixTexcoord):
			var f []float32
			if f, err = parseFloats(line[len(prefixTexcoord):], 2); err == nil {
				g.Texcoords = append(g.Texcoords, mgl32.Vec2{f[0], f[1]})
			}
		case strings.HasPrefix(line, prefixNormal):
			var f []float32
			if f, err = parseFloats(line[len(prefixNormal):], 3); err == nil {
				g.Normals = append(g.Normals, mgl32.Vec3{f[0], f[1], f[2]})
			}
		case strings.HasPrefix(line, prefixPosition):
			var f []float32
			if f, err = parseFloats(line[len(prefixPosition):], 3); err == nil {
				g.Positions = append(g.Positions, mgl32.Vec3{f[0], f[1], f[2]})
			}
		case strings.HasPrefix(line, prefixFace):
			err = parseFace(g, line[len(prefixFace):])
		}
		if err != nil {
			return nil, &ParseError{Line: lineNo, Text: line, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read obj data: %w", err)
	}

	return g, nil
}

// parseFloats parses the first n whitespace-separated fields of s as finite float32 values.
func parseFloats(s string, n int) ([]float32, error) {
	fields := strings.Fields(s)
	if len(fields) < n {
		return nil, fmt.Errorf("%w: want %d values, got %d", ErrMalformedLine, n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedLine, err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite value %q", ErrMalformedLine, fields[i])
		}
		out[i] = float32(v)
	}
	return out, nil
}

// parseFace appends the three p/t/n corners of a triangle face to g, converting to 0-based indices.
func parseFace(g *model.Geometry, s string) error {
	corners := strings.Fields(s)
	if len(corners) != 3 {
		return fmt.Errorf("%w: want 3 corners, got %d", ErrUnsupportedFace, len(corners))
	}

	var idx [3][3]int
	for c, corner := range corners {
		parts := strings.Split(corner, "/")
		if len(parts) != 3 {
			return fmt.Errorf("%w: corner %q is not p/t/n", ErrUnsupportedFace, corner)
		}
		for k, part := range parts {
			v, err := strconv.Atoi(part)
			if err != nil {
				return fmt.Errorf("%w: corner %q: %w", ErrMalformedLine, corner, err)
			}
			idx[c][k] = v - 1
		}
	}

	for c := range idx {
		g.PositionIndices = append(g.PositionIndices, idx[c][0])
		g.TexcoordIndices = append(g.TexcoordIndices, idx[c][1])
		g.NormalIndices = append(g.NormalIndices, idx[c][2])
	}
	return nil
}
