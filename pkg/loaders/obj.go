package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/harrisjacob/3D-Renderer/pkg/core"
)

// OBJData contains the vertex positions and polygon faces of a Wavefront OBJ file
type OBJData struct {
	Vertices []core.Vec3 // Vertex positions
	Faces    [][]int     // Zero-based vertex indices, three or more per face
}

// FaceCount returns the number of faces
func (d *OBJData) FaceCount() int {
	return len(d.Faces)
}

// Edges calls fn for every polygon edge, closing each face back to its first vertex
func (d *OBJData) Edges(fn func(a, b core.Vec3)) {
	for _, face := range d.Faces {
		for j := range face {
			fn(d.Vertices[face[j]], d.Vertices[face[(j+1)%len(face)]])
		}
	}
}

// LoadOBJ loads an OBJ file's vertices and faces
func LoadOBJ(filename string) (*OBJData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open OBJ file: %w", err)
	}
	defer file.Close()

	data, err := ParseOBJ(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return data, nil
}

// ParseOBJ reads "v" and "f" records. Texture coordinates, normals, groups and
// materials are ignored. Face indices are 1-based, negative indices count back
// from the most recent vertex.
func ParseOBJ(r io.Reader) (*OBJData, error) {
	data := &OBJData{}
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			v, err := parseOBJVertex(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			data.Vertices = append(data.Vertices, v)
		case "f":
			face, err := parseOBJFace(fields[1:], len(data.Vertices))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			data.Faces = append(data.Faces, face)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read OBJ data: %w", err)
	}
	return data, nil
}

func parseOBJVertex(fields []string) (core.Vec3, error) {
	// An optional fourth w component is ignored
	if len(fields) < 3 {
		return core.Vec3{}, fmt.Errorf("vertex needs 3 coordinates, got %d", len(fields))
	}
	var coords [3]float64
	for i := range coords {
		value, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("invalid vertex coordinate %q: %w", fields[i], err)
		}
		coords[i] = value
	}
	return core.NewVec3(coords[0], coords[1], coords[2]), nil
}

func parseOBJFace(fields []string, vertexCount int) ([]int, error) {
	if len(fields) < 3 {
		return nil, fmt.Errorf("face needs at least 3 vertices, got %d", len(fields))
	}

	face := make([]int, len(fields))
	for i, token := range fields {
		// v, v/vt, v/vt/vn or v//vn: only the vertex index matters
		vertexToken, _, _ := strings.Cut(token, "/")
		index, err := strconv.Atoi(vertexToken)
		if err != nil {
			return nil, fmt.Errorf("invalid face index %q: %w", token, err)
		}

		switch {
		case index > 0:
			index--
		case index < 0:
			index += vertexCount
		default:
			return nil, fmt.Errorf("face index 0 is not valid")
		}
		if index < 0 || index >= vertexCount {
			return nil, fmt.Errorf("face index %s out of range (%d vertices)", vertexToken, vertexCount)
		}
		face[i] = index
	}
	return face, nil
}
