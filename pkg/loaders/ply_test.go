package loaders

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/df07/go-embree/pkg/embree"
	"github.com/df07/go-embree/pkg/rtcore/soft"
	"github.com/go-gl/mathgl/mgl32"
)

// squareVertices are the corners of the unit square in the z=0 plane.
var squareVertices = []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}

// createBinaryPLY writes a square as two triangles in binary form.
func createBinaryPLY(t *testing.T, order binary.ByteOrder, includeNormals bool) []byte {
	t.Helper()
	var buf bytes.Buffer

	format := "binary_little_endian"
	if order == binary.BigEndian {
		format = "binary_big_endian"
	}
	buf.WriteString("ply\n")
	buf.WriteString("format " + format + " 1.0\n")
	buf.WriteString("comment square\n")
	buf.WriteString("element vertex 4\n")
	buf.WriteString("property float x\n")
	buf.WriteString("property float y\n")
	buf.WriteString("property float z\n")
	if includeNormals {
		buf.WriteString("property float nx\n")
		buf.WriteString("property float ny\n")
		buf.WriteString("property float nz\n")
	}
	buf.WriteString("property uchar red\n")
	buf.WriteString("element face 2\n")
	buf.WriteString("property list uchar int vertex_indices\n")
	buf.WriteString("property uchar material\n")
	buf.WriteString("end_header\n")

	for _, v := range squareVertices {
		binary.Write(&buf, order, [3]float32(v))
		if includeNormals {
			binary.Write(&buf, order, [3]float32{0, 0, 1})
		}
		buf.WriteByte(255)
	}

	faces := [][3]int32{{0, 1, 2}, {0, 2, 3}}
	for _, f := range faces {
		buf.WriteByte(3)
		binary.Write(&buf, order, f)
		buf.WriteByte(7)
	}
	return buf.Bytes()
}

const asciiQuadPLY = `ply
format ascii 1.0
element vertex 4
property float x
property float y
property float z
property float u
property float v
element face 1
property list uchar uint vertex_indices
end_header
0 0 0 0 0
1 0 0 1 0
1 1 0 1 1
0 1 0 0 1
4 0 1 2 3
`

func TestReadPLY_Formats(t *testing.T) {
	tests := []struct {
		name        string
		data        []byte
		wantNormals bool
		wantUV      bool
	}{
		{"binary little endian", createBinaryPLY(t, binary.LittleEndian, false), false, false},
		{"binary big endian", createBinaryPLY(t, binary.BigEndian, false), false, false},
		{"binary with normals", createBinaryPLY(t, binary.LittleEndian, true), true, false},
		{"ascii quad", []byte(asciiQuadPLY), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh, err := ReadPLY(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("ReadPLY failed: %v", err)
			}

			if len(mesh.Vertices) != len(squareVertices) {
				t.Fatalf("Expected %d vertices, got %d", len(squareVertices), len(mesh.Vertices))
			}
			for i, expected := range squareVertices {
				if mesh.Vertices[i] != expected {
					t.Errorf("Vertex %d: expected %v, got %v", i, expected, mesh.Vertices[i])
				}
			}

			wantTriangles := []embree.Triangle{{0, 1, 2}, {0, 2, 3}}
			if len(mesh.Triangles) != len(wantTriangles) {
				t.Fatalf("Expected %d triangles, got %d", len(wantTriangles), len(mesh.Triangles))
			}
			for i, expected := range wantTriangles {
				if mesh.Triangles[i] != expected {
					t.Errorf("Triangle %d: expected %v, got %v", i, expected, mesh.Triangles[i])
				}
			}

			if got := len(mesh.Normals) > 0; got != tt.wantNormals {
				t.Errorf("normals present = %v, want %v", got, tt.wantNormals)
			}
			for i, n := range mesh.Normals {
				if n != (mgl32.Vec3{0, 0, 1}) {
					t.Errorf("Normal %d: got %v", i, n)
				}
			}
			if got := len(mesh.TexCoords) > 0; got != tt.wantUV {
				t.Errorf("texcoords present = %v, want %v", got, tt.wantUV)
			}
			if tt.wantUV && mesh.TexCoords[2] != (mgl32.Vec2{1, 1}) {
				t.Errorf("TexCoord 2: got %v", mesh.TexCoords[2])
			}
		})
	}
}

func TestReadPLY_Errors(t *testing.T) {
	valid := createBinaryPLY(t, binary.LittleEndian, false)

	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"empty", "", "missing end_header"},
		{"bad magic", "obj\nend_header\n", "missing ply magic"},
		{"no end_header", "ply\nformat ascii 1.0\n", "missing end_header"},
		{"unknown format", "ply\nformat binary_middle_endian 1.0\nend_header\n", "unsupported PLY format"},
		{"bad count", "ply\nformat ascii 1.0\nelement vertex many\nend_header\n", "invalid element count"},
		{"bad property type", "ply\nformat ascii 1.0\nelement vertex 1\nproperty quad x\nend_header\n", "unknown type"},
		{"unknown keyword", "ply\nformat ascii 1.0\nbogus\nend_header\n", "unknown header keyword"},
		{"truncated", string(valid[:len(valid)-3]), "unexpected end of data"},
		{"index out of range", "ply\nformat ascii 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\nelement face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n0 1 0\n3 0 1 3\n", "out of range"},
		{"degenerate face", "ply\nformat ascii 1.0\nelement vertex 2\nproperty float x\nproperty float y\nproperty float z\nelement face 1\nproperty list uchar int vertex_indices\nend_header\n0 0 0\n1 0 0\n2 0 1\n", "has 2 vertices"},
		{"bad ascii value", "ply\nformat ascii 1.0\nelement vertex 1\nproperty float x\nend_header\nabc\n", "invalid float value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadPLY(strings.NewReader(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadPLY_File(t *testing.T) {
	testFile := filepath.Join(t.TempDir(), "square.ply")
	if err := os.WriteFile(testFile, createBinaryPLY(t, binary.LittleEndian, true), 0644); err != nil {
		t.Fatalf("Failed to create test PLY file: %v", err)
	}

	mesh, err := LoadPLY(testFile)
	if err != nil {
		t.Fatalf("Failed to load PLY: %v", err)
	}
	if len(mesh.Triangles) != 2 {
		t.Errorf("Expected 2 triangles, got %d", len(mesh.Triangles))
	}
}

func TestLoadPLY_NonExistentFile(t *testing.T) {
	if _, err := LoadPLY("nonexistent.ply"); err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestParsePLYProperty(t *testing.T) {
	tests := []struct {
		name    string
		parts   []string
		want    PLYProperty
		wantErr bool
	}{
		{"scalar", []string{"float", "x"}, PLYProperty{Type: "float", Name: "x"}, false},
		{"list", []string{"list", "uchar", "int", "vertex_indices"}, PLYProperty{IsList: true, ListType: "uchar", DataType: "int", Name: "vertex_indices"}, false},
		{"short", []string{"float"}, PLYProperty{}, true},
		{"short list", []string{"list", "uchar", "int"}, PLYProperty{}, true},
		{"unknown list type", []string{"list", "uchar", "quad", "vertex_indices"}, PLYProperty{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePLYProperty(tt.parts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGetTypeSize(t *testing.T) {
	tests := []struct {
		dataType string
		expected int
	}{
		{"float", 4},
		{"float32", 4},
		{"double", 8},
		{"float64", 8},
		{"int", 4},
		{"uint32", 4},
		{"short", 2},
		{"ushort", 2},
		{"char", 1},
		{"uchar", 1},
		{"unknown", 0},
	}

	for _, test := range tests {
		if result := getTypeSize(test.dataType); result != test.expected {
			t.Errorf("getTypeSize(%s): expected %d, got %d", test.dataType, test.expected, result)
		}
	}
}

func TestPLYMesh_Intersect(t *testing.T) {
	mesh, err := ReadPLY(bytes.NewReader(createBinaryPLY(t, binary.LittleEndian, true)))
	if err != nil {
		t.Fatalf("ReadPLY failed: %v", err)
	}

	d, err := embree.Open(embree.Config{Engine: soft.New()})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer d.Release()

	tm := mesh.NewTriangleMesh(d)
	if len(tm.Normals()) != 4 {
		t.Errorf("expected normals bound, got %d", len(tm.Normals()))
	}
	b := embree.NewSceneBuilder(d)
	b.Attach(tm.Commit())
	scene := b.Build()
	defer scene.Release()

	rec := scene.Intersect(embree.NewRayInfinite(mgl32.Vec3{0.25, 0.5, 2}, mgl32.Vec3{0, 0, -1}))
	if !rec.IsHit() || math.Abs(float64(rec.T-2)) > 1e-5 || rec.PrimID != 1 {
		t.Errorf("got hit=%v t=%v prim=%d, want prim 1 at t=2", rec.IsHit(), rec.T, rec.PrimID)
	}
}
