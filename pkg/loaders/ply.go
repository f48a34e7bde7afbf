// Package loaders reads mesh and texture files into the shapes and buffers
// consumed by the embree bindings.
package loaders

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-embree/pkg/embree"
	"github.com/go-gl/mathgl/mgl32"
)

// PLY storage formats.
const (
	FormatASCII        = "ascii"
	FormatBinaryLittle = "binary_little_endian"
	FormatBinaryBig    = "binary_big_endian"
)

var errTruncated = errors.New("unexpected end of data")

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format      string
	Version     string
	VertexCount int
	FaceCount   int
	VertexProps []PLYProperty
	FaceProps   []PLYProperty

	HasNormals   bool
	HasTexCoords bool
}

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
	DataType string // For list properties, the type of the data
}

// PLYMesh is the geometry read from a PLY file. Polygons with more than three
// vertices are split into triangle fans.
type PLYMesh struct {
	Vertices  []mgl32.Vec3
	Triangles []embree.Triangle
	Normals   []mgl32.Vec3 // empty if not present
	TexCoords []mgl32.Vec2 // empty if not present
}

// NewTriangleMesh creates an uncommitted triangle mesh on d sharing the PLY
// buffers. Normals and texture coordinates are bound when present.
func (m *PLYMesh) NewTriangleMesh(d *embree.Device) *embree.TriangleMesh {
	mesh := embree.NewTriangleMesh(d, m.Vertices, m.Triangles)
	if len(m.Normals) > 0 {
		mesh.SetNormals(m.Normals)
	}
	if len(m.TexCoords) > 0 {
		mesh.SetTexCoords(m.TexCoords)
	}
	return mesh
}

// LoadPLY loads a PLY file.
func LoadPLY(filename string) (*PLYMesh, error) {
	startTime := time.Now()

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open PLY file: %w", err)
	}
	defer file.Close()

	mesh, err := ReadPLY(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	embree.Logger().Info("loaded PLY mesh",
		"file", filename,
		"vertices", len(mesh.Vertices),
		"triangles", len(mesh.Triangles),
		"elapsed", time.Since(startTime))
	return mesh, nil
}

// ReadPLY reads an ASCII or binary PLY stream.
func ReadPLY(r io.Reader) (*PLYMesh, error) {
	br := bufio.NewReaderSize(r, 1<<20)
	header, err := parsePLYHeader(br)
	if err != nil {
		return nil, fmt.Errorf("parse PLY header: %w", err)
	}

	var src scalarReader
	switch header.Format {
	case FormatBinaryLittle:
		src = &binaryReader{r: br, order: binary.LittleEndian}
	case FormatBinaryBig:
		src = &binaryReader{r: br, order: binary.BigEndian}
	case FormatASCII:
		sc := bufio.NewScanner(br)
		sc.Split(bufio.ScanWords)
		src = &asciiReader{sc: sc}
	default:
		return nil, fmt.Errorf("unsupported PLY format: %q", header.Format)
	}

	mesh, err := readElements(src, header)
	if err != nil {
		return nil, fmt.Errorf("read PLY data: %w", err)
	}
	return mesh, nil
}

// parsePLYHeader parses the header lines up to and including end_header,
// leaving r positioned at the first data byte.
func parsePLYHeader(r *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}
	var currentElement string

	for lineNo := 1; ; lineNo++ {
		raw, err := r.ReadString('\n')
		if err != nil && (err != io.EOF || raw == "") {
			if err == io.EOF {
				return nil, errors.New("missing end_header")
			}
			return nil, err
		}
		line := strings.TrimSpace(raw)
		if lineNo == 1 {
			if line != "ply" {
				return nil, errors.New("missing ply magic")
			}
			continue
		}
		if line == "end_header" {
			break
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) < 3 {
				return nil, fmt.Errorf("line %d: invalid format line", lineNo)
			}
			header.Format = parts[1]
			header.Version = parts[2]
		case "comment", "obj_info":
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("line %d: invalid element line", lineNo)
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("line %d: invalid element count: %s", lineNo, parts[2])
			}
			currentElement = parts[1]
			switch currentElement {
			case "vertex":
				header.VertexCount = count
			case "face":
				header.FaceCount = count
			default:
				if count > 0 {
					return nil, fmt.Errorf("line %d: unsupported element %q", lineNo, currentElement)
				}
			}
		case "property":
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			switch currentElement {
			case "vertex":
				header.VertexProps = append(header.VertexProps, prop)
				switch prop.Name {
				case "nx", "ny", "nz":
					header.HasNormals = true
				case "u", "s", "texture_u", "v", "t", "texture_v":
					header.HasTexCoords = true
				}
			case "face":
				header.FaceProps = append(header.FaceProps, prop)
			}
		default:
			return nil, fmt.Errorf("line %d: unknown header keyword %q", lineNo, parts[0])
		}
	}

	return header, nil
}

// parsePLYProperty parses a property line from the PLY header
func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) < 2 {
		return PLYProperty{}, errors.New("invalid property definition")
	}

	if parts[0] == "list" {
		if len(parts) < 4 {
			return PLYProperty{}, errors.New("invalid list property definition")
		}
		prop := PLYProperty{IsList: true, ListType: parts[1], DataType: parts[2], Name: parts[3]}
		if getTypeSize(prop.ListType) == 0 || getTypeSize(prop.DataType) == 0 {
			return PLYProperty{}, fmt.Errorf("unknown type in list property %s", prop.Name)
		}
		return prop, nil
	}
	prop := PLYProperty{Type: parts[0], Name: parts[1]}
	if getTypeSize(prop.Type) == 0 {
		return PLYProperty{}, fmt.Errorf("unknown type %q for property %s", prop.Type, prop.Name)
	}
	return prop, nil
}

// readElements reads the vertex element followed by the face element.
func readElements(src scalarReader, header *PLYHeader) (*PLYMesh, error) {
	mesh := &PLYMesh{
		Vertices:  make([]mgl32.Vec3, 0, header.VertexCount),
		Triangles: make([]embree.Triangle, 0, header.FaceCount),
	}
	if header.HasNormals {
		mesh.Normals = make([]mgl32.Vec3, 0, header.VertexCount)
	}
	if header.HasTexCoords {
		mesh.TexCoords = make([]mgl32.Vec2, 0, header.VertexCount)
	}

	for i := 0; i < header.VertexCount; i++ {
		var pos, normal mgl32.Vec3
		var uv mgl32.Vec2
		for _, prop := range header.VertexProps {
			if prop.IsList {
				if err := skipList(src, prop); err != nil {
					return nil, fmt.Errorf("vertex %d: %w", i, err)
				}
				continue
			}
			value, err := src.scalar(prop.Type)
			if err != nil {
				return nil, fmt.Errorf("vertex %d property %s: %w", i, prop.Name, err)
			}
			switch prop.Name {
			case "x":
				pos[0] = float32(value)
			case "y":
				pos[1] = float32(value)
			case "z":
				pos[2] = float32(value)
			case "nx":
				normal[0] = float32(value)
			case "ny":
				normal[1] = float32(value)
			case "nz":
				normal[2] = float32(value)
			case "u", "s", "texture_u":
				uv[0] = float32(value)
			case "v", "t", "texture_v":
				uv[1] = float32(value)
			}
		}
		mesh.Vertices = append(mesh.Vertices, pos)
		if header.HasNormals {
			mesh.Normals = append(mesh.Normals, normal)
		}
		if header.HasTexCoords {
			mesh.TexCoords = append(mesh.TexCoords, uv)
		}
	}

	var polygon []uint32
	for i := 0; i < header.FaceCount; i++ {
		for _, prop := range header.FaceProps {
			if !prop.IsList || (prop.Name != "vertex_indices" && prop.Name != "vertex_index") {
				if err := skipProperty(src, prop); err != nil {
					return nil, fmt.Errorf("face %d property %s: %w", i, prop.Name, err)
				}
				continue
			}

			count, err := src.scalar(prop.ListType)
			if err != nil {
				return nil, fmt.Errorf("face %d vertex count: %w", i, err)
			}
			if count < 3 {
				return nil, fmt.Errorf("face %d has %v vertices", i, count)
			}
			polygon = polygon[:0]
			for j := 0; j < int(count); j++ {
				index, err := src.scalar(prop.DataType)
				if err != nil {
					return nil, fmt.Errorf("face %d index %d: %w", i, j, err)
				}
				if index < 0 || index >= float64(header.VertexCount) {
					return nil, fmt.Errorf("face %d index %v out of range", i, index)
				}
				polygon = append(polygon, uint32(index))
			}
			for j := 1; j+1 < len(polygon); j++ {
				mesh.Triangles = append(mesh.Triangles, embree.Triangle{polygon[0], polygon[j], polygon[j+1]})
			}
		}
	}

	return mesh, nil
}

func skipProperty(src scalarReader, prop PLYProperty) error {
	if prop.IsList {
		return skipList(src, prop)
	}
	_, err := src.scalar(prop.Type)
	return err
}

func skipList(src scalarReader, prop PLYProperty) error {
	count, err := src.scalar(prop.ListType)
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		if _, err := src.scalar(prop.DataType); err != nil {
			return err
		}
	}
	return nil
}

// getTypeSize returns the size in bytes of a PLY data type, or 0 if the type
// is unknown.
func getTypeSize(dataType string) int {
	switch dataType {
	case "float", "float32", "int", "int32", "uint", "uint32":
		return 4
	case "double", "float64":
		return 8
	case "short", "int16", "ushort", "uint16":
		return 2
	case "char", "int8", "uchar", "uint8":
		return 1
	default:
		return 0
	}
}

// scalarReader yields successive scalar values of the given PLY type.
type scalarReader interface {
	scalar(dataType string) (float64, error)
}

type binaryReader struct {
	r     *bufio.Reader
	order binary.ByteOrder
	buf   [8]byte
}

func (b *binaryReader) scalar(dataType string) (float64, error) {
	size := getTypeSize(dataType)
	if size == 0 {
		return 0, fmt.Errorf("unsupported data type: %s", dataType)
	}
	p := b.buf[:size]
	if _, err := io.ReadFull(b.r, p); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, errTruncated
		}
		return 0, err
	}
	switch dataType {
	case "char", "int8":
		return float64(int8(p[0])), nil
	case "uchar", "uint8":
		return float64(p[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(p))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(p)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(p))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(p)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(p))), nil
	default:
		return math.Float64frombits(b.order.Uint64(p)), nil
	}
}

type asciiReader struct {
	sc *bufio.Scanner
}

func (a *asciiReader) scalar(dataType string) (float64, error) {
	if getTypeSize(dataType) == 0 {
		return 0, fmt.Errorf("unsupported data type: %s", dataType)
	}
	if !a.sc.Scan() {
		if err := a.sc.Err(); err != nil {
			return 0, err
		}
		return 0, errTruncated
	}
	v, err := strconv.ParseFloat(a.sc.Text(), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", dataType, a.sc.Text())
	}
	return v, nil
}
