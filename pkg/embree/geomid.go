package embree

import (
	"strconv"

	"github.com/df07/go-embree/pkg/rtcore"
)

// GeomID identifies a geometry within a scene. The all-ones value is the
// invalid sentinel the engine uses for "no geometry".
type GeomID uint32

// InvalidGeomID is the sentinel carried by misses and unattached geometries.
const InvalidGeomID = GeomID(rtcore.InvalidGeometryID)

// IsInvalid reports whether id is the invalid sentinel.
func (id GeomID) IsInvalid() bool { return id == InvalidGeomID }

// Unwrap returns the id as a plain index and whether it is valid.
func (id GeomID) Unwrap() (uint32, bool) {
	return uint32(id), !id.IsInvalid()
}

func (id GeomID) String() string {
	if id.IsInvalid() {
		return "invalid"
	}
	return strconv.FormatUint(uint64(id), 10)
}
