package embree

import (
	"strconv"
	"strings"

	"github.com/df07/go-embree/pkg/rtcore"
)

// Config controls how a Device is opened.
type Config struct {
	Threads int    // Worker threads used by the engine for builds; 0 lets the engine decide
	Verbose int    // Engine verbosity level
	ISA     string // Restrict the instruction set, e.g. "sse4.2" or "avx2"

	// ErrorSink receives engine errors. Nil logs them through Logger().
	ErrorSink ErrorFunc

	// Engine overrides the engine selected at build time.
	Engine rtcore.Engine
}

// String renders the engine configuration string, omitting unset fields.
func (c Config) String() string {
	var parts []string
	if c.Threads > 0 {
		parts = append(parts, "threads="+strconv.Itoa(c.Threads))
	}
	if c.Verbose > 0 {
		parts = append(parts, "verbose="+strconv.Itoa(c.Verbose))
	}
	if c.ISA != "" {
		parts = append(parts, "isa="+c.ISA)
	}
	return strings.Join(parts, ",")
}
