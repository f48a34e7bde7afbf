package embree

import (
	"fmt"

	"github.com/df07/go-embree/pkg/rtcore"
)

// ErrorKind classifies errors reported by the engine.
type ErrorKind int32

const (
	ErrorNone             = ErrorKind(rtcore.ErrorNone)
	ErrorUnknown          = ErrorKind(rtcore.ErrorUnknown)
	ErrorInvalidArgument  = ErrorKind(rtcore.ErrorInvalidArgument)
	ErrorInvalidOperation = ErrorKind(rtcore.ErrorInvalidOperation)
	ErrorOutOfMemory      = ErrorKind(rtcore.ErrorOutOfMemory)
	ErrorUnsupportedCPU   = ErrorKind(rtcore.ErrorUnsupportedCPU)
	ErrorCancelled        = ErrorKind(rtcore.ErrorCancelled)
)

// ErrorKindFromCode maps a raw engine error code to an ErrorKind. Codes the
// package does not know map to ErrorUnknown.
func ErrorKindFromCode(code int32) ErrorKind {
	switch k := ErrorKind(code); k {
	case ErrorNone, ErrorUnknown, ErrorInvalidArgument, ErrorInvalidOperation,
		ErrorOutOfMemory, ErrorUnsupportedCPU, ErrorCancelled:
		return k
	}
	return ErrorUnknown
}

func (k ErrorKind) String() string {
	switch k {
	case ErrorNone:
		return "none"
	case ErrorUnknown:
		return "unknown"
	case ErrorInvalidArgument:
		return "invalid argument"
	case ErrorInvalidOperation:
		return "invalid operation"
	case ErrorOutOfMemory:
		return "out of memory"
	case ErrorUnsupportedCPU:
		return "unsupported cpu"
	case ErrorCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("ErrorKind(%d)", int32(k))
}

// EngineError is an error reported by the engine.
type EngineError struct {
	Kind    ErrorKind
	Message string
}

func (e *EngineError) Error() string {
	if e.Message == "" {
		return "embree: " + e.Kind.String()
	}
	return fmt.Sprintf("embree: %s: %s", e.Kind, e.Message)
}

// ErrorFunc receives errors the engine reports asynchronously.
type ErrorFunc func(kind ErrorKind, message string)

// logErrorSink is the default ErrorFunc.
func logErrorSink(kind ErrorKind, message string) {
	Logger().Error("engine error", "kind", kind.String(), "message", message)
}
