//go:build embree

package embree

import (
	"github.com/df07/go-embree/pkg/rtcore"
	"github.com/df07/go-embree/pkg/rtcore/native"
)

func defaultEngine() rtcore.Engine {
	return native.New()
}
