//go:build !embree

package embree

import (
	"github.com/df07/go-embree/pkg/rtcore"
	"github.com/df07/go-embree/pkg/rtcore/soft"
)

func defaultEngine() rtcore.Engine {
	return soft.New(soft.WithLogger(Logger()))
}
