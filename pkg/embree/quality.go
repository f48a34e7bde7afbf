package embree

import (
	"strings"

	"github.com/df07/go-embree/pkg/rtcore"
)

// BuildQuality trades acceleration structure build time for query speed.
type BuildQuality int32

const (
	BuildQualityLow    = BuildQuality(rtcore.BuildQualityLow)
	BuildQualityMedium = BuildQuality(rtcore.BuildQualityMedium)
	BuildQualityHigh   = BuildQuality(rtcore.BuildQualityHigh)
)

func (q BuildQuality) String() string {
	switch q {
	case BuildQualityLow:
		return "low"
	case BuildQualityMedium:
		return "medium"
	case BuildQualityHigh:
		return "high"
	}
	return "unknown"
}

// SceneFlags is a set of scene build hints.
type SceneFlags int32

const (
	SceneFlagDynamic               = SceneFlags(rtcore.SceneFlagDynamic)
	SceneFlagCompact               = SceneFlags(rtcore.SceneFlagCompact)
	SceneFlagRobust                = SceneFlags(rtcore.SceneFlagRobust)
	SceneFlagContextFilterFunction = SceneFlags(rtcore.SceneFlagContextFilterFunction)

	SceneFlagsNone SceneFlags = 0
)

var sceneFlagNames = []struct {
	flag SceneFlags
	name string
}{
	{SceneFlagDynamic, "dynamic"},
	{SceneFlagCompact, "compact"},
	{SceneFlagRobust, "robust"},
	{SceneFlagContextFilterFunction, "context-filter"},
}

// Has reports whether every flag in o is set in f.
func (f SceneFlags) Has(o SceneFlags) bool { return f&o == o }

func (f SceneFlags) String() string {
	if f == SceneFlagsNone {
		return "none"
	}
	var names []string
	for _, n := range sceneFlagNames {
		if f.Has(n.flag) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}
