package server

import (
	"fmt"
	"net/http"

	"github.com/df07/go-embree/pkg/embree"
	"github.com/df07/go-embree/pkg/renderer"
)

// InspectResult describes what the primary ray through a pixel hits.
type InspectResult struct {
	Hit      bool       `json:"hit"`
	GeomID   uint32     `json:"geomID"`
	PrimID   uint32     `json:"primID"`
	Kind     string     `json:"kind,omitempty"`
	Point    [3]float32 `json:"point,omitempty"`
	Normal   [3]float32 `json:"normal,omitempty"`
	UV       [2]float32 `json:"uv,omitempty"`
	Distance float32    `json:"distance,omitempty"`
	Color    [3]float32 `json:"color,omitempty"`
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	width, err := parseIntParam(q, "width", 400, 1, maxImageSize)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	height, err := parseIntParam(q, "height", 225, 1, maxImageSize)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !q.Has("x") || !q.Has("y") {
		http.Error(w, "x and y are required", http.StatusBadRequest)
		return
	}
	x, err := parseIntParam(q, "x", 0, 0, width-1)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	y, err := parseIntParam(q, "y", 0, 0, height-1)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sc, done, err := s.acquire(sceneParam(q))
	if err != nil {
		sceneError(w, err)
		return
	}
	defer done()
	result, err := inspectPixel(sc.Scene, sc.Albedo, sc.Camera, width, height, x, y)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, result)
}

// inspectPixel traces the ray through the center of pixel (x, y), with y
// counted from the top of the image.
func inspectPixel(sc *embree.Scene, albedo renderer.AlbedoFunc, config renderer.CameraConfig, width, height, x, y int) (InspectResult, error) {
	if config.AspectRatio == 0 {
		config.AspectRatio = float32(width) / float32(height)
	}
	camera := renderer.NewCamera(config)
	s := (float32(x) + 0.5) / float32(width)
	t := 1 - (float32(y)+0.5)/float32(height)
	ray := camera.GetRay(s, t)

	rec := sc.Intersect(ray)
	if !rec.IsHit() {
		return InspectResult{}, nil
	}
	g, ok := sc.Geometry(rec.GeomID)
	if !ok {
		return InspectResult{}, fmt.Errorf("hit geometry %d is not attached", rec.GeomID)
	}
	p := ray.PointAt(rec.T)
	result := InspectResult{
		Hit:      true,
		GeomID:   uint32(rec.GeomID),
		PrimID:   rec.PrimID,
		Kind:     g.Kind().String(),
		Point:    p,
		Normal:   rec.Ng,
		UV:       rec.UV,
		Distance: rec.T,
	}
	if albedo != nil {
		result.Color = albedo(rec)
	}
	return result, nil
}
