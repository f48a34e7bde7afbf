package server

import (
	"bytes"
	"image/png"
	"net/http"
	"strconv"

	"github.com/df07/go-embree/pkg/embree"
	"github.com/df07/go-embree/pkg/renderer"
)

const (
	maxImageSize = 2048
	maxSamples   = 64
)

// renderParams holds the parsed query of a render request.
type renderParams struct {
	scene   string
	width   int
	height  int
	samples int
	label   bool
}

func parseRenderParams(r *http.Request) (renderParams, error) {
	q := r.URL.Query()
	p := renderParams{scene: sceneParam(q), label: q.Get("label") == "true"}
	var err error
	if p.width, err = parseIntParam(q, "width", 400, 1, maxImageSize); err != nil {
		return p, err
	}
	if p.height, err = parseIntParam(q, "height", 225, 1, maxImageSize); err != nil {
		return p, err
	}
	if p.samples, err = parseIntParam(q, "samples", 4, 1, maxSamples); err != nil {
		return p, err
	}
	return p, nil
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	p, err := parseRenderParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sc, done, err := s.acquire(p.scene)
	if err != nil {
		sceneError(w, err)
		return
	}
	defer done()

	img, stats, err := renderer.Render(r.Context(), sc, renderer.Config{
		Width:           p.width,
		Height:          p.height,
		SamplesPerPixel: p.samples,
		Camera:          sc.Camera,
		Shading:         renderer.DefaultShading(),
		Albedo:          sc.Albedo,
	})
	if err != nil {
		embree.Logger().Warn("render aborted", "scene", p.scene, "error", err)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if p.label {
		renderer.DrawLabel(img, stats.Summary())
	}
	embree.Logger().Info("render finished", "scene", p.scene, "width", p.width, "height", p.height,
		"rays", stats.PrimaryRays+stats.ShadowRays, "elapsed", stats.Elapsed)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Render-Time", stats.Elapsed.String())
	w.Write(buf.Bytes())
}
