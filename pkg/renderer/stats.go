package renderer

import "time"

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels     int           // Total number of pixels rendered
	PrimaryRays     int           // Camera rays traced
	ShadowRays      int           // Occlusion rays traced
	Hits            int           // Camera rays that hit geometry
	TilesDone       int           // Tiles completed
	SamplesPerPixel int           // Samples per pixel
	Elapsed         time.Duration // Wall time of the render
}

// Add accumulates the counters of other into s.
func (s *RenderStats) Add(other RenderStats) {
	s.TotalPixels += other.TotalPixels
	s.PrimaryRays += other.PrimaryRays
	s.ShadowRays += other.ShadowRays
	s.Hits += other.Hits
	s.TilesDone += other.TilesDone
}

// RaysPerSecond returns the number of rays traced per second of wall time.
func (s RenderStats) RaysPerSecond() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.PrimaryRays+s.ShadowRays) / s.Elapsed.Seconds()
}

// HitRatio returns the fraction of camera rays that hit geometry.
func (s RenderStats) HitRatio() float64 {
	if s.PrimaryRays == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.PrimaryRays)
}
