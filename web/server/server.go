package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/df07/go-embree/pkg/embree"
	"github.com/df07/go-embree/pkg/scene"
)

// errClosed is returned for requests that arrive after Close.
var errClosed = errors.New("server is shutting down")

// Server serves scene listings, renders and hit inspection over HTTP.
type Server struct {
	port    int
	device  *embree.Device
	options scene.Options
	console *Console

	mu     sync.Mutex
	scenes map[string]*scene.Scene
	srv    *http.Server
	stop   bool // Shutdown was called

	// inflight is read-held by every request using a cached scene and
	// write-held by Close while the scenes are released.
	inflight sync.RWMutex
	closed   bool
}

// NewServer creates a server rendering on device. Scenes are built on first
// use with options and kept until Close.
func NewServer(port int, device *embree.Device, options scene.Options, console *Console) *Server {
	if console == nil {
		console = NewConsole(200)
	}
	return &Server{
		port:    port,
		device:  device,
		options: options,
		console: console,
		scenes:  make(map[string]*scene.Scene),
	}
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/scenes", s.handleScenes)
	mux.HandleFunc("GET /api/render", s.handleRender)
	mux.HandleFunc("GET /api/inspect", s.handleInspect)
	mux.HandleFunc("GET /api/console", s.handleConsole)
	return mux
}

// Start listens on the configured port until Shutdown is called or the
// listener fails. It returns nil after Shutdown.
func (s *Server) Start() error {
	srv := &http.Server{Addr: fmt.Sprintf(":%d", s.port), Handler: s.Handler()}
	s.mu.Lock()
	if s.stop {
		s.mu.Unlock()
		return nil
	}
	s.srv = srv
	s.mu.Unlock()

	embree.Logger().Info("server starting", "port", s.port, "engine", s.device.EngineName())
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the listener, waits for active requests and releases the
// cached scenes.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.stop = true
	srv := s.srv
	s.mu.Unlock()

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}
	s.Close()
	return err
}

// Close waits for requests that are using a scene, then releases every
// cached scene. Later requests fail with 503.
func (s *Server) Close() {
	s.inflight.Lock()
	defer s.inflight.Unlock()
	s.closed = true

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sc := range s.scenes {
		sc.Release()
		delete(s.scenes, id)
	}
}

// acquire returns the cached scene for id, building it if needed. The scene
// stays valid until done is called.
func (s *Server) acquire(id string) (sc *scene.Scene, done func(), err error) {
	s.inflight.RLock()
	if s.closed {
		s.inflight.RUnlock()
		return nil, nil, errClosed
	}
	sc, err = s.scene(id)
	if err != nil {
		s.inflight.RUnlock()
		return nil, nil, err
	}
	return sc, s.inflight.RUnlock, nil
}

func (s *Server) scene(id string) (*scene.Scene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc, ok := s.scenes[id]; ok {
		return sc, nil
	}
	sc, err := scene.Build(s.device, id, s.options)
	if err != nil {
		return nil, err
	}
	embree.Logger().Info("scene built", "scene", id, "geometries", sc.GeometryCount(), "primitives", sc.PrimitiveCount())
	s.scenes[id] = sc
	return sc, nil
}

// sceneError writes the response for a failed acquire.
func sceneError(w http.ResponseWriter, err error) {
	if errors.Is(err, errClosed) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	http.Error(w, err.Error(), http.StatusNotFound)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"status": "ok",
		"engine": s.device.EngineName(),
	})
}

func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, scene.List())
}

func (s *Server) handleConsole(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.console.Messages())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		embree.Logger().Error("encoding response", "error", err)
	}
}

// parseIntParam parses an integer query parameter, returning def when it is
// absent and an error when it is malformed or outside [min, max].
func parseIntParam(values url.Values, key string, def, min, max int) (int, error) {
	str := values.Get(key)
	if str == "" {
		return def, nil
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, str)
	}
	if val < min || val > max {
		return 0, fmt.Errorf("%s must be between %d and %d", key, min, max)
	}
	return val, nil
}

// sceneParam returns the requested scene id, or "default".
func sceneParam(values url.Values) string {
	if id := values.Get("scene"); id != "" {
		return id
	}
	return "default"
}
