package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/harrisjacob/3D-Renderer/pkg/imageio"
	"github.com/harrisjacob/3D-Renderer/pkg/scene"
)

// Request limits
const (
	minSize     = 16
	maxSize     = 2000
	maxDepthMax = 32
)

// Server handles web requests for the raytracer
type Server struct {
	port      int
	staticDir string
	uploader  *imageio.Uploader
	renders   atomic.Int64
}

// NewServer creates a new web server
func NewServer(port int) *Server {
	return &Server{port: port, staticDir: "static/"}
}

// SetUploader enables storing renders in S3 when a request asks for it
func (s *Server) SetUploader(uploader *imageio.Uploader) {
	s.uploader = uploader
}

// Handler returns the server's routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Serve static files
	mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))

	// API endpoints
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/render/stream", s.handleRenderStream)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/health", s.handleHealth)

	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// nextRenderID returns a unique identifier for log lines of one render
func (s *Server) nextRenderID() string {
	return fmt.Sprintf("render-%d", s.renders.Add(1))
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in and discovered scene files
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	response, err := scene.ListAllScenes()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = "default"
	}

	sceneObj, err := s.createScene(sceneName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	config := sceneObj.Config
	response := map[string]interface{}{
		"scene":       sceneName,
		"name":        sceneObj.Name,
		"description": sceneObj.Description,
		"spheres":     len(sceneObj.Spheres),
		"lights":      sceneObj.LightCount(),
		"defaults": map[string]interface{}{
			"width":      config.Width,
			"height":     config.Height,
			"fov":        config.Camera.FOV,
			"maxDepth":   config.Trace.MaxDepth,
			"background": [3]float64{config.Trace.Background.X, config.Trace.Background.Y, config.Trace.Background.Z},
		},
		"limits": map[string]interface{}{
			"width":    map[string]int{"min": minSize, "max": maxSize},
			"height":   map[string]int{"min": minSize, "max": maxSize},
			"maxDepth": map[string]int{"min": 0, "max": maxDepthMax},
			"fov":      map[string]float64{"min": 1, "max": 179},
		},
	}

	writeJSON(w, http.StatusOK, response)
}

// createScene resolves built-in scenes and discovered scene files by ID.
// Arbitrary file paths are not accepted from the network.
func (s *Server) createScene(sceneName string) (*scene.Scene, error) {
	if sceneObj, ok := scene.Builtin(sceneName); ok {
		return sceneObj, nil
	}
	if strings.HasPrefix(sceneName, "json:") && !strings.ContainsAny(sceneName, `/\`) {
		return scene.Load(sceneName)
	}
	return nil, fmt.Errorf("unknown scene: %s", sceneName)
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseBoolParam parses a boolean parameter, accepting the strconv.ParseBool forms
func parseBoolParam(values url.Values, key string) (bool, error) {
	value := values.Get(key)
	if value == "" {
		return false, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %s", key, value)
	}
	return parsed, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
