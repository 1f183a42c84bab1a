package server

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
	"golang.org/x/net/websocket"
)

// ErrTypeInvalidRequest is the error type returned for malformed render parameters
const ErrTypeInvalidRequest = "invalid-request"

// Config bounds what clients may ask the server to render
type Config struct {
	MaxWidth   int
	MaxHeight  int
	MaxSamples int
	Workers    int // 0 uses every CPU
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		MaxWidth:   2000,
		MaxHeight:  2000,
		MaxSamples: 10000,
	}
}

// Server handles web requests for the progressive path tracer
type Server struct {
	config Config
}

// NewServer creates a new web server
func NewServer(config Config) *Server {
	return &Server{config: config}
}

// Handler returns the public API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.Handle("/api/live", websocket.Server{Handler: s.handleLive})
	return mux
}

// AdminHandler returns the metrics and health routes for operators
func (s *Server) AdminHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene      string `json:"scene"`      // Scene name (e.g., "random-spheres")
	Width      int    `json:"width"`      // Image width, 0 for the scene default
	Height     int    `json:"height"`     // Image height, 0 for the scene default
	MaxSamples int    `json:"maxSamples"` // Maximum samples per pixel
	MaxPasses  int    `json:"maxPasses"`  // Maximum number of passes
	Seed       uint64 `json:"seed"`       // Scene layout and sampling seed
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	writeJSON(w, http.StatusOK, scene.ListAllScenes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		logs.Warn(errors.New("encoding response failed").Wrap(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(values url.Values) (*RenderRequest, error) {
	req := &RenderRequest{Scene: "random-spheres"}
	if name := values.Get("scene"); name != "" {
		req.Scene = name
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", 0, 1, s.config.MaxWidth); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", 0, 1, s.config.MaxHeight); err != nil {
		return nil, err
	}
	if req.MaxSamples, err = parseIntParam(values, "maxSamples", 50, 1, s.config.MaxSamples); err != nil {
		return nil, err
	}
	if req.MaxPasses, err = parseIntParam(values, "maxPasses", 7, 1, s.config.MaxSamples); err != nil {
		return nil, err
	}
	seed, err := parseIntParam(values, "seed", 42, 0, 1<<31-1)
	if err != nil {
		return nil, err
	}
	req.Seed = uint64(seed)

	if req.MaxPasses > req.MaxSamples {
		req.MaxPasses = req.MaxSamples
	}
	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	value := values.Get(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.New("invalid integer parameter").
			WithType(ErrTypeInvalidRequest).
			WithTag("key", key).
			WithTag("value", value)
	}
	if parsed < min || parsed > max {
		return 0, errors.New("parameter out of range").
			WithType(ErrTypeInvalidRequest).
			WithTag("key", key).
			WithTag("value", parsed).
			WithTag("min", min).
			WithTag("max", max)
	}
	return parsed, nil
}
