package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/df07/go-progressive-pathtracer/pkg/scene"
	"github.com/google/uuid"
	"github.com/segmentio/encoding/json"
)

// PassUpdate is the payload of a "pass" SSE event
type PassUpdate struct {
	RenderID       string  `json:"renderId"`
	PassNumber     int     `json:"passNumber"`
	TotalPasses    int     `json:"totalPasses"`
	ElapsedMs      int64   `json:"elapsedMs"`
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int     `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	MaxSamples     int     `json:"maxSamples"`
	PrimitiveCount int     `json:"primitiveCount"`
	ImageData      string  `json:"imageData"` // Base64 encoded PNG
	IsComplete     bool    `json:"isComplete"`
}

// renderingPipeline is a running progressive render
type renderingPipeline struct {
	ID         string
	Definition *scene.Definition
	Raytracer  *renderer.ProgressiveRaytracer
	Passes     <-chan renderer.PassResult
	Errors     <-chan error
	StartTime  time.Time
}

// startRender builds the requested scene and starts rendering it until ctx is done
func (s *Server) startRender(ctx context.Context, req *RenderRequest) (*renderingPipeline, error) {
	d, err := scene.Lookup(req.Scene, req.Seed)
	if err != nil {
		return nil, err
	}
	d.Fit(req.Width, req.Height)
	if d.Width > s.config.MaxWidth || d.Height > s.config.MaxHeight {
		return nil, errors.New("image size exceeds the server limits").
			WithType(ErrTypeInvalidRequest).
			WithTag("scene", d.Name).
			WithTag("width", d.Width).
			WithTag("height", d.Height).
			WithTag("max_width", s.config.MaxWidth).
			WithTag("max_height", s.config.MaxHeight)
	}

	built, camera, err := d.Build(core.NewSeededSampler(req.Seed, 1))
	if err != nil {
		return nil, errors.New("building scene failed").
			WithTag("scene", d.Name).
			Wrap(err)
	}

	config := renderer.DefaultProgressiveConfig()
	config.MaxSamplesPerPixel = req.MaxSamples
	config.MaxPasses = req.MaxPasses
	config.NumWorkers = s.config.Workers
	config.Seed = req.Seed

	pr := renderer.NewProgressiveRaytracer(built, camera, d.Skybox, d.Width, d.Height, config)
	passes, errs := pr.RenderProgressive(ctx)

	return &renderingPipeline{
		ID:         uuid.NewString(),
		Definition: d,
		Raytracer:  pr,
		Passes:     passes,
		Errors:     errs,
		StartTime:  time.Now(),
	}, nil
}

// handleRender streams progressive passes as server-sent events
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	setSSEHeaders(w)
	ctx := r.Context()
	rendersStarted.WithLabelValues(transportSSE).Inc()

	req, err := s.parseRenderRequest(r.URL.Query())
	if err != nil {
		s.sendError(w, transportSSE, err)
		return
	}

	pipeline, err := s.startRender(ctx, req)
	if err != nil {
		s.sendError(w, transportSSE, err)
		return
	}

	consoleChan := make(chan ConsoleMessage, 50)
	logger := NewWebLogger(pipeline.ID, consoleChan)
	d := pipeline.Definition
	logger.Printf("Rendering %s at %dx%d, up to %d samples in %d passes\n",
		d.Name, d.Width, d.Height, req.MaxSamples, req.MaxPasses)
	s.flushConsole(w, consoleChan)

	for result := range pipeline.Passes {
		logger.Printf("Pass %d completed: %d samples/pixel\n", result.PassNumber, int(result.Stats.AverageSamples))
		s.flushConsole(w, consoleChan)

		update, err := newPassUpdate(pipeline, req, result)
		if err != nil {
			s.sendError(w, transportSSE, err)
			return
		}
		if err := sendSSEJSON(w, "pass", update); err != nil {
			return
		}
	}

	if err := <-pipeline.Errors; err != nil {
		if ctx.Err() == nil {
			s.sendError(w, transportSSE, err)
		}
		return
	}

	sendSSEEvent(w, "complete", "Rendering completed")
}

func newPassUpdate(pipeline *renderingPipeline, req *RenderRequest, result renderer.PassResult) (PassUpdate, error) {
	imageData, err := imageToBase64PNG(result.Image)
	if err != nil {
		return PassUpdate{}, err
	}

	return PassUpdate{
		RenderID:       pipeline.ID,
		PassNumber:     result.PassNumber,
		TotalPasses:    req.MaxPasses,
		ElapsedMs:      time.Since(pipeline.StartTime).Milliseconds(),
		TotalPixels:    result.Stats.TotalPixels,
		TotalSamples:   result.Stats.TotalSamples,
		AverageSamples: result.Stats.AverageSamples,
		MaxSamples:     result.Stats.MaxSamples,
		PrimitiveCount: pipeline.Definition.GetPrimitiveCount(),
		ImageData:      imageData,
		IsComplete:     result.IsLast,
	}, nil
}

func (s *Server) flushConsole(w http.ResponseWriter, consoleChan chan ConsoleMessage) {
	for {
		select {
		case msg := <-consoleChan:
			sendSSEJSON(w, "console", msg)
		default:
			return
		}
	}
}

func (s *Server) sendError(w http.ResponseWriter, transport string, err error) {
	renderErrors.WithLabelValues(transport, errors.Type(err)).Inc()
	sendSSEEvent(w, "error", err.Error())
}

func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

func sendSSEJSON(w http.ResponseWriter, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return sendSSEEvent(w, event, string(data))
}

// sendSSEEvent writes one event and flushes it to the client
func sendSSEEvent(w http.ResponseWriter, event, data string) error {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	// The controller reaches the flusher behind metric middleware
	http.NewResponseController(w).Flush()
	return nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
