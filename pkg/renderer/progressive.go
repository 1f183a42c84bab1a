package renderer

import (
	"context"
	"image"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
)

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	InitialSamples     int    // Samples for first pass (1 recommended)
	MaxSamplesPerPixel int    // Maximum total samples per pixel
	MaxPasses          int    // Maximum number of passes
	NumWorkers         int    // Number of parallel workers (0 = use CPU count)
	Seed               uint64 // Base seed for the tracer
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		InitialSamples:     1,
		MaxSamplesPerPixel: 50,
		MaxPasses:          7, // 1, 9, 17, ... then the remainder up to 50
		NumWorkers:         0,
		Seed:               42,
	}
}

// ProgressiveRaytracer owns an accumulation buffer and refines it pass by pass
type ProgressiveRaytracer struct {
	width, height int
	config        ProgressiveConfig
	tracer        *Tracer
	buffer        []uint32
	samples       int
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber int
	Image      *image.RGBA
	Buffer     []uint32 // Snapshot of the packed buffer after the pass
	Stats      RenderStats
	IsLast     bool
}

// NewProgressiveRaytracer creates a new progressive raytracer
func NewProgressiveRaytracer(scene *geometry.Scene, camera *Camera, skybox Skybox, width, height int, config ProgressiveConfig) *ProgressiveRaytracer {
	tracerConfig := DefaultTracerConfig()
	if config.NumWorkers > 0 {
		tracerConfig.NumWorkers = config.NumWorkers
	}
	tracerConfig.Seed = config.Seed

	return &ProgressiveRaytracer{
		width:  width,
		height: height,
		config: config,
		tracer: NewTracer(scene, camera, skybox, tracerConfig),
		buffer: make([]uint32, width*height),
	}
}

// getSamplesForPass calculates the target total samples for a given pass
func (pr *ProgressiveRaytracer) getSamplesForPass(passNumber int) int {
	if pr.config.MaxPasses <= 1 {
		return pr.config.MaxSamplesPerPixel
	}

	if passNumber == 1 {
		return pr.config.InitialSamples
	}

	// Divide remaining samples evenly across remaining passes
	remainingSamples := pr.config.MaxSamplesPerPixel - pr.config.InitialSamples
	remainingPasses := pr.config.MaxPasses - 1
	samplesPerPass := remainingSamples / remainingPasses

	targetSamples := pr.config.InitialSamples + (passNumber-1)*samplesPerPass
	if passNumber == pr.config.MaxPasses {
		targetSamples = pr.config.MaxSamplesPerPixel
	}

	return targetSamples
}

// RenderPass samples until the pass target is reached. The context is checked
// between samples, never during one.
func (pr *ProgressiveRaytracer) RenderPass(ctx context.Context, passNumber int) (PassResult, error) {
	targetSamples := min(pr.getSamplesForPass(passNumber), pr.config.MaxSamplesPerPixel)
	before := pr.samples

	for pr.samples < targetSamples {
		if err := ctx.Err(); err != nil {
			return PassResult{}, err
		}

		n, err := pr.tracer.RenderSample(pr.buffer, pr.width, pr.height, pr.samples)
		if err != nil {
			return PassResult{}, errors.New("rendering sample failed").
				WithTag("pass", passNumber).
				WithTag("samples", pr.samples).
				Wrap(err)
		}
		pr.samples = n
	}

	snapshot := make([]uint32, len(pr.buffer))
	copy(snapshot, pr.buffer)

	totalPixels := pr.width * pr.height
	return PassResult{
		PassNumber: passNumber,
		Image:      BufferToImage(snapshot, pr.width, pr.height),
		Buffer:     snapshot,
		Stats: RenderStats{
			TotalPixels:    totalPixels,
			TotalSamples:   totalPixels * pr.samples,
			SamplesPerPass: pr.samples - before,
			AverageSamples: float64(pr.samples),
			MaxSamples:     pr.config.MaxSamplesPerPixel,
		},
		IsLast: passNumber >= pr.config.MaxPasses || pr.samples >= pr.config.MaxSamplesPerPixel,
	}, nil
}

// Close releases the workers. RenderProgressive calls it when rendering ends.
func (pr *ProgressiveRaytracer) Close() {
	pr.tracer.Close()
}

// Samples returns the number of samples averaged into the buffer so far
func (pr *ProgressiveRaytracer) Samples() int {
	return pr.samples
}

// RenderProgressive renders with channel-based communication.
// The pass channel and the error channel are closed when rendering ends.
func (pr *ProgressiveRaytracer) RenderProgressive(ctx context.Context) (<-chan PassResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(passChan)
		defer close(errChan)
		defer pr.Close()

		activeRenders.Inc()
		defer activeRenders.Dec()

		logs.WithTag("passes", pr.config.MaxPasses).
			WithTag("max_samples", pr.config.MaxSamplesPerPixel).
			WithTag("workers", pr.tracer.NumWorkers()).
			WithTag("width", pr.width).
			WithTag("height", pr.height).
			Info("starting progressive rendering")

		for pass := 1; pass <= pr.config.MaxPasses; pass++ {
			startTime := time.Now()

			result, err := pr.RenderPass(ctx, pass)
			if err != nil {
				if ctx.Err() != nil {
					logs.WithTag("pass", pass).
						WithTag("samples", pr.samples).
						Info("rendering cancelled")
				}
				errChan <- err
				return
			}
			passesCompleted.Inc()

			logs.WithTag("pass", pass).
				WithTag("samples", pr.samples).
				WithTag("duration", time.Since(startTime).String()).
				Info("pass completed")

			select {
			case passChan <- result:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}

			if result.IsLast {
				break
			}
		}
	}()

	return passChan, errChan
}
