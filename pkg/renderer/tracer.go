package renderer

import (
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
)

const (
	// ErrTypeBufferTooSmall is the error type returned when the accumulation
	// buffer holds fewer than width*height pixels.
	ErrTypeBufferTooSmall = "buffer-too-small"

	// ErrTypeInvalidDimensions is the error type returned for a non-positive
	// width or height.
	ErrTypeInvalidDimensions = "invalid-dimensions"

	// ErrTypeTracerClosed is the error type returned when sampling after Close.
	ErrTypeTracerClosed = "tracer-closed"

	// ErrTypeIncompleteSample is the error type returned when the workers stop
	// before every row of a sample is done.
	ErrTypeIncompleteSample = "incomplete-sample"
)

// Skybox returns the background color seen by a ray that escapes the scene
type Skybox func(ray core.Ray) core.Vec3

// TracerConfig contains configuration for the path tracer
type TracerConfig struct {
	NumWorkers int     // Parallel workers (0 = use CPU count)
	Seed       uint64  // Base seed for per-task samplers
	MaxDepth   int     // Bounces before a path contributes black
	Epsilon    float64 // Minimum hit distance, avoids self-intersection
}

// DefaultTracerConfig returns sensible default values
func DefaultTracerConfig() TracerConfig {
	return TracerConfig{
		NumWorkers: runtime.NumCPU(),
		Seed:       42,
		MaxDepth:   50,
		Epsilon:    1e-3,
	}
}

// Tracer renders samples of a scene into a packed accumulation buffer
type Tracer struct {
	scene  *geometry.Scene
	camera *Camera
	skybox Skybox
	config TracerConfig

	mu     sync.Mutex // Guards the pool and closed
	pool   *WorkerPool
	closed bool
}

// NewTracer creates a tracer and starts its workers. Call Close when done.
func NewTracer(scene *geometry.Scene, camera *Camera, skybox Skybox, config TracerConfig) *Tracer {
	t := &Tracer{
		scene:  scene,
		camera: camera,
		skybox: skybox,
		config: config,
	}
	t.pool = NewWorkerPool(t, config.NumWorkers)
	t.pool.Start()
	return t
}

// Close stops the worker pool once any in-flight sample is done. It is safe
// to call more than once.
func (t *Tracer) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	t.closed = true
	t.pool.Stop()
}

// NumWorkers returns the number of parallel workers
func (t *Tracer) NumWorkers() int {
	return t.pool.GetNumWorkers()
}

// Color estimates the radiance arriving along ray
func (t *Tracer) Color(ray core.Ray, depth int, sampler core.Sampler) core.Vec3 {
	hit, ok := t.scene.Hit(ray, t.config.Epsilon, math.Inf(1))
	if !ok {
		return t.skybox(ray)
	}

	if depth >= t.config.MaxDepth {
		return core.Zero()
	}

	scatter, ok := t.scene.Material(hit.MaterialID).Scatter(ray, hit, sampler)
	if !ok {
		return core.Zero()
	}

	return t.Color(scatter.Scattered, depth+1, sampler).MultiplyVec(scatter.Attenuation)
}

// RenderSample adds one sample per pixel to buffer, which holds the
// gamma-encoded running average of nSamples earlier samples. It returns the
// new sample count. Buffer row 0 is the top of the image.
func (t *Tracer) RenderSample(buffer []uint32, width, height, nSamples int) (int, error) {
	if width <= 0 || height <= 0 {
		return nSamples, errors.New("image dimensions must be positive").
			WithType(ErrTypeInvalidDimensions).
			WithTag("width", width).
			WithTag("height", height)
	}
	if len(buffer) < width*height {
		return nSamples, errors.New("buffer is smaller than the image").
			WithType(ErrTypeBufferTooSmall).
			WithTag("buffer_len", len(buffer)).
			WithTag("width", width).
			WithTag("height", height)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nSamples, errors.New("tracer is closed").
			WithType(ErrTypeTracerClosed).
			WithTag("samples", nSamples)
	}

	start := time.Now()
	numTasks := t.submitRows(buffer, width, height, nSamples)

	pixels := 0
	for done := 0; done < numTasks; done++ {
		result, ok := t.pool.GetResult()
		if !ok {
			return nSamples, errors.New("workers stopped before the sample was complete").
				WithType(ErrTypeIncompleteSample).
				WithTag("rows_done", done).
				WithTag("rows", numTasks)
		}
		pixels += result.Pixels
	}

	samplesRendered.Add(float64(pixels))
	renderSampleDuration.Observe(time.Since(start).Seconds())

	return nSamples + 1, nil
}

// submitRows queues one task per buffer row. Each task gets its own sampler
// derived from the seed, the sample index and the row, so the output does not
// depend on which worker picks it up.
func (t *Tracer) submitRows(buffer []uint32, width, height, nSamples int) int {
	go func() {
		for row := 0; row < height; row++ {
			t.pool.SubmitTask(RowTask{
				TaskID:   row,
				Buffer:   buffer,
				Width:    width,
				Height:   height,
				RowStart: row,
				RowEnd:   row + 1,
				NSamples: nSamples,
				Sampler:  core.NewSeededSampler(t.config.Seed+uint64(nSamples), uint64(row)),
			})
		}
	}()
	return height
}

// renderRows blends one new sample into every pixel of the task's rows
func (t *Tracer) renderRows(task RowTask) {
	n := float64(task.NSamples)
	w := float64(task.Width)
	h := float64(task.Height)

	for row := task.RowStart; row < task.RowEnd; row++ {
		y := task.Height - 1 - row
		for x := 0; x < task.Width; x++ {
			jitter := task.Sampler.Get2D()
			u := (float64(x) + jitter.X) / w
			v := (float64(y) + jitter.Y) / h

			ray := t.camera.GetRay(u, v, task.Sampler)
			sample := t.Color(ray, 0, task.Sampler)

			i := row*task.Width + x
			avg := core.Vec3FromARGB(task.Buffer[i]).Square().Multiply(n)
			avg = avg.Add(sample).Divide(n + 1)
			task.Buffer[i] = avg.Sqrt().ToARGB()
		}
	}
}
