package renderer

import (
	"context"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/stretchr/testify/require"
)

func TestProgressiveSampleCalculation(t *testing.T) {
	config := DefaultProgressiveConfig()
	config.InitialSamples = 1
	config.MaxSamplesPerPixel = 50
	config.MaxPasses = 7

	pr := &ProgressiveRaytracer{config: config}

	// Pass 1: 1 sample, passes 2-6 add (50-1)/6 = 8 each, pass 7 gets the remainder
	expectedTotalSamples := []int{1, 9, 17, 25, 33, 41, 50}

	for pass := 1; pass <= 7; pass++ {
		totalSamples := pr.getSamplesForPass(pass)
		if totalSamples != expectedTotalSamples[pass-1] {
			t.Errorf("Pass %d: expected %d total samples, got %d",
				pass, expectedTotalSamples[pass-1], totalSamples)
		}
	}

	single := &ProgressiveRaytracer{config: ProgressiveConfig{MaxSamplesPerPixel: 12, MaxPasses: 1}}
	if got := single.getSamplesForPass(1); got != 12 {
		t.Errorf("Expected a single pass to take all 12 samples, got %d", got)
	}
}

func TestProgressiveConfig(t *testing.T) {
	config := DefaultProgressiveConfig()

	if config.InitialSamples != 1 {
		t.Errorf("Expected default initial samples 1, got %d", config.InitialSamples)
	}
	if config.MaxSamplesPerPixel != 50 {
		t.Errorf("Expected default max samples 50, got %d", config.MaxSamplesPerPixel)
	}
	if config.MaxPasses != 7 {
		t.Errorf("Expected default max passes 7, got %d", config.MaxPasses)
	}
}

func newTestProgressive(t *testing.T, config ProgressiveConfig) *ProgressiveRaytracer {
	t.Helper()
	world := diffuseSphereWorld(core.NewVec3(0.5, 0.5, 0.5))
	camera := NewCamera(testCameraConfig())
	return NewProgressiveRaytracer(buildScene(t, world), camera, constantSkybox(core.Ones()), 8, 4, config)
}

func TestRenderProgressive_Passes(t *testing.T) {
	config := ProgressiveConfig{
		InitialSamples:     1,
		MaxSamplesPerPixel: 7,
		MaxPasses:          4,
		NumWorkers:         2,
		Seed:               5,
	}
	pr := newTestProgressive(t, config)

	passChan, errChan := pr.RenderProgressive(context.Background())

	var results []PassResult
	for result := range passChan {
		results = append(results, result)
	}
	require.NoError(t, <-errChan)

	// Targets: 1, then 1+2, 1+4, and the final pass fills up to 7
	require.Len(t, results, 4)
	expectedSamples := []int{1, 3, 5, 7}
	for i, result := range results {
		require.Equal(t, i+1, result.PassNumber)
		require.Equal(t, float64(expectedSamples[i]), result.Stats.AverageSamples)
		require.Equal(t, 8*4, result.Stats.TotalPixels)
		require.Equal(t, 8, result.Image.Bounds().Dx())
		require.Equal(t, 4, result.Image.Bounds().Dy())
		require.Len(t, result.Buffer, 8*4)
		require.Equal(t, i == len(results)-1, result.IsLast)
	}
	require.Equal(t, 7, pr.Samples())

	// The finished render released its workers
	n, err := pr.tracer.RenderSample(make([]uint32, 8*4), 8, 4, pr.Samples())
	require.Equal(t, ErrTypeTracerClosed, errors.Type(err))
	require.Equal(t, 7, n)
}

func TestRenderProgressive_CancelledBeforeStart(t *testing.T) {
	pr := newTestProgressive(t, DefaultProgressiveConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	passChan, errChan := pr.RenderProgressive(ctx)

	count := 0
	for range passChan {
		count++
	}
	require.Zero(t, count)
	require.ErrorIs(t, <-errChan, context.Canceled)
	require.Zero(t, pr.Samples())
}

func TestRenderPass_StopsBetweenSamples(t *testing.T) {
	config := DefaultProgressiveConfig()
	config.NumWorkers = 2
	pr := newTestProgressive(t, config)
	defer pr.Close()

	result, err := pr.RenderPass(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 1, pr.Samples())
	require.Equal(t, 1, result.Stats.SamplesPerPass)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = pr.RenderPass(ctx, 2)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, pr.Samples())
}
