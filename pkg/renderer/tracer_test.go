package renderer

import (
	"math"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
	"github.com/stretchr/testify/require"
)

func constantSkybox(c core.Vec3) Skybox {
	return func(core.Ray) core.Vec3 { return c }
}

func buildScene(t *testing.T, world *geometry.World) *geometry.Scene {
	t.Helper()
	scene, err := geometry.Build(world, 0, 1, core.NewSeededSampler(7, 0))
	require.NoError(t, err)
	return scene
}

func newTestTracer(t *testing.T, world *geometry.World, camera *Camera, skybox Skybox) *Tracer {
	t.Helper()
	config := DefaultTracerConfig()
	config.NumWorkers = 4
	tracer := NewTracer(buildScene(t, world), camera, skybox, config)
	t.Cleanup(tracer.Close)
	return tracer
}

// diffuseSphereWorld holds a unit sphere at the origin resting above a large ground sphere
func diffuseSphereWorld(albedo core.Vec3) *geometry.World {
	world := geometry.NewWorld()
	world.AddSphere(core.NewVec3(0, 0, 0), 1, material.NewLambertian(albedo))
	world.AddSphere(core.NewVec3(0, -101, 0), 100, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
	return world
}

func TestTracer_ColorMissReturnsSkybox(t *testing.T) {
	world := geometry.NewWorld()
	world.AddSphere(core.NewVec3(0, 0, 10), 1, material.NewLambertian(core.Ones()))

	sky := func(ray core.Ray) core.Vec3 {
		return core.NewVec3(ray.Direction.X, 0.5, 0.25)
	}
	tracer := newTestTracer(t, world, NewCamera(testCameraConfig()), sky)
	sampler := core.NewSeededSampler(1, 0)

	ray := core.NewRay(core.Zero(), core.NewVec3(0.3, 0, -1), 0)
	for _, depth := range []int{0, 1, 49, 50, 1000} {
		require.Equal(t, sky(ray), tracer.Color(ray, depth, sampler), "depth %d", depth)
	}
}

func TestTracer_ColorDepthCutoffIsBlack(t *testing.T) {
	world := geometry.NewWorld()
	world.AddSphere(core.NewVec3(0, 0, -5), 1, material.NewMetal(core.Ones(), 0))
	tracer := newTestTracer(t, world, NewCamera(testCameraConfig()), constantSkybox(core.Ones()))
	sampler := core.NewSeededSampler(1, 0)

	ray := core.NewRay(core.Zero(), core.NewVec3(0, 0, -1), 0)
	require.Equal(t, core.Ones(), tracer.Color(ray, 0, sampler))
	require.Equal(t, core.Zero(), tracer.Color(ray, 50, sampler))
}

func TestTracer_ColorAttenuates(t *testing.T) {
	world := geometry.NewWorld()
	world.AddSphere(core.NewVec3(0, 0, -5), 1, material.NewMetal(core.NewVec3(0.5, 0.25, 1), 0))
	tracer := newTestTracer(t, world, NewCamera(testCameraConfig()), constantSkybox(core.NewVec3(0.8, 0.8, 0.8)))

	// A mirror bounces the ray straight back into the sky
	ray := core.NewRay(core.Zero(), core.NewVec3(0, 0, -1), 0)
	got := tracer.Color(ray, 0, core.NewSeededSampler(1, 0))
	require.InDelta(t, 0.4, got.X, 1e-12)
	require.InDelta(t, 0.2, got.Y, 1e-12)
	require.InDelta(t, 0.8, got.Z, 1e-12)
}

func TestRenderSample_FirstSampleIsGammaEncoded(t *testing.T) {
	sky := core.NewVec3(0.25, 0.5, 0.81)
	world := geometry.NewWorld()
	world.AddSphere(core.NewVec3(0, 0, 10), 1, material.NewLambertian(core.Ones()))
	tracer := newTestTracer(t, world, NewCamera(testCameraConfig()), constantSkybox(sky))

	width, height := 8, 4
	buffer := make([]uint32, width*height)
	n, err := tracer.RenderSample(buffer, width, height, 0)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	expected := sky.Sqrt().ToARGB()
	for i, px := range buffer {
		require.Equal(t, expected, px, "pixel %d", i)
	}
}

func TestRenderSample_FirstSampleMatchesTrace(t *testing.T) {
	world := diffuseSphereWorld(core.NewVec3(0.7, 0.3, 0.5))
	config := testCameraConfig()
	config.Center = core.NewVec3(0, 0, 4)
	config.LookAt = core.Zero()
	camera := NewCamera(config)
	tracer := newTestTracer(t, world, camera, constantSkybox(core.Ones()))

	width, height := 12, 6
	buffer := make([]uint32, width*height)
	_, err := tracer.RenderSample(buffer, width, height, 0)
	require.NoError(t, err)

	// Replay each row's sampler to trace the exact same paths
	for row := 0; row < height; row++ {
		sampler := core.NewSeededSampler(tracer.config.Seed, uint64(row))
		y := height - 1 - row
		for x := 0; x < width; x++ {
			jitter := sampler.Get2D()
			u := (float64(x) + jitter.X) / float64(width)
			v := (float64(y) + jitter.Y) / float64(height)
			sample := tracer.Color(camera.GetRay(u, v, sampler), 0, sampler)

			require.Equal(t, sample.Sqrt().ToARGB(), buffer[row*width+x], "pixel (%d, %d)", x, row)
		}
	}
}

func TestRenderSample_CountAndShape(t *testing.T) {
	world := diffuseSphereWorld(core.NewVec3(0.5, 0.5, 0.5))
	tracer := newTestTracer(t, world, NewCamera(testCameraConfig()), constantSkybox(core.Ones()))

	width, height := 6, 3
	buffer := make([]uint32, width*height)
	n := 0
	for i := 0; i < 5; i++ {
		next, err := tracer.RenderSample(buffer, width, height, n)
		require.NoError(t, err)
		require.Equal(t, n+1, next)
		require.Len(t, buffer, width*height)
		n = next
	}
	require.Equal(t, 5, n)
}

func TestRenderSample_Errors(t *testing.T) {
	world := diffuseSphereWorld(core.NewVec3(0.5, 0.5, 0.5))
	tracer := newTestTracer(t, world, NewCamera(testCameraConfig()), constantSkybox(core.Ones()))

	t.Run("buffer too small", func(t *testing.T) {
		buffer := make([]uint32, 5)
		n, err := tracer.RenderSample(buffer, 3, 2, 4)
		require.Error(t, err)
		require.Equal(t, ErrTypeBufferTooSmall, errors.Type(err))
		require.Equal(t, 4, n)
		require.Equal(t, make([]uint32, 5), buffer)
	})

	t.Run("invalid dimensions", func(t *testing.T) {
		_, err := tracer.RenderSample(make([]uint32, 4), 0, 4, 0)
		require.Equal(t, ErrTypeInvalidDimensions, errors.Type(err))

		_, err = tracer.RenderSample(make([]uint32, 4), 4, -1, 0)
		require.Equal(t, ErrTypeInvalidDimensions, errors.Type(err))
	})
}

func TestRenderSample_AfterClose(t *testing.T) {
	world := diffuseSphereWorld(core.NewVec3(0.5, 0.5, 0.5))
	tracer := newTestTracer(t, world, NewCamera(testCameraConfig()), constantSkybox(core.Ones()))

	tracer.Close()
	tracer.Close()

	buffer := make([]uint32, 4)
	n, err := tracer.RenderSample(buffer, 2, 2, 0)
	require.Error(t, err)
	require.Equal(t, ErrTypeTracerClosed, errors.Type(err))
	require.Zero(t, n)
	require.Equal(t, make([]uint32, 4), buffer)
}

func TestRenderSample_CloseWaitsForSample(t *testing.T) {
	world := diffuseSphereWorld(core.NewVec3(0.5, 0.5, 0.5))
	tracer := newTestTracer(t, world, NewCamera(testCameraConfig()), constantSkybox(core.Ones()))

	const width, height = 32, 32
	buffer := make([]uint32, width*height)

	type sampleResult struct {
		n   int
		err error
	}
	results := make(chan sampleResult, 1)
	go func() {
		n, err := tracer.RenderSample(buffer, width, height, 0)
		results <- sampleResult{n: n, err: err}
	}()
	tracer.Close()

	res := <-results
	if res.err != nil {
		require.Equal(t, ErrTypeTracerClosed, errors.Type(res.err))
		require.Zero(t, res.n)
		return
	}
	require.Equal(t, 1, res.n)
	require.NotEqual(t, make([]uint32, width*height), buffer)
}

func TestRenderSample_DiffuseSphereConverges(t *testing.T) {
	albedo := 0.5
	world := diffuseSphereWorld(core.NewVec3(albedo, albedo, albedo))
	config := testCameraConfig()
	config.Center = core.NewVec3(0, 0, 4)
	config.LookAt = core.Zero()
	config.VFov = 20
	config.AspectRatio = 1
	tracer := newTestTracer(t, world, NewCamera(config), constantSkybox(core.Ones()))

	width, height := 9, 9
	buffer := make([]uint32, width*height)
	n := 0
	var err error
	for i := 0; i < 64; i++ {
		n, err = tracer.RenderSample(buffer, width, height, n)
		require.NoError(t, err)
	}

	center := core.Vec3FromARGB(buffer[(height/2)*width+width/2]).Square()
	for axis := 0; axis < 3; axis++ {
		c := center.Axis(axis)
		require.Greater(t, c, 0.0, "center pixel should never turn black")
		require.Less(t, c, albedo, "center pixel should be darker than its albedo")
	}
	require.False(t, math.IsNaN(center.X))
}
