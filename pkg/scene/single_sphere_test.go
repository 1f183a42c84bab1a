package scene

import (
	"testing"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
	"github.com/stretchr/testify/require"
)

func TestSingleSphere_CenterPixelIsShadowed(t *testing.T) {
	d := NewSingleSphereScene()
	d.Resize(15, 15)

	s, camera, err := d.Build(core.NewSeededSampler(1, 0))
	require.NoError(t, err)

	config := renderer.DefaultTracerConfig()
	config.NumWorkers = 2
	tracer := renderer.NewTracer(s, camera, d.Skybox, config)
	defer tracer.Close()

	buffer := make([]uint32, d.Width*d.Height)
	n := 0
	for i := 0; i < 48; i++ {
		n, err = tracer.RenderSample(buffer, d.Width, d.Height, n)
		require.NoError(t, err)
	}

	center := core.Vec3FromARGB(buffer[(d.Height/2)*d.Width+d.Width/2]).Square()
	for axis := 0; axis < 3; axis++ {
		require.Greater(t, center.Axis(axis), 0.0)
		require.Less(t, center.Axis(axis), SingleSphereAlbedo.Axis(axis))
	}
}
