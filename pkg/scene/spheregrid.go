package scene

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
)

// OKLab to cubed-root LMS and LMS to linear sRGB, row major
var (
	oklabToLMS = [3][3]float64{
		{1, 0.3963377774, 0.2158037573},
		{1, -0.1055613458, -0.0638541728},
		{1, -0.0894841775, -1.2914855480},
	}
	lmsToLinearRGB = [3][3]float64{
		{4.0767416621, -3.3077115913, 0.2309699292},
		{-1.2684380046, 2.6097574011, -0.3413193965},
		{-0.0041960863, -0.7034186147, 1.7076147010},
	}
)

// oklchToRGB maps lightness in [0, 1], chroma and hue in degrees to a linear
// RGB albedo, clamped to [0, 1]
func oklchToRGB(lightness, chroma, hue float64) core.Vec3 {
	sin, cos := math.Sincos(hue * math.Pi / 180)
	lab := [3]float64{lightness, chroma * cos, chroma * sin}

	var lms [3]float64
	for i, row := range oklabToLMS {
		v := row[0]*lab[0] + row[1]*lab[1] + row[2]*lab[2]
		lms[i] = v * v * v
	}

	var rgb [3]float64
	for i, row := range lmsToLinearRGB {
		v := row[0]*lms[0] + row[1]*lms[1] + row[2]*lms[2]
		rgb[i] = math.Max(0, math.Min(1, v))
	}
	return core.NewVec3(rgb[0], rgb[1], rgb[2])
}

// NewSphereGridScene creates a grid of metal spheres whose hue varies across x
// and whose chroma varies across z
func NewSphereGridScene() *Definition {
	world := geometry.NewWorld()

	world.AddSphere(core.NewVec3(4.5, -1000, 4.5), 1000, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))

	gridSize := 12
	targetArea := 9.0
	spacing := targetArea / float64(gridSize-1)
	sphereRadius := math.Max(0.02, math.Min(0.35, spacing*0.35))

	baseLightness := 0.65
	minChroma := 0.05
	maxChroma := 0.25

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			x := float64(i)*spacing - targetArea/2.0 + 4.5
			z := float64(j)*spacing - targetArea/2.0 + 4.5
			position := core.NewVec3(x, sphereRadius, z)

			hue := (float64(i) / float64(gridSize-1)) * 360.0
			chroma := minChroma + (float64(j)/float64(gridSize-1))*(maxChroma-minChroma)
			lightness := baseLightness + 0.1*math.Sin(float64(i+j)*0.5)

			roughness := 0.05 + 0.1*float64((i+j)%3)/2.0
			world.AddSphere(position, sphereRadius, material.NewMetal(oklchToRGB(lightness, chroma, hue), roughness))
		}
	}

	center := core.NewVec3(4.5, 6, 18)
	lookAt := core.NewVec3(4.5, 0.8, 4.5)
	camera := renderer.CameraConfig{
		Center:        center,
		LookAt:        lookAt,
		Up:            core.NewVec3(0, 1, 0),
		VFov:          40.0,
		Aperture:      0.02,
		FocusDistance: center.Subtract(lookAt).Length(),
	}

	return newDefinition("sphere-grid", world, camera, DefaultSkybox(), 640, 360)
}
