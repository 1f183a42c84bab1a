package scene

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
)

// SingleSphereAlbedo is the reflectance of the sphere in the single sphere scene
var SingleSphereAlbedo = core.NewVec3(0.5, 0.5, 0.5)

// NewSingleSphereScene creates one diffuse unit sphere at the origin, resting on a
// large ground sphere under a uniform white sky, viewed head on
func NewSingleSphereScene() *Definition {
	world := geometry.NewWorld()

	world.AddSphere(core.NewVec3(0, 0, 0), 1, material.NewLambertian(SingleSphereAlbedo))
	world.AddSphere(core.NewVec3(0, -101, 0), 100, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))

	camera := renderer.CameraConfig{
		Center:        core.NewVec3(0, 0, 4),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          40,
		Aperture:      0,
		FocusDistance: 4,
	}

	return newDefinition("single-sphere", world, camera, ConstantSkybox(core.Ones()), 200, 200)
}
