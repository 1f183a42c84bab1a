package scene

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
)

// NewThreeSpheresScene creates diffuse, metal and hollow glass spheres on a large ground sphere
func NewThreeSpheresScene() *Definition {
	world := geometry.NewWorld()

	world.AddSphere(core.NewVec3(0, -100.5, -1), 100, material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0)))
	world.AddSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5)))
	world.AddSphere(core.NewVec3(1, 0, -1), 0.5, material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3))

	// Glass bubble: the inner sphere's negative radius flips its normals inward
	world.AddSphere(core.NewVec3(-1, 0, -1), 0.5, material.NewDielectric(1.5))
	world.AddSphere(core.NewVec3(-1, 0, -1), -0.45, material.NewDielectric(1.5))

	camera := renderer.CameraConfig{
		Center:        core.NewVec3(-2, 2, 1),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          30,
		Aperture:      0,
		FocusDistance: core.NewVec3(-2, 2, 1).Subtract(core.NewVec3(0, 0, -1)).Length(),
	}

	return newDefinition("three-spheres", world, camera, DefaultSkybox(), 400, 200)
}
