package scene

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
)

// NewRandomSpheresScene creates a field of small random spheres around three large ones
func NewRandomSpheresScene(sampler core.Sampler) *Definition {
	return newRandomSpheres("random-spheres", sampler, false)
}

// NewMovingSpheresScene is the random sphere field with diffuse spheres
// bouncing upward while the shutter is open
func NewMovingSpheresScene(sampler core.Sampler) *Definition {
	return newRandomSpheres("moving-spheres", sampler, true)
}

func newRandomSpheres(name string, sampler core.Sampler, moving bool) *Definition {
	world := geometry.NewWorld()

	world.AddSphere(core.NewVec3(0, -1000, 0), 1000, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))

	avoid := core.NewVec3(4, 0.2, 0)
	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			chooseMat := sampler.Get1D()
			center := core.NewVec3(
				float64(a)+0.9*sampler.Get1D(),
				0.2,
				float64(b)+0.9*sampler.Get1D(),
			)
			if center.Subtract(avoid).Length() <= 0.9 {
				continue
			}

			switch {
			case chooseMat < 0.8:
				albedo := sampler.Get3D().MultiplyVec(sampler.Get3D())
				if moving {
					end := center.Add(core.NewVec3(0, 0.5*sampler.Get1D(), 0))
					world.AddMovingSphere(center, end, 0, 1, 0.2, material.NewLambertian(albedo))
				} else {
					world.AddSphere(center, 0.2, material.NewLambertian(albedo))
				}

			case chooseMat < 0.95:
				albedo := sampler.Get3D().Add(core.Ones()).Multiply(0.5)
				fuzz := 0.5 * sampler.Get1D()
				world.AddSphere(center, 0.2, material.NewMetal(albedo, fuzz))

			default:
				world.AddSphere(center, 0.2, material.NewDielectric(1.5))
			}
		}
	}

	world.AddSphere(core.NewVec3(0, 1, 0), 1.0, material.NewDielectric(1.5))
	world.AddSphere(core.NewVec3(-4, 1, 0), 1.0, material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1)))
	world.AddSphere(core.NewVec3(4, 1, 0), 1.0, material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0))

	camera := renderer.CameraConfig{
		Center:        core.NewVec3(13, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          20,
		Aperture:      0.1,
		FocusDistance: 10,
		Time0:         0,
		Time1:         1,
	}

	return newDefinition(name, world, camera, DefaultSkybox(), 800, 400)
}
