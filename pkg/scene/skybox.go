package scene

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
)

// GradientSkybox blends from bottom to top along the ray's unit direction y
func GradientSkybox(bottom, top core.Vec3) renderer.Skybox {
	return func(ray core.Ray) core.Vec3 {
		unit := ray.Direction.Normalize()
		t := 0.5 * (unit.Y + 1.0)
		return bottom.Multiply(1.0 - t).Add(top.Multiply(t))
	}
}

// ConstantSkybox returns the same color in every direction
func ConstantSkybox(color core.Vec3) renderer.Skybox {
	return func(core.Ray) core.Vec3 {
		return color
	}
}

// DefaultSkybox is a white horizon fading to light blue overhead
func DefaultSkybox() renderer.Skybox {
	return GradientSkybox(core.NewVec3(1.0, 1.0, 1.0), core.NewVec3(0.5, 0.7, 1.0))
}
