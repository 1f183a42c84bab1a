package scene

import (
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/geometry"
	"github.com/df07/go-progressive-pathtracer/pkg/renderer"
)

// Definition contains all the elements needed to render a scene
type Definition struct {
	Name         string
	World        *geometry.World
	CameraConfig renderer.CameraConfig
	Skybox       renderer.Skybox
	Width        int // Default image width
	Height       int // Default image height
}

// Resize changes the image size and keeps the camera aspect ratio in step
func (d *Definition) Resize(width, height int) {
	d.Width = width
	d.Height = height
	d.CameraConfig.AspectRatio = float64(width) / float64(height)
}

// Fit resizes to the requested size. A zero dimension is derived from the
// other one and the current aspect ratio; both zero keeps the default size.
func (d *Definition) Fit(width, height int) {
	if width <= 0 && height <= 0 {
		return
	}
	if width <= 0 {
		width = int(float64(height) * d.CameraConfig.AspectRatio)
	}
	if height <= 0 {
		height = int(float64(width) / d.CameraConfig.AspectRatio)
	}
	d.Resize(max(width, 1), max(height, 1))
}

// Build freezes the world into a hierarchy over the camera's shutter interval
// and creates the camera
func (d *Definition) Build(sampler core.Sampler) (*geometry.Scene, *renderer.Camera, error) {
	s, err := geometry.Build(d.World, d.CameraConfig.Time0, d.CameraConfig.Time1, sampler)
	if err != nil {
		return nil, nil, err
	}
	return s, renderer.NewCamera(d.CameraConfig), nil
}

// GetPrimitiveCount returns the number of primitives in the scene
func (d *Definition) GetPrimitiveCount() int {
	return len(d.World.Primitives)
}

func newDefinition(name string, world *geometry.World, camera renderer.CameraConfig, skybox renderer.Skybox, width, height int) *Definition {
	d := &Definition{
		Name:         name,
		World:        world,
		CameraConfig: camera,
		Skybox:       skybox,
	}
	d.Resize(width, height)
	return d
}
