package geometry

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/df07/go-progressive-pathtracer/pkg/material"
)

// ErrTypeInvalidMaterial is the error type returned when a primitive refers to
// a material that does not exist.
const ErrTypeInvalidMaterial = "invalid-material"

// World collects primitives and the materials they own while a scene is being assembled
type World struct {
	Primitives []Primitive
	Materials  []material.Material
}

// NewWorld creates an empty world
func NewWorld() *World {
	return &World{}
}

func (w *World) addMaterial(m material.Material) int {
	w.Materials = append(w.Materials, m)
	return len(w.Materials) - 1
}

// AddSphere adds a static sphere with its own material
func (w *World) AddSphere(center core.Vec3, radius float64, m material.Material) {
	id := w.addMaterial(m)
	w.Primitives = append(w.Primitives, NewSphere(center, radius, id))
}

// AddMovingSphere adds a moving sphere with its own material
func (w *World) AddMovingSphere(center0, center1 core.Vec3, time0, time1, radius float64, m material.Material) {
	id := w.addMaterial(m)
	w.Primitives = append(w.Primitives, NewMovingSphere(center0, center1, time0, time1, radius, id))
}

// Scene is a world frozen into a hierarchy, ready for concurrent rendering
type Scene struct {
	bvh       *BVH
	materials []material.Material
}

// Build validates the world and builds its hierarchy over [time0, time1]
func Build(world *World, time0, time1 float64, sampler core.Sampler) (*Scene, error) {
	for i, p := range world.Primitives {
		if p.MaterialID < 0 || p.MaterialID >= len(world.Materials) {
			return nil, errors.New("primitive refers to a missing material").
				WithType(ErrTypeInvalidMaterial).
				WithTag("primitive", i).
				WithTag("material_id", p.MaterialID)
		}
	}

	bvh, err := BuildBVH(world.Primitives, time0, time1, sampler)
	if err != nil {
		return nil, err
	}

	materials := make([]material.Material, len(world.Materials))
	copy(materials, world.Materials)

	stats := bvh.Stats()
	logs.WithTag("primitives", len(world.Primitives)).
		WithTag("nodes", stats.TotalNodes).
		WithTag("leaves", stats.LeafNodes).
		WithTag("max_depth", stats.MaxDepth).
		WithTag("avg_depth", stats.AvgDepth).
		Debug("bvh built")

	return &Scene{bvh: bvh, materials: materials}, nil
}

// Hit returns the nearest intersection in (tMin, tMax)
func (s *Scene) Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool) {
	return s.bvh.Hit(ray, tMin, tMax)
}

// Material returns the material referenced by a hit record
func (s *Scene) Material(id int) *material.Material {
	return &s.materials[id]
}

// BVH returns the scene's hierarchy
func (s *Scene) BVH() *BVH {
	return s.bvh
}
