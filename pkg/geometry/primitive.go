package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// Kind identifies a primitive variant
type Kind int

const (
	KindSphere Kind = iota
	KindMovingSphere
)

func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindMovingSphere:
		return "moving-sphere"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// Primitive is a sphere whose center may move linearly between two keyframes.
// Static spheres leave Center1 equal to Center0.
type Primitive struct {
	Kind       Kind
	Center0    core.Vec3
	Center1    core.Vec3
	Time0      float64
	Time1      float64
	Radius     float64
	MaterialID int
}

// NewSphere creates a static sphere
func NewSphere(center core.Vec3, radius float64, materialID int) Primitive {
	return Primitive{
		Kind:       KindSphere,
		Center0:    center,
		Center1:    center,
		Radius:     radius,
		MaterialID: materialID,
	}
}

// NewMovingSphere creates a sphere travelling from center0 at time0 to center1 at time1
func NewMovingSphere(center0, center1 core.Vec3, time0, time1, radius float64, materialID int) Primitive {
	return Primitive{
		Kind:       KindMovingSphere,
		Center0:    center0,
		Center1:    center1,
		Time0:      time0,
		Time1:      time1,
		Radius:     radius,
		MaterialID: materialID,
	}
}

// Center returns the sphere center at the given time.
// Times outside [Time0, Time1] hold the nearest keyframe.
func (p *Primitive) Center(time float64) core.Vec3 {
	if p.Kind != KindMovingSphere || p.Time1 == p.Time0 {
		return p.Center0
	}

	frac := (time - p.Time0) / (p.Time1 - p.Time0)
	frac = math.Max(0, math.Min(1, frac))
	return p.Center0.Add(p.Center1.Subtract(p.Center0).Multiply(frac))
}

// Hit intersects the ray with the sphere over the open interval (tMin, tMax)
func (p *Primitive) Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool) {
	center := p.Center(ray.Time)
	oc := ray.Origin.Subtract(center)

	// Half-b form: roots are (-b ± √d) / a
	a := ray.Direction.Dot(ray.Direction)
	b := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - p.Radius*p.Radius

	discriminant := b*b - a*c
	if !(discriminant > 0) {
		return core.HitRecord{}, false
	}

	sqrtD := math.Sqrt(discriminant)
	root := (-b - sqrtD) / a
	if !(root > tMin && root < tMax) {
		root = (-b + sqrtD) / a
		if !(root > tMin && root < tMax) {
			return core.HitRecord{}, false
		}
	}

	point := ray.At(root)
	return core.HitRecord{
		T:          root,
		Point:      point,
		Normal:     point.Subtract(center).Divide(p.Radius),
		MaterialID: p.MaterialID,
	}, true
}

// BoundingBox returns a box enclosing the sphere over the time interval [time0, time1]
func (p *Primitive) BoundingBox(time0, time1 float64) core.AABB {
	if p.Kind != KindMovingSphere {
		return sphereBox(p.Center0, p.Radius)
	}
	return sphereBox(p.Center(time0), p.Radius).Union(sphereBox(p.Center(time1), p.Radius))
}

// sphereBox uses |radius| so hollow spheres (negative radius) still get a valid box
func sphereBox(center core.Vec3, radius float64) core.AABB {
	r := math.Abs(radius)
	extent := core.NewVec3(r, r, r)
	return core.NewAABB(center.Subtract(extent), center.Add(extent))
}
