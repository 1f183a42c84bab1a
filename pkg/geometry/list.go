package geometry

import "github.com/df07/go-progressive-pathtracer/pkg/core"

// List is an unaccelerated set of primitives tested one after another
type List []Primitive

// Hit returns the nearest intersection across all primitives
func (l List) Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool) {
	var closest core.HitRecord
	hitAnything := false
	closestSoFar := tMax

	for i := range l {
		if hit, ok := l[i].Hit(ray, tMin, closestSoFar); ok {
			hitAnything = true
			closestSoFar = hit.T
			closest = hit
		}
	}

	return closest, hitAnything
}

// BoundingBox returns the union of every primitive's box over [time0, time1]
func (l List) BoundingBox(time0, time1 float64) core.AABB {
	if len(l) == 0 {
		return core.AABB{}
	}
	box := l[0].BoundingBox(time0, time1)
	for i := 1; i < len(l); i++ {
		box = box.Union(l[i].BoundingBox(time0, time1))
	}
	return box
}
