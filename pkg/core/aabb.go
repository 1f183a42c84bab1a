package core

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// Hit tests if a ray intersects with this AABB within (tMin, tMax) using the slab method.
//
// A zero direction component yields an infinite reciprocal: the slab distances become
// ±Inf when the origin is strictly inside or outside the slab, and NaN when the origin
// lies exactly on a slab plane. Comparisons against NaN are false, so a NaN distance
// never tightens the interval and never rejects the ray.
func (aabb AABB) Hit(ray Ray, tMin, tMax float64) bool {
	for axis := 0; axis < 3; axis++ {
		invDirection := 1.0 / ray.Direction.Axis(axis)
		origin := ray.Origin.Axis(axis)

		t0 := (aabb.Min.Axis(axis) - origin) * invDirection
		t1 := (aabb.Max.Axis(axis) - origin) * invDirection
		if invDirection < 0 {
			t0, t1 = t1, t0
		}

		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMax <= tMin {
			return false
		}
	}

	return true
}

// Union returns the surrounding box of this AABB and another
func (aabb AABB) Union(other AABB) AABB {
	min := Vec3{
		X: fastMin(aabb.Min.X, other.Min.X),
		Y: fastMin(aabb.Min.Y, other.Min.Y),
		Z: fastMin(aabb.Min.Z, other.Min.Z),
	}
	max := Vec3{
		X: fastMax(aabb.Max.X, other.Max.X),
		Y: fastMax(aabb.Max.Y, other.Max.Y),
		Z: fastMax(aabb.Max.Z, other.Max.Z),
	}
	return AABB{Min: min, Max: max}
}

// Center returns the center point of the AABB
func (aabb AABB) Center() Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// IsValid returns true if min <= max on every axis
func (aabb AABB) IsValid() bool {
	return aabb.Min.X <= aabb.Max.X &&
		aabb.Min.Y <= aabb.Max.Y &&
		aabb.Min.Z <= aabb.Max.Z
}

// fastMin and fastMax skip math.Min's NaN and signed-zero handling
func fastMin(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func fastMax(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
