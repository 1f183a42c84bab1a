package core

// Ray represents a ray with an origin, a direction and the shutter time it was cast at.
// The direction is not required to be unit length.
type Ray struct {
	Origin    Vec3
	Direction Vec3
	Time      float64
}

// NewRay creates a new ray
func NewRay(origin, direction Vec3, time float64) Ray {
	return Ray{Origin: origin, Direction: direction, Time: time}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// HitRecord contains information about a ray-object intersection.
// Normal is whatever the primitive produced; it is not flipped to face the ray.
type HitRecord struct {
	T          float64 // Parameter t along the ray
	Point      Vec3    // Point of intersection
	Normal     Vec3    // Surface normal at intersection
	MaterialID int     // Index into the scene's material storage
}
