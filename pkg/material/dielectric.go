package material

import (
	"math"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// NewDielectric creates a transparent material like glass (1.5) or water (1.33)
func NewDielectric(refractiveIndex float64) Material {
	return Material{Kind: KindDielectric, RefractiveIndex: refractiveIndex}
}

// scatterDielectric picks reflection or refraction with Schlick's probability.
// Total internal reflection always reflects. Glass never absorbs.
func (m *Material) scatterDielectric(rayIn core.Ray, hit core.HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	direction := rayIn.Direction
	reflected := Reflect(direction, hit.Normal)

	var outwardNormal core.Vec3
	var niOverNt, cosine float64
	dn := direction.Dot(hit.Normal)
	if dn > 0 {
		// Exiting the medium
		outwardNormal = hit.Normal.Negate()
		niOverNt = m.RefractiveIndex
		cosine = m.RefractiveIndex * dn / direction.Length()
	} else {
		// Entering the medium
		outwardNormal = hit.Normal
		niOverNt = 1.0 / m.RefractiveIndex
		cosine = -dn / direction.Length()
	}

	scatteredDirection := reflected
	if refracted, ok := Refract(direction, outwardNormal, niOverNt); ok {
		if sampler.Get1D() >= Schlick(cosine, m.RefractiveIndex) {
			scatteredDirection = refracted
		}
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, scatteredDirection, rayIn.Time),
		Attenuation: core.Ones(),
	}, true
}

// Refract bends v through a surface with normal n using Snell's law.
// It returns false on total internal reflection.
func Refract(v, n core.Vec3, niOverNt float64) (core.Vec3, bool) {
	uv := v.Normalize()
	dt := uv.Dot(n)
	discriminant := 1.0 - niOverNt*niOverNt*(1.0-dt*dt)
	if discriminant <= 0 {
		return core.Vec3{}, false
	}
	return uv.Subtract(n.Multiply(dt)).Multiply(niOverNt).Subtract(n.Multiply(math.Sqrt(discriminant))), true
}

// Schlick approximates Fresnel reflectance for the given cosine and refractive index
func Schlick(cosine, refractiveIndex float64) float64 {
	r0 := (1 - refractiveIndex) / (1 + refractiveIndex)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
