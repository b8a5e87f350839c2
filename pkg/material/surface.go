package material

import (
	"math"

	"github.com/harrisjacob/3D-Renderer/pkg/core"
)

// DefaultIOR is the index of refraction used when a surface leaves IOR unset
const DefaultIOR = 1.1

// fresnelFloor is the minimum reflection weight at normal incidence
const fresnelFloor = 0.1

// Surface describes how a sphere shades: its diffuse color, emitted light,
// and how much it reflects and transmits.
type Surface struct {
	Color        core.Vec3 // Surface color, 0..1 per channel
	Emission     core.Vec3 // Emitted light
	Reflection   float64   // Reflectivity in [0, 1]
	Transparency float64   // Transparency in [0, 1]
	IOR          float64   // Index of refraction, 0 means DefaultIOR
}

// NewDiffuse creates a matte surface
func NewDiffuse(color core.Vec3) Surface {
	return Surface{Color: color}
}

// NewMirror creates a reflective, opaque surface
func NewMirror(color core.Vec3, reflection float64) Surface {
	return Surface{Color: color, Reflection: reflection}
}

// NewGlass creates a surface that both reflects and refracts
func NewGlass(color core.Vec3, reflection, transparency, ior float64) Surface {
	return Surface{Color: color, Reflection: reflection, Transparency: transparency, IOR: ior}
}

// NewLight creates a black emitter
func NewLight(emission core.Vec3) Surface {
	return Surface{Emission: emission}
}

// IsLight reports whether the surface acts as a light source.
// Only the red channel of the emission is tested.
func (s Surface) IsLight() bool {
	return s.Emission.X > 0
}

// IsSpecular reports whether shading spawns reflection or refraction rays
func (s Surface) IsSpecular() bool {
	return s.Reflection > 0 || s.Transparency > 0
}

// RefractiveIndex returns the IOR, falling back to DefaultIOR
func (s Surface) RefractiveIndex() float64 {
	if s.IOR <= 0 {
		return DefaultIOR
	}
	return s.IOR
}

// Mix linearly blends a and b: b*t + a*(1-t)
func Mix(a, b, t float64) float64 {
	return b*t + a*(1-t)
}

// Fresnel returns the reflection weight for a given facing ratio (-dir·normal)
func Fresnel(facingRatio float64) float64 {
	return Mix(math.Pow(1-facingRatio, 3), 1, fresnelFloor)
}

// Reflect mirrors direction about normal: d - n*2*(d·n)
func Reflect(direction, normal core.Vec3) core.Vec3 {
	return direction.Subtract(normal.Multiply(2 * direction.Dot(normal)))
}

// Refract bends direction through a boundary with normal facing the incoming
// ray, where eta is the ratio of indices (from / to). It returns false on total
// internal reflection.
func Refract(direction, normal core.Vec3, eta float64) (core.Vec3, bool) {
	cosI := -normal.Dot(direction)
	k := 1 - eta*eta*(1-cosI*cosI)
	if k < 0 {
		return core.Vec3{}, false
	}
	return direction.Multiply(eta).Add(normal.Multiply(eta*cosI - math.Sqrt(k))), true
}
