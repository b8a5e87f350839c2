package geometry

import (
	"math"

	"github.com/harrisjacob/3D-Renderer/pkg/core"
	"github.com/harrisjacob/3D-Renderer/pkg/material"
)

// Sphere is an immutable analytic sphere with a surface material.
// The squared radius is cached at construction.
type Sphere struct {
	center  core.Vec3
	radius  float64
	radius2 float64
	surface material.Surface
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, surface material.Surface) Sphere {
	return Sphere{
		center:  center,
		radius:  radius,
		radius2: radius * radius,
		surface: surface,
	}
}

// Center returns the sphere center
func (s Sphere) Center() core.Vec3 { return s.center }

// Radius returns the sphere radius
func (s Sphere) Radius() float64 { return s.radius }

// Radius2 returns the cached squared radius
func (s Sphere) Radius2() float64 { return s.radius2 }

// Surface returns the sphere's material
func (s Sphere) Surface() material.Surface { return s.surface }

// Intersect returns the near and far distances along the ray where it crosses
// the sphere. Spheres whose center projects behind the ray origin are never hit,
// even if the origin is inside them. Distances may be negative when the origin is
// inside the sphere.
func (s Sphere) Intersect(origin, direction core.Vec3) (near, far float64, ok bool) {
	// Vector from ray origin to sphere center
	l := s.center.Subtract(origin)

	// Projection of the center onto the ray
	tca := l.Dot(direction)
	if tca < 0 {
		return 0, 0, false
	}

	// Squared distance from the center to the ray
	d2 := l.Dot(l) - tca*tca
	if d2 > s.radius2 {
		return 0, 0, false
	}

	thc := math.Sqrt(s.radius2 - d2)
	return tca - thc, tca + thc, true
}

// Hit tests a ray and returns the nearest non-negative distance along it
func (s Sphere) Hit(ray core.Ray) (float64, bool) {
	near, far, ok := s.Intersect(ray.Origin, ray.Direction)
	if !ok {
		return 0, false
	}
	if near < 0 {
		near = far
	}
	return near, true
}

// NormalAt returns the outward unit normal at a point on the surface
func (s Sphere) NormalAt(point core.Vec3) core.Vec3 {
	return point.Subtract(s.center).Normalize()
}
