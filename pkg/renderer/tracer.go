package renderer

import (
	"math"

	"github.com/harrisjacob/3D-Renderer/pkg/core"
	"github.com/harrisjacob/3D-Renderer/pkg/geometry"
	"github.com/harrisjacob/3D-Renderer/pkg/material"
)

// TraceConfig controls the recursive shading
type TraceConfig struct {
	MaxDepth   int       // Hard limit on reflection/refraction recursion
	Bias       float64   // Offset along the normal for secondary ray origins
	Background core.Vec3 // Color returned when a ray hits nothing
}

// DefaultTraceConfig returns sensible default values
func DefaultTraceConfig() TraceConfig {
	return TraceConfig{
		MaxDepth:   5,
		Bias:       1e-4,
		Background: core.Splat(2),
	}
}

// TraceStats counts work done while tracing
type TraceStats struct {
	Rays            int // Calls into the tracer, primary rays included
	ShadowRays      int // Shadow rays cast toward lights
	MaxDepthReached int // Deepest recursion level visited
}

// Merge adds the counters of other into s
func (s *TraceStats) Merge(other TraceStats) {
	s.Rays += other.Rays
	s.ShadowRays += other.ShadowRays
	s.MaxDepthReached = max(s.MaxDepthReached, other.MaxDepthReached)
}

// Tracer shades rays against a fixed list of spheres. It holds no mutable state
// and may be shared between goroutines.
type Tracer struct {
	spheres []geometry.Sphere
	config  TraceConfig
}

// NewTracer creates a tracer over spheres. The slice must not be modified while
// the tracer is in use.
func NewTracer(spheres []geometry.Sphere, config TraceConfig) *Tracer {
	return &Tracer{spheres: spheres, config: config}
}

// Spheres returns the spheres the tracer shades against
func (t *Tracer) Spheres() []geometry.Sphere {
	return t.spheres
}

// Config returns the tracer configuration
func (t *Tracer) Config() TraceConfig {
	return t.config
}

// Trace returns the radiance arriving along ray, starting at the given depth
func (t *Tracer) Trace(ray core.Ray, depth int) core.Vec3 {
	var stats TraceStats
	return t.TraceWithStats(ray, depth, &stats)
}

// TraceWithStats is Trace with work counters accumulated into stats
func (t *Tracer) TraceWithStats(ray core.Ray, depth int, stats *TraceStats) core.Vec3 {
	stats.Rays++
	stats.MaxDepthReached = max(stats.MaxDepthReached, depth)

	index, dist := t.ClosestHit(ray)
	if index < 0 {
		return t.config.Background
	}
	sphere := t.spheres[index]
	surface := sphere.Surface()

	hitPoint := ray.At(dist)
	normal := sphere.NormalAt(hitPoint)

	// Ray started inside the sphere
	inside := false
	if ray.Direction.Dot(normal) > 0 {
		normal = normal.Negate()
		inside = true
	}

	var color core.Vec3
	if surface.IsSpecular() && depth < t.config.MaxDepth {
		color = t.shadeSpecular(ray, hitPoint, normal, inside, surface, depth, stats)
	} else {
		color = t.shadeDiffuse(hitPoint, normal, surface, stats)
	}

	return color.Add(surface.Emission)
}

// ClosestHit returns the index of the nearest sphere along the ray and its
// distance, or -1 when nothing is hit. Earlier spheres win ties.
func (t *Tracer) ClosestHit(ray core.Ray) (int, float64) {
	closest := -1
	closestDist := math.Inf(1)

	for i, sphere := range t.spheres {
		dist, ok := sphere.Hit(ray)
		if !ok {
			continue
		}
		if dist < closestDist {
			closestDist = dist
			closest = i
		}
	}

	return closest, closestDist
}

// shadeSpecular mixes a reflection ray and, for transparent surfaces, a
// refraction ray by the Fresnel weight.
func (t *Tracer) shadeSpecular(ray core.Ray, hitPoint, normal core.Vec3, inside bool, surface material.Surface, depth int, stats *TraceStats) core.Vec3 {
	bias := normal.Multiply(t.config.Bias)

	facingRatio := -ray.Direction.Dot(normal)
	fresnel := material.Fresnel(facingRatio)

	reflectDir := material.Reflect(ray.Direction, normal).Normalize()
	reflection := t.TraceWithStats(core.NewRay(hitPoint.Add(bias), reflectDir), depth+1, stats)

	var refraction core.Vec3
	if surface.Transparency > 0 {
		ior := surface.RefractiveIndex()
		eta := 1 / ior
		if inside {
			eta = ior
		}

		if refractDir, ok := material.Refract(ray.Direction, normal, eta); ok {
			refractDir = refractDir.Normalize()
			refraction = t.TraceWithStats(core.NewRay(hitPoint.Subtract(bias), refractDir), depth+1, stats)
		} else {
			// Total internal reflection
			fresnel = 1
		}
	}

	return reflection.Multiply(fresnel).
		Add(refraction.Multiply(1 - fresnel).Multiply(surface.Transparency)).
		MultiplyVec(surface.Color)
}

// shadeDiffuse sums the Lambertian contribution of every unoccluded light
func (t *Tracer) shadeDiffuse(hitPoint, normal core.Vec3, surface material.Surface, stats *TraceStats) core.Vec3 {
	var color core.Vec3
	shadowOrigin := hitPoint.Add(normal.Multiply(t.config.Bias))

	for i, light := range t.spheres {
		if !light.Surface().IsLight() {
			continue
		}

		lightDir := light.Center().Subtract(hitPoint).Normalize()

		stats.ShadowRays++
		if t.occluded(shadowOrigin, lightDir, i) {
			continue
		}

		cosine := max(0, normal.Dot(lightDir))
		color.AddInPlace(surface.Color.Multiply(cosine).MultiplyVec(light.Surface().Emission))
	}

	return color
}

// occluded reports whether any sphere other than the light blocks the shadow ray
func (t *Tracer) occluded(origin, direction core.Vec3, lightIndex int) bool {
	for i, sphere := range t.spheres {
		if i == lightIndex {
			continue
		}
		if _, _, ok := sphere.Intersect(origin, direction); ok {
			return true
		}
	}
	return false
}
