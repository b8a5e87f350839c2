package renderer

import (
	"math"
	"testing"

	"github.com/harrisjacob/3D-Renderer/pkg/core"
	"github.com/harrisjacob/3D-Renderer/pkg/geometry"
	"github.com/harrisjacob/3D-Renderer/pkg/material"
)

const tolerance = 1e-9

func assertColor(t *testing.T, got, expected core.Vec3) {
	t.Helper()
	if math.Abs(got.X-expected.X) > tolerance ||
		math.Abs(got.Y-expected.Y) > tolerance ||
		math.Abs(got.Z-expected.Z) > tolerance {
		t.Errorf("Expected color %v, got %v", expected, got)
	}
}

// litSphereScene is a white unit sphere at the origin lit by a small light
func litSphereScene() []geometry.Sphere {
	return []geometry.Sphere{
		geometry.NewSphere(core.NewVec3(0, 0, 0), 1, material.NewDiffuse(core.NewVec3(1, 1, 1))),
		geometry.NewSphere(core.NewVec3(0, 3, 3), 0.5, material.NewLight(core.NewVec3(1, 1, 1))),
	}
}

func TestTracer_EmptySceneReturnsBackground(t *testing.T) {
	tracer := NewTracer(nil, DefaultTraceConfig())
	rays := []core.Ray{
		core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)),
		core.NewRay(core.NewVec3(1, 2, 3), core.NewVec3(1, 1, 1).Normalize()),
		core.NewRay(core.NewVec3(-4, 0, 9), core.NewVec3(0, -1, 0)),
	}

	for _, ray := range rays {
		assertColor(t, tracer.Trace(ray, 0), core.Splat(2))
	}
}

func TestTracer_CustomBackground(t *testing.T) {
	config := DefaultTraceConfig()
	config.Background = core.NewVec3(0.1, 0.2, 0.3)
	tracer := NewTracer(nil, config)

	got := tracer.Trace(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), 0)
	assertColor(t, got, config.Background)
}

func TestTracer_DiffuseLighting(t *testing.T) {
	tracer := NewTracer(litSphereScene(), DefaultTraceConfig())

	tests := []struct {
		name     string
		ray      core.Ray
		expected core.Vec3
	}{
		{
			name:     "front face toward the light",
			ray:      core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1)),
			expected: core.Splat(2 / math.Sqrt(13)),
		},
		{
			name:     "back face away from the light",
			ray:      core.NewRay(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 1)),
			expected: core.Vec3{},
		},
		{
			name:     "light seen directly returns its emission",
			ray:      core.NewRay(core.NewVec3(0, 3, 10), core.NewVec3(0, 0, -1)),
			expected: core.NewVec3(1, 1, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertColor(t, tracer.Trace(tt.ray, 0), tt.expected)
		})
	}
}

func TestTracer_ShadowIsBinary(t *testing.T) {
	spheres := []geometry.Sphere{
		geometry.NewSphere(core.NewVec3(0, 0, 0), 1, material.NewDiffuse(core.NewVec3(1, 1, 1))),
		// Blocker between the front face and the light
		geometry.NewSphere(core.NewVec3(0, 1.5, 2), 0.3, material.NewDiffuse(core.NewVec3(1, 0, 0))),
		geometry.NewSphere(core.NewVec3(0, 3, 3), 0.5, material.NewLight(core.NewVec3(1, 1, 1))),
	}
	tracer := NewTracer(spheres, DefaultTraceConfig())

	got := tracer.Trace(core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1)), 0)
	assertColor(t, got, core.Vec3{})
}

func TestTracer_OnlyRedEmissionMakesALight(t *testing.T) {
	spheres := []geometry.Sphere{
		geometry.NewSphere(core.NewVec3(0, 0, 0), 1, material.NewDiffuse(core.NewVec3(1, 1, 1))),
		geometry.NewSphere(core.NewVec3(0, 3, 3), 0.5, material.NewLight(core.NewVec3(0, 5, 5))),
	}
	tracer := NewTracer(spheres, DefaultTraceConfig())

	got := tracer.Trace(core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1)), 0)
	assertColor(t, got, core.Vec3{})
}

func TestTracer_ReflectiveSphereReflectsBackground(t *testing.T) {
	spheres := []geometry.Sphere{
		geometry.NewSphere(core.NewVec3(0, 0, -5), 1, material.NewMirror(core.NewVec3(1, 1, 1), 1)),
	}
	tracer := NewTracer(spheres, DefaultTraceConfig())

	// Head-on the Fresnel weight is the 0.1 floor and the reflected ray escapes
	got := tracer.Trace(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), 0)
	assertColor(t, got, core.Splat(2*0.1))
}

func TestTracer_ReflectionAtMaxDepthFallsBackToDiffuse(t *testing.T) {
	spheres := []geometry.Sphere{
		geometry.NewSphere(core.NewVec3(0, 0, -5), 1, material.NewMirror(core.NewVec3(1, 1, 1), 1)),
	}
	config := DefaultTraceConfig()
	tracer := NewTracer(spheres, config)

	var stats TraceStats
	got := tracer.TraceWithStats(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), config.MaxDepth, &stats)
	assertColor(t, got, core.Vec3{})
	if stats.Rays != 1 {
		t.Errorf("Expected no recursion at max depth, got %d rays", stats.Rays)
	}
}

func TestTracer_FirstSphereWinsTies(t *testing.T) {
	first := geometry.NewSphere(core.NewVec3(0, 0, -5), 1, material.Surface{Emission: core.NewVec3(0, 0.5, 0)})
	second := geometry.NewSphere(core.NewVec3(0, 0, -5), 1, material.Surface{Emission: core.NewVec3(0, 0, 0.7)})
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1))

	got := NewTracer([]geometry.Sphere{first, second}, DefaultTraceConfig()).Trace(ray, 0)
	assertColor(t, got, core.NewVec3(0, 0.5, 0))

	got = NewTracer([]geometry.Sphere{second, first}, DefaultTraceConfig()).Trace(ray, 0)
	assertColor(t, got, core.NewVec3(0, 0, 0.7))
}

func TestTracer_ClosestSphereWins(t *testing.T) {
	far := geometry.NewSphere(core.NewVec3(0, 0, -10), 1, material.Surface{Emission: core.NewVec3(0, 1, 0)})
	near := geometry.NewSphere(core.NewVec3(0, 0, -4), 1, material.Surface{Emission: core.NewVec3(0, 0, 1)})

	got := NewTracer([]geometry.Sphere{far, near}, DefaultTraceConfig()).
		Trace(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), 0)
	assertColor(t, got, core.NewVec3(0, 0, 1))
}

func TestTracer_DepthBoundWithFacingMirrors(t *testing.T) {
	mirrors := []geometry.Sphere{
		geometry.NewSphere(core.NewVec3(0, 0, -3), 1, material.NewMirror(core.NewVec3(1, 1, 1), 1)),
		geometry.NewSphere(core.NewVec3(0, 0, 3), 1, material.NewMirror(core.NewVec3(1, 1, 1), 1)),
	}
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1))

	for _, maxDepth := range []int{0, 1, 5, 12} {
		config := DefaultTraceConfig()
		config.MaxDepth = maxDepth
		tracer := NewTracer(mirrors, config)

		var stats TraceStats
		got := tracer.TraceWithStats(ray, 0, &stats)

		if stats.MaxDepthReached != maxDepth {
			t.Errorf("maxDepth=%d: expected recursion to stop at %d, reached %d", maxDepth, maxDepth, stats.MaxDepthReached)
		}
		// A single reflection chain: one ray per level
		if stats.Rays != maxDepth+1 {
			t.Errorf("maxDepth=%d: expected %d rays, got %d", maxDepth, maxDepth+1, stats.Rays)
		}
		if got.HasNaN() {
			t.Errorf("maxDepth=%d: color contains NaN: %v", maxDepth, got)
		}
	}
}

func TestTracer_DepthBoundWithGlassSpheres(t *testing.T) {
	glass := material.NewGlass(core.NewVec3(1, 1, 1), 1, 1, 1.5)
	spheres := []geometry.Sphere{
		geometry.NewSphere(core.NewVec3(0, 0, -3), 1, glass),
		geometry.NewSphere(core.NewVec3(0, 0, 3), 1, glass),
	}
	config := DefaultTraceConfig()
	tracer := NewTracer(spheres, config)

	var stats TraceStats
	got := tracer.TraceWithStats(core.NewRay(core.Vec3{}, core.NewVec3(0.05, 0, -1).Normalize()), 0, &stats)

	if stats.MaxDepthReached > config.MaxDepth {
		t.Errorf("Recursion exceeded max depth: %d > %d", stats.MaxDepthReached, config.MaxDepth)
	}
	maxRays := 1<<(config.MaxDepth+1) - 1
	if stats.Rays > maxRays {
		t.Errorf("Expected at most %d rays for a binary tree of depth %d, got %d", maxRays, config.MaxDepth, stats.Rays)
	}
	if got.HasNaN() {
		t.Errorf("Color contains NaN: %v", got)
	}
}

func TestTracer_TotalInternalReflection(t *testing.T) {
	// Emission outside the red channel keeps the sphere from acting as a light
	// and gives every bounce a non-zero color
	glass := material.NewGlass(core.NewVec3(0.9, 0.8, 0.7), 0, 1, 1.1)
	glass.Emission = core.NewVec3(0, 0.25, 0.5)
	sphere := geometry.NewSphere(core.NewVec3(0, 0, 0), 1, glass)
	config := DefaultTraceConfig()
	tracer := NewTracer([]geometry.Sphere{sphere}, config)

	// Starts inside near the rim and exits at a grazing angle beyond the critical angle
	ray := core.NewRay(core.NewVec3(0.95, 0, 0), core.NewVec3(0, 0, -1))

	index, dist := tracer.ClosestHit(ray)
	if index != 0 {
		t.Fatalf("Expected to hit the glass sphere, got %d", index)
	}
	hitPoint := ray.At(dist)
	normal := sphere.NormalAt(hitPoint).Negate()
	if _, ok := material.Refract(ray.Direction, normal, glass.RefractiveIndex()); ok {
		t.Fatal("Expected the exit angle to be past the critical angle")
	}

	// Only the reflection ray is cast, with its full weight
	reflected := core.NewRay(hitPoint.Add(normal.Multiply(config.Bias)), material.Reflect(ray.Direction, normal).Normalize())
	var childStats TraceStats
	expected := tracer.TraceWithStats(reflected, 1, &childStats).MultiplyVec(glass.Color).Add(glass.Emission)

	var stats TraceStats
	got := tracer.TraceWithStats(ray, 0, &stats)
	if got.HasNaN() {
		t.Fatalf("Total internal reflection produced NaN: %v", got)
	}
	assertColor(t, got, expected)
	if stats.Rays != childStats.Rays+1 {
		t.Errorf("Expected one child ray, got %d rays against %d in the reflection subtree", stats.Rays, childStats.Rays)
	}
}

func TestTracer_TransparentSphereRefracts(t *testing.T) {
	glass := []geometry.Sphere{
		geometry.NewSphere(core.NewVec3(0, 0, -5), 1, material.NewGlass(core.NewVec3(1, 1, 1), 0, 1, 1.1)),
	}
	mirror := []geometry.Sphere{
		geometry.NewSphere(core.NewVec3(0, 0, -5), 1, material.NewMirror(core.NewVec3(1, 1, 1), 1)),
	}
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1))

	var glassStats, mirrorStats TraceStats
	glassColor := NewTracer(glass, DefaultTraceConfig()).TraceWithStats(ray, 0, &glassStats)
	mirrorColor := NewTracer(mirror, DefaultTraceConfig()).TraceWithStats(ray, 0, &mirrorStats)

	if glassStats.Rays <= mirrorStats.Rays {
		t.Errorf("Expected refraction rays in addition to reflection, got %d vs %d", glassStats.Rays, mirrorStats.Rays)
	}
	if glassColor.HasNaN() || glassColor.X <= mirrorColor.X {
		t.Errorf("Expected transmitted background to brighten the glass: glass %v mirror %v", glassColor, mirrorColor)
	}
}

func TestTraceStats_Merge(t *testing.T) {
	stats := TraceStats{Rays: 3, ShadowRays: 1, MaxDepthReached: 2}
	stats.Merge(TraceStats{Rays: 4, ShadowRays: 5, MaxDepthReached: 1})

	if stats.Rays != 7 || stats.ShadowRays != 6 || stats.MaxDepthReached != 2 {
		t.Errorf("Unexpected merged stats: %+v", stats)
	}
}
