package geometry

import (
	"math"
	"testing"

	"github.com/harrisjacob/3D-Renderer/pkg/core"
	"github.com/harrisjacob/3D-Renderer/pkg/material"
)

func newTestSphere(center core.Vec3, radius float64) Sphere {
	return NewSphere(center, radius, material.NewDiffuse(core.NewVec3(1, 1, 1)))
}

func TestSphere_CachesRadiusSquared(t *testing.T) {
	sphere := newTestSphere(core.NewVec3(1, 2, 3), 2.5)
	if sphere.Radius2() != 6.25 {
		t.Errorf("Expected radius2 6.25, got %f", sphere.Radius2())
	}
	if sphere.Radius() != 2.5 || sphere.Center() != core.NewVec3(1, 2, 3) {
		t.Errorf("Unexpected sphere geometry: center %v radius %f", sphere.Center(), sphere.Radius())
	}
}

func TestSphere_Intersect_Miss(t *testing.T) {
	sphere := newTestSphere(core.NewVec3(0, 0, 0), 1.0)

	tests := []struct {
		name      string
		origin    core.Vec3
		direction core.Vec3
	}{
		{"passes beside", core.NewVec3(2, 0, 5), core.NewVec3(0, 0, -1)},
		{"points away from sphere", core.NewVec3(0, 0, 5), core.NewVec3(0, 0, 1)},
		{"points away at an angle", core.NewVec3(3, 3, 3), core.NewVec3(1, 1, 0).Normalize()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, ok := sphere.Intersect(tt.origin, tt.direction); ok {
				t.Error("Expected miss, got hit")
			}
		})
	}
}

func TestSphere_Intersect_AwayFacingRaysAlwaysMiss(t *testing.T) {
	sphere := newTestSphere(core.NewVec3(1, -2, 3), 1.5)
	origins := []core.Vec3{
		core.NewVec3(10, 0, 0), core.NewVec3(-5, 4, 2), core.NewVec3(1, -2, 9), core.NewVec3(0, 0, -7),
	}
	directions := []core.Vec3{
		core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), core.NewVec3(0, 0, 1),
		core.NewVec3(-1, 0, 0), core.NewVec3(0, -1, 0), core.NewVec3(0, 0, -1),
		core.NewVec3(1, 1, 1).Normalize(), core.NewVec3(-1, 2, -3).Normalize(),
	}

	for _, origin := range origins {
		for _, dir := range directions {
			if sphere.Center().Subtract(origin).Dot(dir) >= 0 {
				continue
			}
			if _, _, ok := sphere.Intersect(origin, dir); ok {
				t.Errorf("Ray from %v along %v points away but reported a hit", origin, dir)
			}
		}
	}
}

func TestSphere_Intersect_HitPointsLieOnSurface(t *testing.T) {
	tests := []struct {
		name      string
		center    core.Vec3
		radius    float64
		origin    core.Vec3
		direction core.Vec3
	}{
		{"head on", core.NewVec3(0, 0, -5), 1, core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)},
		{"off axis", core.NewVec3(0.5, 0.2, -10), 2, core.NewVec3(0, 0, 0), core.NewVec3(0.1, 0, -1).Normalize()},
		{"large sphere", core.NewVec3(0, -10004, -20), 10000, core.NewVec3(0, 0, 0), core.NewVec3(0, -1, -1).Normalize()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sphere := newTestSphere(tt.center, tt.radius)
			near, far, ok := sphere.Intersect(tt.origin, tt.direction)
			if !ok {
				t.Fatal("Expected hit, got miss")
			}
			if near > far {
				t.Errorf("Expected near <= far, got near=%f far=%f", near, far)
			}
			for _, dist := range []float64{near, far} {
				point := core.NewRay(tt.origin, tt.direction).At(dist)
				got := point.Subtract(tt.center).Length()
				if math.Abs(got-tt.radius) > 1e-6*tt.radius {
					t.Errorf("Expected point at distance %f from center, got %f", tt.radius, got)
				}
			}
		})
	}
}

func TestSphere_Intersect_OriginInside(t *testing.T) {
	sphere := newTestSphere(core.NewVec3(0, 0, -0.5), 1.0)
	near, far, ok := sphere.Intersect(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	if !ok {
		t.Fatal("Expected hit from inside the sphere")
	}
	if near >= 0 {
		t.Errorf("Expected negative near distance, got %f", near)
	}
	if math.Abs(far-1.5) > 1e-12 {
		t.Errorf("Expected far distance 1.5, got %f", far)
	}

	dist, ok := sphere.Hit(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)))
	if !ok || dist != far {
		t.Errorf("Expected Hit to fall back to far distance %f, got %f (hit=%t)", far, dist, ok)
	}
}

func TestSphere_Intersect_ZeroRadius(t *testing.T) {
	sphere := newTestSphere(core.NewVec3(0, 0, -3), 0)

	if _, _, ok := sphere.Intersect(core.NewVec3(0.1, 0, 0), core.NewVec3(0, 0, -1)); ok {
		t.Error("Expected zero-radius sphere to be missed by an offset ray")
	}

	near, far, ok := sphere.Intersect(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	if !ok {
		t.Fatal("Expected exact pass through the center to register")
	}
	if near != 3 || far != 3 {
		t.Errorf("Expected near=far=3, got near=%f far=%f", near, far)
	}
}

func TestSphere_NormalAt(t *testing.T) {
	sphere := newTestSphere(core.NewVec3(1, 1, 1), 2)
	normal := sphere.NormalAt(core.NewVec3(1, 3, 1))
	if normal != core.NewVec3(0, 1, 0) {
		t.Errorf("Expected normal [0,1,0], got %v", normal)
	}
}
