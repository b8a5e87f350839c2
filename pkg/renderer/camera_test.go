package renderer

import (
	"math"
	"testing"

	"github.com/harrisjacob/3D-Renderer/pkg/core"
)

func assertDirection(t *testing.T, got, expected core.Vec3) {
	t.Helper()
	if math.Abs(got.X-expected.X) > 1e-9 ||
		math.Abs(got.Y-expected.Y) > 1e-9 ||
		math.Abs(got.Z-expected.Z) > 1e-9 {
		t.Errorf("Expected direction %v, got %v", expected, got)
	}
}

func TestCamera_CenterPixelLooksDownNegativeZ(t *testing.T) {
	camera := NewCamera(CameraConfig{FOV: 30}, 1, 1)
	ray := camera.GetRay(0, 0)

	if ray.Origin != (core.Vec3{}) {
		t.Errorf("Expected origin at zero, got %v", ray.Origin)
	}
	assertDirection(t, ray.Direction, core.NewVec3(0, 0, -1))
}

func TestCamera_PixelDirections(t *testing.T) {
	// 90 degree FOV makes tan(fov/2) = 1
	camera := NewCamera(CameraConfig{FOV: 90}, 4, 2)
	aspect := 2.0

	tests := []struct {
		name     string
		x, y     int
		expected core.Vec3
	}{
		{"top left", 0, 0, core.NewVec3(-0.75*aspect, 0.5, -1).Normalize()},
		{"top right", 3, 0, core.NewVec3(0.75*aspect, 0.5, -1).Normalize()},
		{"bottom left", 0, 1, core.NewVec3(-0.75*aspect, -0.5, -1).Normalize()},
		{"inner right", 2, 1, core.NewVec3(0.25*aspect, -0.5, -1).Normalize()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := camera.GetRay(tt.x, tt.y)
			assertDirection(t, ray.Direction, tt.expected)
			if math.Abs(ray.Direction.Length()-1) > 1e-12 {
				t.Errorf("Expected normalized direction, got length %f", ray.Direction.Length())
			}
		})
	}
}

func TestCamera_DefaultIsNotPositioned(t *testing.T) {
	if DefaultCameraConfig().Positioned() {
		t.Error("Default camera should use the implicit origin frame")
	}
	camera := NewCamera(DefaultCameraConfig(), 10, 10)
	assertDirection(t, camera.GetCameraForward(), core.NewVec3(0, 0, -1))
}

func TestCamera_PositionedCamera(t *testing.T) {
	tests := []struct {
		name            string
		config          CameraConfig
		expectedForward core.Vec3
	}{
		{
			name:            "behind the origin looking forward",
			config:          CameraConfig{FOV: 40, LookFrom: core.NewVec3(0, 0, 5), LookAt: core.NewVec3(0, 0, 0)},
			expectedForward: core.NewVec3(0, 0, -1),
		},
		{
			name:            "on the x axis looking back",
			config:          CameraConfig{FOV: 40, LookFrom: core.NewVec3(5, 0, 0), LookAt: core.NewVec3(0, 0, 0)},
			expectedForward: core.NewVec3(-1, 0, 0),
		},
		{
			name:            "above looking down at an angle",
			config:          CameraConfig{FOV: 40, LookFrom: core.NewVec3(0, 4, 4), LookAt: core.NewVec3(0, 0, 0), Up: core.NewVec3(0, 1, 0)},
			expectedForward: core.NewVec3(0, -1, -1).Normalize(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			camera := NewCamera(tt.config, 1, 1)
			assertDirection(t, camera.GetCameraForward(), tt.expectedForward)

			ray := camera.GetRay(0, 0)
			if ray.Origin != tt.config.LookFrom {
				t.Errorf("Expected ray origin %v, got %v", tt.config.LookFrom, ray.Origin)
			}
			assertDirection(t, ray.Direction, tt.expectedForward)
		})
	}
}

func TestCamera_PositionedCameraKeepsRightHandedFrame(t *testing.T) {
	camera := NewCamera(CameraConfig{FOV: 90, LookFrom: core.NewVec3(5, 0, 0), LookAt: core.Vec3{}}, 2, 1)

	// Looking down -X with +Y up, screen right is -Z
	right := camera.GetRay(1, 0).Direction
	if right.Z >= 0 {
		t.Errorf("Expected right half of the image to point toward -Z, got %v", right)
	}
}
