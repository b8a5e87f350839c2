package renderer

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/harrisjacob/3D-Renderer/pkg/core"
)

// CameraConfig describes the pinhole camera.
// With LookFrom and LookAt both left zero the camera sits at the origin looking
// down -Z and ray directions are used untransformed.
type CameraConfig struct {
	FOV      float64   // Vertical field of view in degrees
	LookFrom core.Vec3 // Camera position
	LookAt   core.Vec3 // Point the camera looks at
	Up       core.Vec3 // Up direction, defaults to +Y
}

// DefaultCameraConfig returns the implicit origin camera with a 30 degree view
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{FOV: 30}
}

// Positioned reports whether the config places the camera explicitly
func (c CameraConfig) Positioned() bool {
	return c.LookFrom != c.LookAt
}

// Validate rejects placements that leave the view direction undefined
func (c CameraConfig) Validate() error {
	if c.LookFrom == c.LookAt {
		if !c.LookFrom.IsZero() {
			return errors.New("camera lookFrom and lookAt must differ")
		}
		return nil
	}
	up := c.Up
	if up.IsZero() {
		up = core.NewVec3(0, 1, 0)
	}
	forward := toMgl(c.LookAt.Subtract(c.LookFrom)).Normalize()
	if forward.Cross(toMgl(up).Normalize()).Len() < 1e-9 {
		return fmt.Errorf("camera up %v is parallel to the view direction", up)
	}
	return nil
}

// Camera generates one primary ray per pixel
type Camera struct {
	width, height int
	angle         float64 // tan(fov/2)
	aspectRatio   float64
	origin        core.Vec3
	cameraToWorld mgl64.Mat4
	transformed   bool
}

// NewCamera creates a camera for a width x height image
func NewCamera(config CameraConfig, width, height int) *Camera {
	camera := &Camera{
		width:       width,
		height:      height,
		angle:       math.Tan(math.Pi * 0.5 * config.FOV / 180),
		aspectRatio: float64(width) / float64(height),
	}

	if config.Positioned() {
		up := config.Up
		if up.IsZero() {
			up = core.NewVec3(0, 1, 0)
		}
		view := mgl64.LookAtV(toMgl(config.LookFrom), toMgl(config.LookAt), toMgl(up))
		camera.cameraToWorld = view.Inv()
		camera.origin = config.LookFrom
		camera.transformed = true
	}

	return camera
}

// GetRay returns the normalized primary ray through the center of pixel (x, y),
// with y growing downward.
func (c *Camera) GetRay(x, y int) core.Ray {
	xx := (2*((float64(x)+0.5)/float64(c.width)) - 1) * c.angle * c.aspectRatio
	yy := (1 - 2*((float64(y)+0.5)/float64(c.height))) * c.angle

	direction := core.NewVec3(xx, yy, -1)
	if c.transformed {
		world := c.cameraToWorld.Mul4x1(mgl64.Vec4{xx, yy, -1, 0})
		direction = core.NewVec3(world.X(), world.Y(), world.Z())
	}

	return core.NewRay(c.origin, direction.Normalize())
}

// GetCameraForward returns the direction through the image center
func (c *Camera) GetCameraForward() core.Vec3 {
	if !c.transformed {
		return core.NewVec3(0, 0, -1)
	}
	world := c.cameraToWorld.Mul4x1(mgl64.Vec4{0, 0, -1, 0})
	return core.NewVec3(world.X(), world.Y(), world.Z()).Normalize()
}

func toMgl(v core.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}
