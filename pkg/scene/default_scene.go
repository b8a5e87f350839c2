package scene

import (
	"github.com/harrisjacob/3D-Renderer/pkg/core"
	"github.com/harrisjacob/3D-Renderer/pkg/material"
)

// NewDefaultScene creates the classic scene: five spheres resting on a huge ground
// sphere, lit by one spherical light above and behind them
func NewDefaultScene() *Scene {
	s := New("default")
	s.Config.Width = 640
	s.Config.Height = 480
	s.Config.Camera.FOV = 30

	// Ground
	s.AddSphere(core.NewVec3(0, -10004, -20), 10000, material.NewDiffuse(core.NewVec3(0.20, 0.20, 0.20)))

	// Glass centerpiece
	s.AddSphere(core.NewVec3(0, 0, -20), 4, material.NewGlass(core.NewVec3(1.00, 0.32, 0.36), 1, 0.5, material.DefaultIOR))

	// Mirrors
	s.AddSphere(core.NewVec3(5, -1, -15), 2, material.NewMirror(core.NewVec3(0.90, 0.76, 0.46), 1))
	s.AddSphere(core.NewVec3(5, 0, -25), 3, material.NewMirror(core.NewVec3(0.65, 0.77, 0.97), 1))
	s.AddSphere(core.NewVec3(-5.5, 0, -15), 3, material.NewMirror(core.NewVec3(0.90, 0.90, 0.90), 1))

	// Light
	s.AddSphereLight(core.NewVec3(0, 20, -30), 3, core.Splat(3))

	return s
}

// NewMirrorsScene creates two facing mirrors with a light between them.
// Rays bounce until the depth limit stops them.
func NewMirrorsScene() *Scene {
	s := New("mirrors")
	s.Config.Width = 400
	s.Config.Height = 300
	s.Config.Camera.FOV = 45

	s.AddSphere(core.NewVec3(0, 0, -12), 4, material.NewMirror(core.NewVec3(0.95, 0.95, 0.95), 1))
	s.AddSphere(core.NewVec3(0, 0, 8), 4, material.NewMirror(core.NewVec3(0.95, 0.95, 0.95), 1))
	s.AddSphere(core.NewVec3(-3, -1.5, -6), 1, material.NewDiffuse(core.NewVec3(0.2, 0.8, 0.3)))
	s.AddSphereLight(core.NewVec3(3, 3, -4), 0.5, core.Splat(2))

	return s
}

// NewLitSphereScene creates a white sphere lit from the upper right
func NewLitSphereScene() *Scene {
	s := New("lit-sphere")
	s.Config.Width = 320
	s.Config.Height = 240
	s.Config.Camera.FOV = 40
	s.Config.Camera.LookFrom = core.NewVec3(0, 0, 6)
	s.Config.Camera.LookAt = core.NewVec3(0, 0, 0)
	s.Config.Trace.Background = core.Vec3{}

	s.AddSphere(core.NewVec3(0, 0, 0), 1, material.NewDiffuse(core.NewVec3(1, 1, 1)))
	s.AddSphereLight(core.NewVec3(3, 3, 3), 0.5, core.NewVec3(1, 1, 1))

	return s
}

// NewGlassScene creates a row of transparent spheres with increasing IOR in front
// of colored diffuse spheres
func NewGlassScene() *Scene {
	s := New("glass")
	s.Config.Width = 640
	s.Config.Height = 360
	s.Config.Camera.FOV = 35

	s.AddSphere(core.NewVec3(0, -10003, -20), 10000, material.NewDiffuse(core.NewVec3(0.35, 0.35, 0.3)))

	iors := []float64{1.05, 1.1, 1.3, 1.5}
	for i, ior := range iors {
		x := -6 + float64(i)*4
		s.AddSphere(core.NewVec3(x, -1, -14), 1.5, material.NewGlass(core.NewVec3(0.95, 0.95, 0.95), 0.5, 0.9, ior))
		s.AddSphere(core.NewVec3(x, -1, -22), 2, material.NewDiffuse(core.NewVec3(0.2+0.2*float64(i), 0.3, 0.8-0.15*float64(i))))
	}

	s.AddSphereLight(core.NewVec3(-10, 15, -5), 2, core.Splat(1.5))
	s.AddSphereLight(core.NewVec3(10, 15, -30), 2, core.Splat(1.5))

	return s
}
