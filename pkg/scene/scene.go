package scene

import (
	"github.com/harrisjacob/3D-Renderer/pkg/core"
	"github.com/harrisjacob/3D-Renderer/pkg/geometry"
	"github.com/harrisjacob/3D-Renderer/pkg/material"
	"github.com/harrisjacob/3D-Renderer/pkg/renderer"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name        string                // Scene identifier
	Description string                // Optional human readable description
	Spheres     []geometry.Sphere     // Ordered; earlier spheres win intersection ties
	Config      renderer.RenderConfig // Recommended image size, camera and trace settings
}

// New creates an empty scene with the default render configuration
func New(name string) *Scene {
	return &Scene{
		Name:   name,
		Config: renderer.DefaultRenderConfig(),
	}
}

// GetSpheres returns the scene's spheres
func (s *Scene) GetSpheres() []geometry.Sphere {
	return s.Spheres
}

// AddSphere appends a sphere with the given surface
func (s *Scene) AddSphere(center core.Vec3, radius float64, surface material.Surface) {
	s.Spheres = append(s.Spheres, geometry.NewSphere(center, radius, surface))
}

// AddSphereLight appends a black emitting sphere
func (s *Scene) AddSphereLight(center core.Vec3, radius float64, emission core.Vec3) {
	s.AddSphere(center, radius, material.NewLight(emission))
}

// LightCount returns the number of spheres that act as lights
func (s *Scene) LightCount() int {
	count := 0
	for _, sphere := range s.Spheres {
		if sphere.Surface().IsLight() {
			count++
		}
	}
	return count
}

// NewRaytracer builds a raytracer for this scene using its render configuration
func (s *Scene) NewRaytracer(logger core.Logger) (*renderer.Raytracer, error) {
	return renderer.NewRaytracer(s.Spheres, s.Config, logger)
}
