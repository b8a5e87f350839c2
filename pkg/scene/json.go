package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrisjacob/3D-Renderer/pkg/core"
	"github.com/harrisjacob/3D-Renderer/pkg/geometry"
	"github.com/harrisjacob/3D-Renderer/pkg/material"
)

// Vec3Cfg is a vector written as a three element JSON array
type Vec3Cfg [3]float64

func (v Vec3Cfg) vec() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// CameraCfg is the JSON form of renderer.CameraConfig
type CameraCfg struct {
	FOV      float64  `json:"fov,omitempty"`
	LookFrom *Vec3Cfg `json:"lookFrom,omitempty"`
	LookAt   *Vec3Cfg `json:"lookAt,omitempty"`
	Up       *Vec3Cfg `json:"up,omitempty"`
}

// SphereCfg is one sphere of a scene file
type SphereCfg struct {
	Center       Vec3Cfg `json:"center"`
	Radius       float64 `json:"radius"`
	Color        Vec3Cfg `json:"color"`
	Emission     Vec3Cfg `json:"emission,omitempty"`
	Reflection   float64 `json:"reflection,omitempty"`
	Transparency float64 `json:"transparency,omitempty"`
	IOR          float64 `json:"ior,omitempty"`
}

// FileCfg is the top level of a scene file. Zero values fall back to the
// default render configuration.
type FileCfg struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Group       string      `json:"group,omitempty"`
	Width       int         `json:"width,omitempty"`
	Height      int         `json:"height,omitempty"`
	MaxDepth    *int        `json:"maxDepth,omitempty"`
	Background  *Vec3Cfg    `json:"background,omitempty"`
	Camera      CameraCfg   `json:"camera"`
	Spheres     []SphereCfg `json:"spheres"`
}

// Build validates the sphere and constructs it
func (sc SphereCfg) Build() (geometry.Sphere, error) {
	if sc.Radius <= 0 {
		return geometry.Sphere{}, fmt.Errorf("radius must be > 0, got %g", sc.Radius)
	}
	if sc.Reflection < 0 || sc.Reflection > 1 {
		return geometry.Sphere{}, fmt.Errorf("reflection must be in [0,1], got %g", sc.Reflection)
	}
	if sc.Transparency < 0 || sc.Transparency > 1 {
		return geometry.Sphere{}, fmt.Errorf("transparency must be in [0,1], got %g", sc.Transparency)
	}
	if sc.IOR < 0 {
		return geometry.Sphere{}, fmt.Errorf("ior must not be negative, got %g", sc.IOR)
	}

	surface := material.Surface{
		Color:        sc.Color.vec(),
		Emission:     sc.Emission.vec(),
		Reflection:   sc.Reflection,
		Transparency: sc.Transparency,
		IOR:          sc.IOR,
	}
	return geometry.NewSphere(sc.Center.vec(), sc.Radius, surface), nil
}

// Build converts the file configuration into a scene
func (fc FileCfg) Build() (*Scene, error) {
	if len(fc.Spheres) == 0 {
		return nil, fmt.Errorf("scene %q has no spheres", fc.Name)
	}

	s := New(fc.Name)
	s.Description = fc.Description

	if fc.Width != 0 {
		s.Config.Width = fc.Width
	}
	if fc.Height != 0 {
		s.Config.Height = fc.Height
	}
	if fc.MaxDepth != nil {
		s.Config.Trace.MaxDepth = *fc.MaxDepth
	}
	if fc.Background != nil {
		s.Config.Trace.Background = fc.Background.vec()
	}
	if fc.Camera.FOV != 0 {
		s.Config.Camera.FOV = fc.Camera.FOV
	}
	if fc.Camera.LookFrom != nil {
		s.Config.Camera.LookFrom = fc.Camera.LookFrom.vec()
	}
	if fc.Camera.LookAt != nil {
		s.Config.Camera.LookAt = fc.Camera.LookAt.vec()
	}
	if fc.Camera.Up != nil {
		s.Config.Camera.Up = fc.Camera.Up.vec()
	}

	for i, sc := range fc.Spheres {
		sphere, err := sc.Build()
		if err != nil {
			return nil, fmt.Errorf("sphere %d: %w", i, err)
		}
		s.Spheres = append(s.Spheres, sphere)
	}

	if err := s.Config.Validate(); err != nil {
		return nil, fmt.Errorf("scene %q: %w", fc.Name, err)
	}
	return s, nil
}

// ParseJSON decodes a scene file. Unknown fields are rejected.
func ParseJSON(r io.Reader) (FileCfg, error) {
	var fc FileCfg
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return FileCfg{}, fmt.Errorf("failed to decode scene: %w", err)
	}
	return fc, nil
}

// LoadJSON reads and builds a scene file. A missing name is taken from the filename.
func LoadJSON(path string) (*Scene, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	fc, err := ParseJSON(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if fc.Name == "" {
		fc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	s, err := fc.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ToFileCfg converts a scene back into its JSON form
func (s *Scene) ToFileCfg() FileCfg {
	maxDepth := s.Config.Trace.MaxDepth
	background := toCfg(s.Config.Trace.Background)
	fc := FileCfg{
		Name:        s.Name,
		Description: s.Description,
		Width:       s.Config.Width,
		Height:      s.Config.Height,
		MaxDepth:    &maxDepth,
		Background:  &background,
		Camera:      CameraCfg{FOV: s.Config.Camera.FOV},
	}
	if s.Config.Camera.Positioned() {
		from, at, up := toCfg(s.Config.Camera.LookFrom), toCfg(s.Config.Camera.LookAt), toCfg(s.Config.Camera.Up)
		fc.Camera.LookFrom, fc.Camera.LookAt, fc.Camera.Up = &from, &at, &up
	}

	for _, sphere := range s.Spheres {
		surface := sphere.Surface()
		fc.Spheres = append(fc.Spheres, SphereCfg{
			Center:       toCfg(sphere.Center()),
			Radius:       sphere.Radius(),
			Color:        toCfg(surface.Color),
			Emission:     toCfg(surface.Emission),
			Reflection:   surface.Reflection,
			Transparency: surface.Transparency,
			IOR:          surface.IOR,
		})
	}
	return fc
}

func toCfg(v core.Vec3) Vec3Cfg {
	return Vec3Cfg{v.X, v.Y, v.Z}
}
