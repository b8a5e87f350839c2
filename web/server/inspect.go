package server

import (
	"fmt"
	"net/http"

	"github.com/harrisjacob/3D-Renderer/pkg/core"
	"github.com/harrisjacob/3D-Renderer/pkg/geometry"
	"github.com/harrisjacob/3D-Renderer/pkg/material"
	"github.com/harrisjacob/3D-Renderer/pkg/renderer"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	SphereIndex  int                    `json:"sphereIndex"`
	MaterialType string                 `json:"materialType"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	Inside       bool                   `json:"inside"`
	Color        [3]float64             `json:"color"` // Traced radiance of the pixel
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

// materialType names the shading path a surface takes
func materialType(surface material.Surface) string {
	switch {
	case surface.IsLight():
		return "light"
	case surface.Transparency > 0:
		return "glass"
	case surface.Reflection > 0:
		return "mirror"
	default:
		return "diffuse"
	}
}

// extractSurfaceInfo extracts surface and sphere properties
func extractSurfaceInfo(sphere geometry.Sphere) map[string]interface{} {
	surface := sphere.Surface()
	center := sphere.Center()
	return map[string]interface{}{
		"material": map[string]interface{}{
			"color":        vecArray(surface.Color),
			"hex":          hexColor(surface.Color),
			"emission":     vecArray(surface.Emission),
			"reflection":   surface.Reflection,
			"transparency": surface.Transparency,
			"ior":          surface.RefractiveIndex(),
			"isLight":      surface.IsLight(),
		},
		"geometry": map[string]interface{}{
			"center": vecArray(center),
			"radius": sphere.Radius(),
		},
	}
}

// handleInspect reports what the primary ray through a pixel hits
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	sceneName := query.Get("scene")
	if sceneName == "" {
		sceneName = "default"
	}

	sceneObj, err := s.createScene(sceneName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Inspect against the same image size the client rendered
	width, err := parseIntParam(query, "width", sceneObj.Config.Width, minSize, maxSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}
	height, err := parseIntParam(query, "height", sceneObj.Config.Height, minSize, maxSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}
	fov, err := parseFloatParam(query, "fov", sceneObj.Config.Camera.FOV, 1, 179)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}
	sceneObj.Config.Width, sceneObj.Config.Height = width, height
	sceneObj.Config.Camera.FOV = fov

	if query.Get("x") == "" || query.Get("y") == "" {
		writeError(w, http.StatusBadRequest, "x and y are required")
		return
	}
	pixelX, err := parseIntParam(query, "x", 0, 0, width-1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Pixel coordinates out of bounds: "+err.Error())
		return
	}
	pixelY, err := parseIntParam(query, "y", 0, 0, height-1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Pixel coordinates out of bounds: "+err.Error())
		return
	}

	raytracer, err := sceneObj.NewRaytracer(renderer.NewDiscardLogger())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, inspectPixel(raytracer, pixelX, pixelY))
}

// inspectPixel casts the primary ray for a pixel and describes the nearest sphere
func inspectPixel(raytracer *renderer.Raytracer, x, y int) InspectResponse {
	tracer := raytracer.Tracer()
	ray := raytracer.Camera().GetRay(x, y)

	response := InspectResponse{
		SphereIndex: -1,
		Color:       vecArray(tracer.Trace(ray, 0)),
	}

	index, dist := tracer.ClosestHit(ray)
	if index < 0 {
		return response
	}

	sphere := tracer.Spheres()[index]
	point := ray.At(dist)
	normal := sphere.NormalAt(point)
	inside := ray.Direction.Dot(normal) > 0
	if inside {
		normal = normal.Negate()
	}

	response.Hit = true
	response.SphereIndex = index
	response.MaterialType = materialType(sphere.Surface())
	response.Point = vecArray(point)
	response.Normal = vecArray(normal)
	response.Distance = dist
	response.Inside = inside
	response.Properties = extractSurfaceInfo(sphere)
	return response
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c core.Vec3) string {
	return fmt.Sprintf("#%02x%02x%02x",
		renderer.QuantizeChannel(c.X), renderer.QuantizeChannel(c.Y), renderer.QuantizeChannel(c.Z))
}
