package renderer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/harrisjacob/3D-Renderer/pkg/core"
	"github.com/harrisjacob/3D-Renderer/pkg/geometry"
)

// RenderConfig contains everything the render driver needs
type RenderConfig struct {
	Width      int          // Image width
	Height     int          // Image height
	Camera     CameraConfig // Field of view and placement
	Trace      TraceConfig  // Recursion depth, bias and background
	NumWorkers int          // Number of parallel workers (0 = use CPU count, 1 = sequential)
	TileSize   int          // Tile edge length for parallel rendering
}

// DefaultRenderConfig returns sensible default values
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		Width:      640,
		Height:     480,
		Camera:     DefaultCameraConfig(),
		Trace:      DefaultTraceConfig(),
		NumWorkers: 0,
		TileSize:   32,
	}
}

// Validate checks the configuration for values the driver cannot render
func (c RenderConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("image size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		return fmt.Errorf("field of view must be in (0, 180) degrees, got %g", c.Camera.FOV)
	}
	if err := c.Camera.Validate(); err != nil {
		return err
	}
	if c.Trace.MaxDepth < 0 {
		return fmt.Errorf("max depth must not be negative, got %d", c.Trace.MaxDepth)
	}
	if c.NumWorkers < 0 {
		return fmt.Errorf("worker count must not be negative, got %d", c.NumWorkers)
	}
	if c.NumWorkers != 1 && c.TileSize <= 0 {
		return fmt.Errorf("tile size must be positive, got %d", c.TileSize)
	}
	return nil
}

// Raytracer drives a render: one primary ray per pixel, traced to a framebuffer
type Raytracer struct {
	config RenderConfig
	tracer *Tracer
	camera *Camera
	logger core.Logger
}

// NewRaytracer creates a new raytracer over an immutable list of spheres
func NewRaytracer(spheres []geometry.Sphere, config RenderConfig, logger core.Logger) (*Raytracer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid render config: %w", err)
	}
	if logger == nil {
		logger = NewDefaultLogger()
	}

	return &Raytracer{
		config: config,
		tracer: NewTracer(spheres, config.Trace),
		camera: NewCamera(config.Camera, config.Width, config.Height),
		logger: logger,
	}, nil
}

// Tracer returns the shading core used by this raytracer
func (rt *Raytracer) Tracer() *Tracer {
	return rt.tracer
}

// Camera returns the camera used by this raytracer
func (rt *Raytracer) Camera() *Camera {
	return rt.camera
}

// Render traces every pixel and returns the framebuffer. Cancelling ctx stops the
// render between rows (sequential) or tiles (parallel).
func (rt *Raytracer) Render(ctx context.Context) (*Framebuffer, RenderStats, error) {
	start := time.Now()
	fb := NewFramebuffer(rt.config.Width, rt.config.Height)

	var (
		trace TraceStats
		err   error
		tiles int
	)

	workers := resolveWorkers(rt.config.NumWorkers)
	if workers == 1 {
		rt.logger.Printf("Rendering %dx%d sequentially...\n", fb.Width, fb.Height)
		trace, err = rt.renderSequential(ctx, fb)
	} else {
		rt.logger.Printf("Rendering %dx%d with %d workers...\n", fb.Width, fb.Height, workers)
		trace, tiles, err = rt.renderParallel(ctx, fb, workers)
	}
	if err != nil {
		return nil, RenderStats{}, err
	}

	stats := newRenderStats(fb, trace, workers, tiles, time.Since(start))
	rt.logger.Printf("Render completed in %v (%d rays, max depth %d)\n",
		stats.Elapsed, stats.TotalRays, stats.MaxDepthReached)

	return fb, stats, nil
}

// renderSequential traces pixels in row-major order
func (rt *Raytracer) renderSequential(ctx context.Context, fb *Framebuffer) (TraceStats, error) {
	var stats TraceStats
	for y := 0; y < fb.Height; y++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Merge(rt.RenderBounds(image.Rect(0, y, fb.Width, y+1), fb))
	}
	return stats, nil
}

// renderParallel splits the image into tiles and renders them on a worker pool.
// Tiles cover disjoint pixels so the framebuffer needs no locking.
func (rt *Raytracer) renderParallel(ctx context.Context, fb *Framebuffer, workers int) (TraceStats, int, error) {
	tiles := NewTileGrid(fb.Width, fb.Height, rt.config.TileSize)

	pool := NewWorkerPool(rt, fb, workers, len(tiles))
	pool.Start(ctx)
	for i, tile := range tiles {
		pool.SubmitTask(TileTask{Tile: tile, TaskID: i})
	}

	var (
		stats    TraceStats
		firstErr error
	)
	for range tiles {
		result, ok := pool.GetResult()
		if !ok {
			firstErr = fmt.Errorf("worker pool closed unexpectedly")
			break
		}
		if result.Error != nil && firstErr == nil {
			firstErr = result.Error
		}
		stats.Merge(result.Stats)
	}
	pool.Stop()

	if firstErr != nil {
		return stats, len(tiles), firstErr
	}
	return stats, len(tiles), nil
}

// RenderBounds traces the pixels inside bounds into fb
func (rt *Raytracer) RenderBounds(bounds image.Rectangle, fb *Framebuffer) TraceStats {
	var stats TraceStats
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			ray := rt.camera.GetRay(x, y)
			fb.Set(x, y, rt.tracer.TraceWithStats(ray, 0, &stats))
		}
	}
	return stats
}
