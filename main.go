package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/harrisjacob/3D-Renderer/pkg/config"
	"github.com/harrisjacob/3D-Renderer/pkg/imageio"
	"github.com/harrisjacob/3D-Renderer/pkg/loaders"
	"github.com/harrisjacob/3D-Renderer/pkg/raster"
	"github.com/harrisjacob/3D-Renderer/pkg/renderer"
	"github.com/harrisjacob/3D-Renderer/pkg/scene"
)

// Default canvas size for wireframes
const wireframeSize = 1000

type options struct {
	scene     string
	width     int
	height    int
	fov       float64
	maxDepth  int
	workers   int
	output    string
	format    string
	flip      bool
	scale     float64
	envFile   string
	upload    bool
	wireframe string
	compare   string
}

func main() {
	var opts options

	// Parse command line flags
	flag.StringVar(&opts.scene, "scene", "default", "Scene: built-in name, json:<name> or path to a .json scene file")
	flag.IntVar(&opts.width, "width", 0, "Image width (0 = scene or environment setting)")
	flag.IntVar(&opts.height, "height", 0, "Image height (0 = scene or environment setting)")
	flag.Float64Var(&opts.fov, "fov", 0, "Vertical field of view in degrees (0 = scene setting)")
	flag.IntVar(&opts.maxDepth, "max-depth", -1, "Maximum reflection/refraction depth (-1 = scene setting)")
	flag.IntVar(&opts.workers, "workers", -1, "Parallel workers (0 = one per CPU, 1 = sequential, -1 = environment setting)")
	flag.StringVar(&opts.output, "output", "", "Output file (default output/<scene>/render_<timestamp>.<format>)")
	flag.StringVar(&opts.format, "format", "", "Output format: png, jpg, bmp, tiff, gif, ppm or tga")
	flag.BoolVar(&opts.flip, "flip", false, "Flip the output vertically")
	flag.Float64Var(&opts.scale, "scale", 1, "Resize the output by this factor")
	flag.StringVar(&opts.envFile, "env", ".env", "Environment file with RAYTRACER_* and S3_* settings")
	flag.BoolVar(&opts.upload, "upload", false, "Upload the output to the configured S3 bucket")
	flag.StringVar(&opts.wireframe, "wireframe", "", "Draw a wireframe of an OBJ model instead of ray tracing a scene")
	flag.StringVar(&opts.compare, "compare", "", "Reference image to compare the output against")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	// Show help if requested
	if *help {
		showHelp()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func showHelp() {
	fmt.Println("Whitted Raytracer")
	fmt.Println("Usage: raytracer [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Available scenes:")
	for _, name := range scene.BuiltinNames() {
		s, _ := scene.Builtin(name)
		fmt.Printf("  %-10s - %s\n", name, s.Description)
	}
	if scenes, err := scene.ListJSONScenes(); err == nil {
		for _, info := range scenes {
			fmt.Printf("  %-10s - %s\n", info.ID, info.Description)
		}
	}
	fmt.Println()
	fmt.Println("Output will be saved to output/<scene>/render_<timestamp>.<format>")
}

func run(ctx context.Context, opts options) error {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if opts.format != "" {
		cfg.Format = opts.format
	}

	var img image.Image
	var name string
	if opts.wireframe != "" {
		img, name, err = drawWireframe(opts, cfg)
	} else {
		img, name, err = renderScene(ctx, opts, cfg)
	}
	if err != nil {
		return err
	}

	filename := opts.output
	if filename == "" {
		filename, err = createOutputPath(cfg.OutputDir, name, cfg.Format)
		if err != nil {
			return err
		}
	}

	saveOpts := imageio.Options{
		Format: outputFormat(filename, opts.format, cfg.Format),
		FlipV:  opts.flip,
		Scale:  opts.scale,
		RLE:    true,
	}
	// Wireframes are drawn with a bottom-left origin
	if opts.wireframe != "" {
		saveOpts.FlipV = !saveOpts.FlipV
	}

	if err := imageio.Save(filename, img, saveOpts); err != nil {
		return fmt.Errorf("saving %s: %w", filename, err)
	}
	fmt.Printf("Render saved as %s\n", filename)

	if opts.compare != "" {
		if err := compareOutput(filename, opts.compare); err != nil {
			return err
		}
	}

	if opts.upload {
		if err := uploadOutput(ctx, cfg, name, filename); err != nil {
			return err
		}
	}
	return nil
}

func renderScene(ctx context.Context, opts options, cfg config.Config) (image.Image, string, error) {
	fmt.Println("Starting Whitted Raytracer...")

	selectedScene, err := createScene(opts.scene)
	if err != nil {
		return nil, "", err
	}
	fmt.Printf("Using %s scene (%d spheres, %d lights)...\n", selectedScene.Name, len(selectedScene.Spheres), selectedScene.LightCount())

	// Environment first, then flags
	cfg.Apply(&selectedScene.Config)
	applyFlags(&selectedScene.Config, opts)

	raytracer, err := selectedScene.NewRaytracer(renderer.NewDefaultLogger())
	if err != nil {
		return nil, "", err
	}

	fb, stats, err := raytracer.Render(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("rendering %s: %w", selectedScene.Name, err)
	}

	img := fb.ToRGBA()
	fmt.Printf("Render completed in %v\n", stats.Elapsed)
	fmt.Printf("Rays: %d total, %d shadow, %.2f per pixel, max depth %d\n",
		stats.TotalRays, stats.ShadowRays, stats.RaysPerPixel(), stats.MaxDepthReached)
	fmt.Printf("Average luminance: %.4f\n", renderer.CalculateAverageLuminance(img))

	return img, selectedScene.Name, nil
}

func applyFlags(rc *renderer.RenderConfig, opts options) {
	if opts.width > 0 {
		rc.Width = opts.width
	}
	if opts.height > 0 {
		rc.Height = opts.height
	}
	if opts.fov > 0 {
		rc.Camera.FOV = opts.fov
	}
	if opts.maxDepth >= 0 {
		rc.Trace.MaxDepth = opts.maxDepth
	}
	if opts.workers >= 0 {
		rc.NumWorkers = opts.workers
	}
}

func drawWireframe(opts options, cfg config.Config) (image.Image, string, error) {
	model, err := loaders.LoadOBJ(opts.wireframe)
	if err != nil {
		return nil, "", err
	}
	fmt.Printf("Loaded %s: %d vertices, %d faces\n", opts.wireframe, len(model.Vertices), model.FaceCount())

	width, height := wireframeSize, wireframeSize
	for _, w := range []int{cfg.Width, opts.width} {
		if w > 0 {
			width = w
		}
	}
	for _, h := range []int{cfg.Height, opts.height} {
		if h > 0 {
			height = h
		}
	}

	start := time.Now()
	img := raster.Wireframe(model, width, height, color.White)
	fmt.Printf("Wireframe drawn in %v\n", time.Since(start))

	name := strings.TrimSuffix(filepath.Base(opts.wireframe), filepath.Ext(opts.wireframe))
	return img, name, nil
}

// createScene resolves a built-in scene, a discovered JSON scene or a scene file path
func createScene(sceneType string) (*scene.Scene, error) {
	if sceneType == "" {
		return nil, errors.New("no scene given")
	}
	return scene.Load(sceneType)
}

// createOutputPath returns output/<scene>/render_<timestamp>.<format>, creating the directory
func createOutputPath(baseDir, sceneName, format string) (string, error) {
	format, err := imageio.NormalizeFormat(format)
	if err != nil {
		return "", err
	}
	if format == "jpeg" {
		format = "jpg"
	}

	outputDir := filepath.Join(baseDir, sanitizeName(sceneName))
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	return filepath.Join(outputDir, fmt.Sprintf("render_%s.%s", timestamp, format)), nil
}

// sanitizeName turns a scene name into a directory name
func sanitizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ', r == '/', r == ':', r == '.':
			return '-'
		}
		return -1
	}, name)
	if name == "" {
		return "scene"
	}
	return name
}

// outputFormat prefers an explicit -format, then the file extension, then the configured format
func outputFormat(filename, explicit, fallback string) string {
	if explicit != "" {
		return explicit
	}
	if ext := filepath.Ext(filename); ext != "" {
		return ext
	}
	return fallback
}

func compareOutput(filename, reference string) error {
	output, err := loaders.LoadImage(filename)
	if err != nil {
		return fmt.Errorf("reading back output: %w", err)
	}
	ref, err := loaders.LoadImage(reference)
	if err != nil {
		return fmt.Errorf("reading reference: %w", err)
	}

	diff, err := imageio.Compare(output.ToNRGBA(), ref.ToNRGBA())
	if err != nil {
		return fmt.Errorf("comparing with %s: %w", reference, err)
	}
	fmt.Printf("Compared with %s (%s): %s\n", reference, ref.Format, diff)
	return nil
}

func uploadOutput(ctx context.Context, cfg config.Config, sceneName, filename string) error {
	uploader, err := imageio.NewUploader(cfg.S3)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}

	format, err := imageio.NormalizeFormat(filepath.Ext(filename))
	if err != nil {
		format = cfg.Format
	}
	key := fmt.Sprintf("%s/%s", sanitizeName(sceneName), filepath.Base(filename))
	if err := uploader.Upload(ctx, key, data, format); err != nil {
		return err
	}
	fmt.Printf("Uploaded %s (%d bytes)\n", uploader.URL(key), len(data))
	return nil
}
