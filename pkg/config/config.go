package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/harrisjacob/3D-Renderer/pkg/imageio"
	"github.com/harrisjacob/3D-Renderer/pkg/renderer"
)

// Environment variables read by Load
const (
	EnvWidth     = "RAYTRACER_WIDTH"
	EnvHeight    = "RAYTRACER_HEIGHT"
	EnvFOV       = "RAYTRACER_FOV"
	EnvMaxDepth  = "RAYTRACER_MAX_DEPTH"
	EnvWorkers   = "RAYTRACER_WORKERS"
	EnvTileSize  = "RAYTRACER_TILE_SIZE"
	EnvOutputDir = "RAYTRACER_OUTPUT_DIR"
	EnvFormat    = "RAYTRACER_FORMAT"

	EnvS3Endpoint  = "S3_ENDPOINT"
	EnvS3Region    = "S3_REGION"
	EnvS3Bucket    = "S3_BUCKET"
	EnvS3AccessKey = "S3_ACCESS_KEY"
	EnvS3SecretKey = "S3_SECRET_KEY"
)

// Config holds settings from the environment. Zero numeric values mean
// "use the scene's own setting".
type Config struct {
	Width     int
	Height    int
	FOV       float64
	MaxDepth  int // -1 when unset; 0 is a valid depth
	Workers   int // -1 when unset; 0 means one per CPU
	TileSize  int
	OutputDir string
	Format    string
	S3        imageio.S3Config
}

// Default returns the configuration used when nothing is set
func Default() Config {
	return Config{
		MaxDepth:  -1,
		Workers:   -1,
		OutputDir: "output",
		Format:    "png",
	}
}

// Load reads envFile, when it exists, into the process environment without
// overriding variables that are already set, then builds the config from the
// environment. An empty envFile skips the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	return FromEnv()
}

// FromEnv builds the config from the current environment
func FromEnv() (Config, error) {
	cfg := Default()

	var err error
	if cfg.Width, err = envInt(EnvWidth, cfg.Width); err != nil {
		return cfg, err
	}
	if cfg.Height, err = envInt(EnvHeight, cfg.Height); err != nil {
		return cfg, err
	}
	if cfg.FOV, err = envFloat(EnvFOV, cfg.FOV); err != nil {
		return cfg, err
	}
	if cfg.MaxDepth, err = envInt(EnvMaxDepth, cfg.MaxDepth); err != nil {
		return cfg, err
	}
	if cfg.Workers, err = envInt(EnvWorkers, cfg.Workers); err != nil {
		return cfg, err
	}
	if cfg.TileSize, err = envInt(EnvTileSize, cfg.TileSize); err != nil {
		return cfg, err
	}
	cfg.OutputDir = getEnv(EnvOutputDir, cfg.OutputDir)
	cfg.Format = getEnv(EnvFormat, cfg.Format)

	cfg.S3 = imageio.S3Config{
		Endpoint:  os.Getenv(EnvS3Endpoint),
		Region:    os.Getenv(EnvS3Region),
		Bucket:    os.Getenv(EnvS3Bucket),
		AccessKey: os.Getenv(EnvS3AccessKey),
		SecretKey: os.Getenv(EnvS3SecretKey),
	}

	return cfg, cfg.Validate()
}

// Validate rejects values no render could use
func (c Config) Validate() error {
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("image size must not be negative, got %dx%d", c.Width, c.Height)
	}
	if c.FOV < 0 || c.FOV >= 180 {
		return fmt.Errorf("field of view must be in (0, 180) degrees, got %g", c.FOV)
	}
	if c.MaxDepth < -1 {
		return fmt.Errorf("max depth must not be negative, got %d", c.MaxDepth)
	}
	if c.Workers < -1 {
		return fmt.Errorf("worker count must not be negative, got %d", c.Workers)
	}
	if c.TileSize < 0 {
		return fmt.Errorf("tile size must not be negative, got %d", c.TileSize)
	}
	if _, err := imageio.NormalizeFormat(c.Format); err != nil {
		return err
	}
	if c.S3.Bucket != "" && c.S3.Region == "" {
		return fmt.Errorf("%s is required when %s is set", EnvS3Region, EnvS3Bucket)
	}
	return nil
}

// Apply overrides the set values of rc
func (c Config) Apply(rc *renderer.RenderConfig) {
	if c.Width > 0 {
		rc.Width = c.Width
	}
	if c.Height > 0 {
		rc.Height = c.Height
	}
	if c.FOV > 0 {
		rc.Camera.FOV = c.FOV
	}
	if c.MaxDepth >= 0 {
		rc.Trace.MaxDepth = c.MaxDepth
	}
	if c.Workers >= 0 {
		rc.NumWorkers = c.Workers
	}
	if c.TileSize > 0 {
		rc.TileSize = c.TileSize
	}
}

// Helper to get environment variables with a default value.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return f, nil
}
