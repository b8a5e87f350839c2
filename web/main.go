package main

import (
	"flag"
	"log"
	"os"

	"github.com/harrisjacob/3D-Renderer/pkg/config"
	"github.com/harrisjacob/3D-Renderer/pkg/imageio"
	"github.com/harrisjacob/3D-Renderer/web/server"
)

func main() {
	// Parse command line flags
	port := flag.Int("port", 8080, "Port to serve on")
	envFile := flag.String("env", ".env", "Environment file with S3_* settings")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Printf("Error loading configuration: %v", err)
		os.Exit(1)
	}

	// Create and start web server
	webServer := server.NewServer(*port)

	if cfg.S3.Enabled() {
		uploader, err := imageio.NewUploader(cfg.S3)
		if err != nil {
			log.Printf("Error creating S3 uploader: %v", err)
			os.Exit(1)
		}
		webServer.SetUploader(uploader)
		log.Printf("Uploads enabled to bucket %s", cfg.S3.Bucket)
	}

	log.Printf("Whitted Raytracer Web Server")
	log.Printf("Visit http://localhost:%d to start rendering", *port)

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
