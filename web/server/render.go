package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/harrisjacob/3D-Renderer/pkg/core"
	"github.com/harrisjacob/3D-Renderer/pkg/imageio"
	"github.com/harrisjacob/3D-Renderer/pkg/renderer"
	"github.com/harrisjacob/3D-Renderer/pkg/scene"
)

// SSEEvent represents a unified SSE event for thread-safe writing
type SSEEvent struct {
	Type string `json:"type"` // "console", "error", "complete"
	Data string `json:"data"` // JSON-encoded data
}

// RenderRequest holds the parsed query parameters of a render.
// Zero sizes and a negative depth keep the scene's own settings.
type RenderRequest struct {
	Scene    string
	Width    int
	Height   int
	FOV      float64
	MaxDepth int
	Format   string
	Flip     bool
	Scale    float64
	Upload   bool
}

// RenderSummary describes a finished render
type RenderSummary struct {
	Scene           string  `json:"scene"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	TotalRays       int     `json:"totalRays"`
	ShadowRays      int     `json:"shadowRays"`
	RaysPerPixel    float64 `json:"raysPerPixel"`
	MaxDepthReached int     `json:"maxDepthReached"`
	Workers         int     `json:"workers"`
	ElapsedMs       int64   `json:"elapsedMs"`
	Luminance       float64 `json:"luminance"`
	Location        string  `json:"location,omitempty"`
}

// renderResult is the output shared by the plain and streaming endpoints
type renderResult struct {
	scene *scene.Scene
	image *image.RGBA
	stats renderer.RenderStats
}

// handleRender renders a scene and responds with the encoded image
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := parseRenderRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	if req.Upload && s.uploader == nil {
		writeError(w, http.StatusBadRequest, "upload requested but no storage is configured")
		return
	}

	ctx := r.Context()
	logger := NewWebLogger(s.nextRenderID(), nil)

	result, err := s.render(ctx, req, logger)
	if err != nil {
		writeError(w, renderErrorStatus(err), err.Error())
		return
	}

	data, format, err := imageio.EncodeBytes(result.image, imageio.Options{
		Format: req.Format,
		FlipV:  req.Flip,
		Scale:  req.Scale,
		RLE:    true,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summary := summarize(result)
	if req.Upload {
		location, err := s.upload(ctx, result.scene.Name, data, format)
		if err != nil {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		summary.Location = location
		w.Header().Set("X-Render-Location", location)
	}

	logger.Printf("Encoded %s (%d bytes)\n", format, len(data))

	w.Header().Set("Content-Type", imageio.ContentType(format))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Render-Rays", strconv.Itoa(summary.TotalRays))
	w.Header().Set("X-Render-Time", strconv.FormatInt(summary.ElapsedMs, 10))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleRenderStream renders a scene while streaming log lines via SSE,
// finishing with a "complete" event that carries a PNG preview
func (s *Server) handleRenderStream(w http.ResponseWriter, r *http.Request) {
	// Set SSE headers
	s.setSSEHeaders(w)

	ctx := r.Context()

	// Single writer: the handler goroutine drains the channel until the render closes it
	sseEventChan := make(chan SSEEvent, 100)
	go s.streamRender(ctx, r.URL.Query(), sseEventChan)
	s.writeSSEEvents(w, ctx, sseEventChan)
}

// streamRender runs one render and feeds its events to sseEventChan, closing it when done
func (s *Server) streamRender(ctx context.Context, query url.Values, sseEventChan chan SSEEvent) {
	defer close(sseEventChan)

	req, err := parseRenderRequest(query)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("Invalid request: %v", err))
		return
	}
	if req.Upload && s.uploader == nil {
		s.handleError(ctx, sseEventChan, "upload requested but no storage is configured")
		return
	}

	// Setup console logging and streaming
	consoleChan := make(chan ConsoleMessage, 100)
	webLogger := NewWebLogger(s.nextRenderID(), consoleChan)
	consoleDone := make(chan struct{})
	go func() {
		defer close(consoleDone)
		s.streamConsoleMessages(ctx, consoleChan, sseEventChan)
	}()

	result, err := s.render(ctx, req, webLogger)
	close(consoleChan)
	<-consoleDone
	if err != nil {
		s.handleError(ctx, sseEventChan, err.Error())
		return
	}

	summary := summarize(result)
	if req.Upload {
		data, format, err := imageio.EncodeBytes(result.image, imageio.Options{
			Format: req.Format,
			FlipV:  req.Flip,
			Scale:  req.Scale,
			RLE:    true,
		})
		if err == nil {
			summary.Location, err = s.upload(ctx, result.scene.Name, data, format)
		}
		if err != nil {
			s.handleError(ctx, sseEventChan, err.Error())
			return
		}
	}

	// The preview is always PNG so browsers can show it inline
	preview := imageio.Transform(result.image, imageio.Options{FlipV: req.Flip, Scale: req.Scale})
	imageData, err := imageToBase64PNG(preview)
	if err != nil {
		s.handleError(ctx, sseEventChan, fmt.Sprintf("encoding preview: %v", err))
		return
	}

	payload := struct {
		RenderSummary
		ImageData string `json:"imageData"`
	}{summary, imageData}
	data, err := json.Marshal(payload)
	if err != nil {
		s.handleError(ctx, sseEventChan, err.Error())
		return
	}
	sendSSEEvent(ctx, sseEventChan, SSEEvent{Type: "complete", Data: string(data)})
}

// render builds the requested scene and traces it
func (s *Server) render(ctx context.Context, req *RenderRequest, logger core.Logger) (*renderResult, error) {
	sceneObj, err := s.createScene(req.Scene)
	if err != nil {
		return nil, err
	}
	applyRequest(&sceneObj.Config, req)

	logger.Printf("Rendering %s at %dx%d, fov %g, max depth %d\n",
		sceneObj.Name, sceneObj.Config.Width, sceneObj.Config.Height,
		sceneObj.Config.Camera.FOV, sceneObj.Config.Trace.MaxDepth)

	raytracer, err := sceneObj.NewRaytracer(logger)
	if err != nil {
		return nil, err
	}

	fb, stats, err := raytracer.Render(ctx)
	if err != nil {
		return nil, err
	}
	logger.Printf("Render completed in %v (%d rays, %d shadow rays)\n", stats.Elapsed, stats.TotalRays, stats.ShadowRays)

	return &renderResult{scene: sceneObj, image: fb.ToRGBA(), stats: stats}, nil
}

// upload stores an encoded render and returns its location
func (s *Server) upload(ctx context.Context, sceneName string, data []byte, format string) (string, error) {
	ext := format
	if ext == "jpeg" {
		ext = "jpg"
	}
	key := fmt.Sprintf("%s/render_%s.%s", sceneName, time.Now().Format("20060102_150405.000"), ext)
	if err := s.uploader.Upload(ctx, key, data, format); err != nil {
		return "", err
	}
	return s.uploader.URL(key), nil
}

func applyRequest(rc *renderer.RenderConfig, req *RenderRequest) {
	if req.Width > 0 {
		rc.Width = req.Width
	}
	if req.Height > 0 {
		rc.Height = req.Height
	}
	if req.FOV > 0 {
		rc.Camera.FOV = req.FOV
	}
	if req.MaxDepth >= 0 {
		rc.Trace.MaxDepth = req.MaxDepth
	}
}

func summarize(result *renderResult) RenderSummary {
	return RenderSummary{
		Scene:           result.scene.Name,
		Width:           result.image.Bounds().Dx(),
		Height:          result.image.Bounds().Dy(),
		TotalRays:       result.stats.TotalRays,
		ShadowRays:      result.stats.ShadowRays,
		RaysPerPixel:    result.stats.RaysPerPixel(),
		MaxDepthReached: result.stats.MaxDepthReached,
		Workers:         result.stats.Workers,
		ElapsedMs:       result.stats.Elapsed.Milliseconds(),
		Luminance:       renderer.CalculateAverageLuminance(result.image),
	}
}

// renderErrorStatus maps cancelled renders and bad scenes to client errors
func renderErrorStatus(err error) int {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadRequest
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// writeSSEEvents handles all SSE writing in a single goroutine to prevent race conditions
func (s *Server) writeSSEEvents(w http.ResponseWriter, ctx context.Context, sseEventChan chan SSEEvent) {
	for {
		select {
		case event, ok := <-sseEventChan:
			if !ok {
				// Channel closed
				return
			}

			// Write SSE event
			_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data)
			if err != nil {
				// Client disconnected during write
				return
			}
			if flusher, ok := w.(http.Flusher); ok {
				flusher.Flush()
			}

		case <-ctx.Done():
			// Client disconnected
			return
		}
	}
}

// streamConsoleMessages forwards console messages until consoleChan is closed
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan chan ConsoleMessage, sseEventChan chan SSEEvent) {
	for msg := range consoleChan {
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		sendSSEEvent(ctx, sseEventChan, SSEEvent{Type: "console", Data: string(data)})
	}
}

// sendSSEEvent queues an event unless the client has gone away
func sendSSEEvent(ctx context.Context, sseEventChan chan SSEEvent, event SSEEvent) {
	select {
	case sseEventChan <- event:
	case <-ctx.Done():
	}
}

// handleError sends an error event
func (s *Server) handleError(ctx context.Context, sseEventChan chan SSEEvent, message string) {
	data, _ := json.Marshal(map[string]string{"error": message})
	sendSSEEvent(ctx, sseEventChan, SSEEvent{Type: "error", Data: string(data)})
}

// parseRenderRequest parses and validates render parameters
func parseRenderRequest(values url.Values) (*RenderRequest, error) {
	req := &RenderRequest{
		Scene:  values.Get("scene"),
		Format: values.Get("format"),
	}
	if req.Scene == "" {
		req.Scene = "default"
	}
	if req.Format == "" {
		req.Format = "png"
	}

	format, err := imageio.NormalizeFormat(req.Format)
	if err != nil {
		return nil, err
	}
	req.Format = format

	if req.Width, err = parseIntParam(values, "width", 0, minSize, maxSize); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", 0, minSize, maxSize); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(values, "maxDepth", -1, 0, maxDepthMax); err != nil {
		return nil, err
	}
	if req.FOV, err = parseFloatParam(values, "fov", 0, 1, 179); err != nil {
		return nil, err
	}
	if req.Scale, err = parseFloatParam(values, "scale", 1, 0.05, 4); err != nil {
		return nil, err
	}
	if req.Flip, err = parseBoolParam(values, "flip"); err != nil {
		return nil, err
	}
	if req.Upload, err = parseBoolParam(values, "upload"); err != nil {
		return nil, err
	}

	return req, nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
