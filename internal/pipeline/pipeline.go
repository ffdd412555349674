package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gnemet/motionpitch/internal/ai"
	"github.com/gnemet/motionpitch/internal/database"
	"github.com/gnemet/motionpitch/internal/progress"
)

// PlaceholderURL is served when a slide image could not be generated.
const PlaceholderURL = "/static/placeholder.png"

type Planner interface {
	PlanPresentation(ctx context.Context, req ai.PlanRequest) (*ai.Outline, error)
}

type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

type VideoGenerator interface {
	GenerateVideo(ctx context.Context, imagePath, prompt string) ([]byte, error)
}

// Request is one generation job. It lives only for the duration of the
// request; the resulting Presentation is what gets persisted.
type Request struct {
	Topic       string
	SlideCount  int
	EnableVideo bool
	URLLink     string
	PDFPath     string

	// ClientID is the hub topic progress events are published to.
	ClientID string
}

// Runner drives the three model calls for one generation: plan the outline,
// render an image per slide, optionally animate the first slide.
type Runner struct {
	Planner Planner
	Images  ImageGenerator
	Video   VideoGenerator
	Hub     *progress.Hub

	UploadsDir string
	// Workers caps concurrent image calls.
	Workers int
}

// Run executes the full generation sequence and returns the assembled
// presentation. A planning failure fails the whole run; a failed slide image
// degrades to the placeholder and a failed video degrades to the still image.
func (r *Runner) Run(ctx context.Context, req Request) (*database.Presentation, error) {
	r.Hub.Logf(req.ClientID, "Planning deck for %q...", req.Topic)
	if req.URLLink != "" {
		r.Hub.Logf(req.ClientID, "Browsing URL context: %s", req.URLLink)
	}
	if req.PDFPath != "" {
		r.Hub.Logf(req.ClientID, "Analyzing PDF file content...")
	}

	outline, err := r.Planner.PlanPresentation(ctx, ai.PlanRequest{
		Topic:      req.Topic,
		SlideCount: req.SlideCount,
		URLLink:    req.URLLink,
		PDFPath:    req.PDFPath,
	})
	if err != nil {
		return nil, fmt.Errorf("planning failed: %w", err)
	}

	slides := make([]database.Slide, len(outline.Slides))
	// localPaths keeps the on-disk image locations for the video step.
	localPaths := make([]string, len(outline.Slides))

	r.Hub.Logf(req.ClientID, "Generating %d slide images...", len(outline.Slides))

	workers := r.Workers
	if workers <= 0 {
		workers = 5
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, plan := range outline.Slides {
		g.Go(func() error {
			slides[i] = database.Slide{
				Position:  i + 1,
				Title:     plan.Title,
				Content:   plan.Content,
				MediaURL:  PlaceholderURL,
				MediaType: "image",
			}

			data, err := r.Images.GenerateImage(gctx, plan.VisualPrompt)
			if err != nil {
				// Placeholder stands in; the rest of the deck still renders.
				r.Hub.Logf(req.ClientID, "Slide %d: image failed (%v), using placeholder.", i+1, err)
				return nil
			}

			url, local, err := r.writeAsset("img_", ".png", data)
			if err != nil {
				r.Hub.Logf(req.ClientID, "Slide %d: saving image failed (%v), using placeholder.", i+1, err)
				return nil
			}

			slides[i].MediaURL = url
			localPaths[i] = local
			r.Hub.Logf(req.ClientID, "Slide %d: image ready.", i+1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	hasVideo := false
	if req.EnableVideo && len(outline.Slides) > 0 {
		if prompt := outline.Slides[0].VideoPrompt; prompt != "" && localPaths[0] != "" {
			r.Hub.Logf(req.ClientID, "Slide 1: animating (this can take ~60s)...")
			data, err := r.Video.GenerateVideo(ctx, localPaths[0], prompt)
			if err != nil {
				r.Hub.Logf(req.ClientID, "Slide 1: video failed (%v), keeping still image.", err)
			} else if url, _, err := r.writeAsset("veo_", ".mp4", data); err != nil {
				r.Hub.Logf(req.ClientID, "Slide 1: saving video failed (%v), keeping still image.", err)
			} else {
				slides[0].MediaURL = url
				slides[0].MediaType = "video"
				hasVideo = true
				r.Hub.Logf(req.ClientID, "Slide 1: video complete.")
			}
		}
	}

	pres := &database.Presentation{
		ID:       uuid.NewString(),
		Title:    outline.Title,
		Slides:   slides,
		HasVideo: hasVideo,
	}

	r.Hub.Logf(req.ClientID, "Generation complete.")
	return pres, nil
}

// writeAsset stores generated media under the uploads directory and returns
// the public URL plus the on-disk path.
func (r *Runner) writeAsset(prefix, ext string, data []byte) (string, string, error) {
	name := prefix + uuid.NewString() + ext
	local := filepath.Join(r.UploadsDir, name)
	if err := os.WriteFile(local, data, 0644); err != nil {
		return "", "", err
	}
	return "/uploads/" + name, local, nil
}
