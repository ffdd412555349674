package ai

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/gnemet/motionpitch/internal/config"
)

// promptFS holds the system instruction for the planning model,
// compiled into the binary at build time.
//
//go:embed prompts/architect.txt
var promptFS embed.FS

// SlidePlan is one planned slide as returned by the reasoning model.
type SlidePlan struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	VisualPrompt string `json:"visual_prompt"`
	VideoPrompt  string `json:"video_prompt"`
}

// Outline is the structured plan for a whole presentation.
type Outline struct {
	Title  string      `json:"title"`
	Slides []SlidePlan `json:"slides"`
}

// PlanRequest carries the user input handed to the reasoning model.
type PlanRequest struct {
	Topic      string
	SlideCount int
	URLLink    string
	PDFPath    string
}

type Client struct {
	genai *genai.Client
	cfg   config.AIConfig
	httpc *http.Client

	// videoEndpoint is overridable in tests; defaults to the
	// Generative Language API base URL.
	videoEndpoint string

	// cacheName holds the server-side context cache for the planner's
	// system instruction, created lazily on the first plan call.
	cacheMu   sync.Mutex
	cacheName string
}

func NewClient(ctx context.Context, cfg config.AIConfig) (*Client, error) {
	gc, err := genai.NewClient(ctx, option.WithAPIKey(cfg.Key))
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return &Client{
		genai:         gc,
		cfg:           cfg,
		httpc:         &http.Client{Timeout: 2 * time.Minute},
		videoEndpoint: "https://generativelanguage.googleapis.com/v1beta",
	}, nil
}

func (c *Client) Close() error {
	return c.genai.Close()
}

func architectInstruction() string {
	data, err := promptFS.ReadFile("prompts/architect.txt")
	if err != nil {
		// The file is embedded; failure here means a broken build.
		panic(err)
	}
	return string(data)
}

// plannerTools lets the model run code for any calculations the outline
// needs (market growth percentages, projections).
func plannerTools() []*genai.Tool {
	return []*genai.Tool{{CodeExecution: &genai.CodeExecution{}}}
}

// architectCache returns the name of the server-side context cache holding
// the architect instruction and tools, creating it on first use. An empty
// name means caching is unavailable and the caller should send the
// instruction inline.
func (c *Client) architectCache(ctx context.Context) string {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	if c.cacheName != "" {
		return c.cacheName
	}
	cc, err := c.genai.CreateCachedContent(ctx, &genai.CachedContent{
		Model: c.cfg.TextModel,
		SystemInstruction: &genai.Content{
			Parts: []genai.Part{genai.Text(architectInstruction())},
		},
		Tools:      plannerTools(),
		Expiration: genai.ExpireTimeOrTTL{TTL: time.Hour},
	})
	if err != nil {
		log.Printf("context cache creation failed, sending instruction inline: %v", err)
		return ""
	}
	log.Printf("created context cache %s", cc.Name)
	c.cacheName = cc.Name
	return c.cacheName
}

// configurePlanner attaches the architect context to the model: the cached
// content when one exists, otherwise the inline instruction and tools.
// Tools live in the cache in the cached case; the API rejects both at once.
func configurePlanner(model *genai.GenerativeModel, cacheName string) {
	if cacheName != "" {
		model.CachedContentName = cacheName
	} else {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(architectInstruction())},
		}
		model.Tools = plannerTools()
	}
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = outlineSchema()
}

// outlineSchema constrains the planner to the exact JSON shape Outline decodes.
func outlineSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title": {Type: genai.TypeString},
			"slides": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":         {Type: genai.TypeString},
						"content":       {Type: genai.TypeString},
						"visual_prompt": {Type: genai.TypeString},
						"video_prompt":  {Type: genai.TypeString},
					},
					Required: []string{"title", "content", "visual_prompt", "video_prompt"},
				},
			},
		},
		Required: []string{"title", "slides"},
	}
}

// BuildUserPrompt assembles the planner prompt from the request fields.
func BuildUserPrompt(req PlanRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s. Length: %d slides.", req.Topic, req.SlideCount)
	if req.URLLink != "" {
		fmt.Fprintf(&b, "\n\nContext URL: %s (use this site's subject matter as background).", req.URLLink)
	}
	if req.PDFPath != "" {
		b.WriteString("\n\nRefer to the attached PDF file for facts.")
	}
	return b.String()
}

// PlanPresentation asks the reasoning model for a structured slide outline.
// A call error or malformed JSON fails the whole generation; there is no
// partial-result path.
func (c *Client) PlanPresentation(ctx context.Context, req PlanRequest) (*Outline, error) {
	model := c.genai.GenerativeModel(c.cfg.TextModel)
	configurePlanner(model, c.architectCache(ctx))

	var parts []genai.Part
	if req.PDFPath != "" {
		fd, err := c.uploadPDF(ctx, req.PDFPath)
		if err != nil {
			return nil, fmt.Errorf("pdf upload: %w", err)
		}
		parts = append(parts, fd)
	}
	parts = append(parts, genai.Text(BuildUserPrompt(req)))

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("planning call: %w", err)
	}

	raw, err := textFromResponse(resp)
	if err != nil {
		return nil, err
	}
	return DecodeOutline([]byte(raw))
}

// DecodeOutline parses and validates the planner's JSON output.
func DecodeOutline(raw []byte) (*Outline, error) {
	var outline Outline
	if err := json.Unmarshal(raw, &outline); err != nil {
		return nil, fmt.Errorf("malformed outline JSON: %w", err)
	}
	if outline.Title == "" || len(outline.Slides) == 0 {
		return nil, fmt.Errorf("outline missing title or slides")
	}
	return &outline, nil
}

// uploadPDF pushes the file to the Files API and waits until it is active.
func (c *Client) uploadPDF(ctx context.Context, path string) (genai.FileData, error) {
	f, err := os.Open(path)
	if err != nil {
		return genai.FileData{}, err
	}
	defer f.Close()

	file, err := c.genai.UploadFile(ctx, "", f, &genai.UploadFileOptions{MIMEType: "application/pdf"})
	if err != nil {
		return genai.FileData{}, err
	}

	for file.State == genai.FileStateProcessing {
		select {
		case <-ctx.Done():
			return genai.FileData{}, ctx.Err()
		case <-time.After(time.Second):
		}
		file, err = c.genai.GetFile(ctx, file.Name)
		if err != nil {
			return genai.FileData{}, err
		}
	}
	if file.State != genai.FileStateActive {
		return genai.FileData{}, fmt.Errorf("uploaded file in state %v", file.State)
	}

	return genai.FileData{MIMEType: file.MIMEType, URI: file.URI}, nil
}

// GenerateImage renders one slide visual and returns the raw image bytes.
func (c *Client) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	model := c.genai.GenerativeModel(c.cfg.ImageModel)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("image call: %w", err)
	}

	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if blob, ok := part.(genai.Blob); ok && strings.HasPrefix(blob.MIMEType, "image/") {
				return blob.Data, nil
			}
		}
	}
	return nil, fmt.Errorf("no image in model response")
}

func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty model response")
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no text in model response")
	}
	return b.String(), nil
}
