package ai

import (
	"context"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestDecodeOutline(t *testing.T) {
	raw := []byte(`{
		"title": "Beyond Binary",
		"slides": [
			{"title": "Hook", "content": "c1", "visual_prompt": "v1", "video_prompt": "m1"},
			{"title": "Problem", "content": "c2", "visual_prompt": "v2", "video_prompt": "m2"}
		]
	}`)

	outline, err := DecodeOutline(raw)
	if err != nil {
		t.Fatalf("DecodeOutline: %v", err)
	}
	if outline.Title != "Beyond Binary" {
		t.Errorf("title = %q", outline.Title)
	}
	if len(outline.Slides) != 2 {
		t.Fatalf("got %d slides, want 2", len(outline.Slides))
	}
	if outline.Slides[1].VisualPrompt != "v2" {
		t.Errorf("slide 2 visual prompt = %q", outline.Slides[1].VisualPrompt)
	}
}

func TestDecodeOutlineRejectsMalformedJSON(t *testing.T) {
	if _, err := DecodeOutline([]byte(`{"title": "x", "slides": [`)); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
}

func TestDecodeOutlineRejectsEmptyPlan(t *testing.T) {
	cases := []string{
		`{"title": "", "slides": [{"title":"a","content":"b","visual_prompt":"c","video_prompt":"d"}]}`,
		`{"title": "x", "slides": []}`,
	}
	for _, raw := range cases {
		if _, err := DecodeOutline([]byte(raw)); err == nil {
			t.Errorf("expected error for %s", raw)
		}
	}
}

func TestBuildUserPrompt(t *testing.T) {
	prompt := BuildUserPrompt(PlanRequest{Topic: "Mars colonization", SlideCount: 3})
	if !strings.Contains(prompt, "Mars colonization") || !strings.Contains(prompt, "3 slides") {
		t.Errorf("prompt missing topic or count: %q", prompt)
	}
	if strings.Contains(prompt, "Context URL") || strings.Contains(prompt, "PDF") {
		t.Errorf("prompt mentions absent context: %q", prompt)
	}

	prompt = BuildUserPrompt(PlanRequest{
		Topic:      "x",
		SlideCount: 5,
		URLLink:    "https://example.com/report",
		PDFPath:    "uploads/doc_1.pdf",
	})
	if !strings.Contains(prompt, "https://example.com/report") {
		t.Errorf("prompt missing URL: %q", prompt)
	}
	if !strings.Contains(prompt, "PDF") {
		t.Errorf("prompt missing PDF hint: %q", prompt)
	}
}

func TestArchitectInstructionEmbedded(t *testing.T) {
	got := architectInstruction()
	if !strings.Contains(got, "presentation architect") {
		t.Errorf("unexpected instruction: %q", got[:40])
	}
}

func TestConfigurePlannerUsesCache(t *testing.T) {
	model := &genai.GenerativeModel{}
	configurePlanner(model, "cachedContents/abc123")

	if model.CachedContentName != "cachedContents/abc123" {
		t.Errorf("cached content name = %q", model.CachedContentName)
	}
	if model.SystemInstruction != nil {
		t.Error("instruction sent inline despite cache")
	}
	if len(model.Tools) != 0 {
		t.Error("tools set outside the cache")
	}
	if model.ResponseMIMEType != "application/json" {
		t.Errorf("response MIME type = %q", model.ResponseMIMEType)
	}
}

func TestConfigurePlannerFallsBackToInlinePrompt(t *testing.T) {
	model := &genai.GenerativeModel{}
	configurePlanner(model, "")

	if model.CachedContentName != "" {
		t.Errorf("cached content name = %q", model.CachedContentName)
	}
	if model.SystemInstruction == nil {
		t.Fatal("no inline instruction without a cache")
	}
	txt, ok := model.SystemInstruction.Parts[0].(genai.Text)
	if !ok || !strings.Contains(string(txt), "presentation architect") {
		t.Errorf("unexpected instruction part: %v", model.SystemInstruction.Parts[0])
	}
	if len(model.Tools) != 1 || model.Tools[0].CodeExecution == nil {
		t.Error("code execution tool not attached")
	}
	if model.ResponseSchema == nil {
		t.Error("response schema missing")
	}
}

func TestArchitectCacheMemoized(t *testing.T) {
	// A populated cache name must be returned without another API call;
	// the nil inner client panics if one is attempted.
	c := &Client{cacheName: "cachedContents/existing"}
	if got := c.architectCache(context.Background()); got != "cachedContents/existing" {
		t.Errorf("cache name = %q", got)
	}
}

func TestOutlineSchemaRequiresSlides(t *testing.T) {
	schema := outlineSchema()
	found := false
	for _, field := range schema.Required {
		if field == "slides" {
			found = true
		}
	}
	if !found {
		t.Error("slides not required in outline schema")
	}
}
