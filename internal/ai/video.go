package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// The genai SDK has no surface for Veo long-running operations, so the video
// model is driven over the Generative Language REST API directly.

const (
	videoPollInterval = 5 * time.Second
	videoMaxPolls     = 120 // 10 minutes, matching the upstream operation cap
)

type videoRequest struct {
	Instances  []videoInstance `json:"instances"`
	Parameters videoParameters `json:"parameters"`
}

type videoInstance struct {
	Prompt string      `json:"prompt"`
	Image  *videoImage `json:"image,omitempty"`
}

type videoImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

type videoParameters struct {
	AspectRatio     string `json:"aspectRatio"`
	Resolution      string `json:"resolution"`
	DurationSeconds int    `json:"durationSeconds"`
}

type videoOperation struct {
	Name     string `json:"name"`
	Done     bool   `json:"done"`
	Error    *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Response *struct {
		GenerateVideoResponse struct {
			GeneratedSamples []struct {
				Video struct {
					URI string `json:"uri"`
				} `json:"video"`
			} `json:"generatedSamples"`
		} `json:"generateVideoResponse"`
	} `json:"response"`
}

// GenerateVideo animates the given slide image into a short clip and returns
// the raw MP4 bytes. The upstream operation is polled until done; a hung
// operation is cut off after the poll cap.
func (c *Client) GenerateVideo(ctx context.Context, imagePath, prompt string) ([]byte, error) {
	imgBytes, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("read slide image: %w", err)
	}

	reqBody := videoRequest{
		Instances: []videoInstance{{
			Prompt: "Cinematic 4k. " + prompt,
			Image: &videoImage{
				BytesBase64Encoded: base64.StdEncoding.EncodeToString(imgBytes),
				MimeType:           "image/png",
			},
		}},
		Parameters: videoParameters{
			AspectRatio:     "16:9",
			Resolution:      "720p",
			DurationSeconds: 8,
		},
	}

	startURL := fmt.Sprintf("%s/models/%s:predictLongRunning", c.videoEndpoint, c.cfg.VideoModel)
	var op videoOperation
	if err := c.postJSON(ctx, startURL, reqBody, &op); err != nil {
		return nil, fmt.Errorf("start video operation: %w", err)
	}

	for polls := 0; !op.Done && polls < videoMaxPolls; polls++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(videoPollInterval):
		}
		if err := c.getJSON(ctx, c.videoEndpoint+"/"+op.Name, &op); err != nil {
			return nil, fmt.Errorf("poll video operation: %w", err)
		}
	}

	if !op.Done {
		return nil, fmt.Errorf("video generation timed out after %d polls", videoMaxPolls)
	}
	if op.Error != nil {
		return nil, fmt.Errorf("video operation failed: %s", op.Error.Message)
	}
	if op.Response == nil || len(op.Response.GenerateVideoResponse.GeneratedSamples) == 0 {
		return nil, fmt.Errorf("no video in operation response")
	}

	return c.download(ctx, op.Response.GenerateVideoResponse.GeneratedSamples[0].Video.URI)
}

func (c *Client) postJSON(ctx context.Context, url string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.Key)
	return c.doJSON(req, out)
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("x-goog-api-key", c.cfg.Key)
	return c.doJSON(req, out)
}

func (c *Client) doJSON(req *http.Request, out interface{}) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("api status %d: %s", resp.StatusCode, data)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) download(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-goog-api-key", c.cfg.Key)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("video download status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
