package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"aedocs/internal/correrr"
)

// bgeM3Client calls an HTTP-hosted BGE-M3-like multilingual text encoder.
// It is the embedder wired into the text/table/IFC collections.
type bgeM3Client struct {
	cfg  RemoteConfig
	dim  int
	http *http.Client
}

// NewBGEM3 builds the text-family embedder.
func NewBGEM3(cfg RemoteConfig, dim int) Embedder {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1 // matches the teacher's one-at-a-time llama.cpp-safe batching
	}
	return &bgeM3Client{cfg: cfg, dim: dim, http: &http.Client{Timeout: 60 * time.Second}}
}

func (c *bgeM3Client) Name() string    { return "bge-m3" }
func (c *bgeM3Client) Dimension() int  { return c.dim }

func (c *bgeM3Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"/health", nil)
	if err != nil {
		return correrr.Transient(err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return correrr.Transient(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return correrr.Transient(fmt.Errorf("bge-m3 health %d", resp.StatusCode))
	}
	return nil
}

func (c *bgeM3Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedViaHTTP(ctx, c.http, c.cfg, texts)
}

// clipClient calls an HTTP-hosted CLIP-like encoder, wired for the
// drawings collection (operating on OCR strings standing in for regions).
type clipClient struct {
	cfg  RemoteConfig
	dim  int
	http *http.Client
}

// NewCLIP builds the drawing-family embedder.
func NewCLIP(cfg RemoteConfig, dim int) Embedder {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	return &clipClient{cfg: cfg, dim: dim, http: &http.Client{Timeout: 60 * time.Second}}
}

func (c *clipClient) Name() string   { return "clip" }
func (c *clipClient) Dimension() int { return c.dim }

func (c *clipClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"/health", nil)
	if err != nil {
		return correrr.Transient(err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return correrr.Transient(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return correrr.Transient(fmt.Errorf("clip health %d", resp.StatusCode))
	}
	return nil
}

func (c *clipClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedViaHTTP(ctx, c.http, c.cfg, texts)
}

type embedRequest struct {
	Inputs []string `json:"inputs"`
}

type embedResponse struct {
	Vectors [][]float32 `json:"vectors"`
}

func embedViaHTTP(ctx context.Context, client *http.Client, cfg RemoteConfig, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += cfg.BatchSize {
		end := start + cfg.BatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		body, err := json.Marshal(embedRequest{Inputs: batch})
		if err != nil {
			return nil, correrr.InvalidInput("marshal embed request: %v", err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.Endpoint+"/embed", bytes.NewReader(body))
		if err != nil {
			return nil, correrr.Transient(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, correrr.Transient(err)
		}
		var decoded embedResponse
		decErr := json.NewDecoder(resp.Body).Decode(&decoded)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, correrr.Transient(fmt.Errorf("embed server status %d", resp.StatusCode))
		}
		if decErr != nil {
			return nil, correrr.Transient(decErr)
		}
		out = append(out, decoded.Vectors...)
	}
	return out, nil
}
