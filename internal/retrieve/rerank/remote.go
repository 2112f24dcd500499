package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"aedocs/internal/correrr"
)

// RemoteConfig configures an HTTP-hosted cross-encoder server, the same
// shape as embed.RemoteConfig since both wrap a request/response batch call
// against a local model server.
type RemoteConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// Remote calls an HTTP cross-encoder scoring endpoint.
type Remote struct {
	cfg  RemoteConfig
	http *http.Client
}

// NewRemote builds a Remote reranker from cfg.
func NewRemote(cfg RemoteConfig) *Remote {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Remote{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

type scoreRequest struct {
	Pairs [][2]string `json:"pairs"`
}

type scoreResponse struct {
	Scores []float64 `json:"scores"`
}

func (r *Remote) Score(ctx context.Context, pairs []Pair) ([]float64, error) {
	req := scoreRequest{Pairs: make([][2]string, len(pairs))}
	for i, p := range pairs {
		req.Pairs[i] = [2]string{p.Query, p.Doc}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, correrr.InvalidInput("marshal rerank request: %v", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Endpoint+"/score", bytes.NewReader(body))
	if err != nil {
		return nil, correrr.Transient(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if r.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	}

	resp, err := r.http.Do(httpReq)
	if err != nil {
		return nil, correrr.Transient(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, correrr.Transient(fmt.Errorf("rerank server status %d", resp.StatusCode))
	}
	var decoded scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, correrr.Transient(err)
	}
	return decoded.Scores, nil
}

var _ Reranker = (*Remote)(nil)
