// Package embed implements C5: the Embedder capability interface and its
// two model-family implementations (text, drawing/image), generalised from
// the teacher's embedder.Embedder.
package embed

import (
	"context"
)

// Embedder turns text (or, for the drawing family, an OCR string standing
// in for the image) into a dense vector. One Embedder instance serves one
// collection's model family.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Name() string
	Dimension() int
	Ping(ctx context.Context) error
}

// RemoteConfig configures an HTTP-backed model server call.
type RemoteConfig struct {
	Endpoint  string
	APIKey    string
	BatchSize int
}
